package domain

type (
	// A Product is an immutable catalog entry as received from the catalog.
	Product struct {
		ID       int64
		Name     string
		Price    float64
		Category Category
	}

	Shop struct {
		ID   int64
		Name string
	}

	// A CatalogStats summarizes the catalog storage.
	CatalogStats struct {
		ShopsCount    int
		ProductsCount int
		Shops         []string
	}
)

// NewProduct returns a [Product] with a non-negative price.
func NewProduct(name string, price float64, category Category) Product {
	if price < 0 {
		price = 0
	}
	return Product{Name: name, Price: price, Category: category}
}

// A Store is a partner store shown on the store picker.
type Store struct {
	Name  string
	Image string
}

var partnerStores = []Store{
	{Name: "Ашан", Image: "ashan"},
	{Name: "Перекресток", Image: "perek"},
	{Name: "Лента", Image: "lenta"},
	{Name: "Пятерочка", Image: "pyaterochka"},
	{Name: "Магнит", Image: "magnit"},
}

func PartnerStores() []Store {
	stores := make([]Store, len(partnerStores))
	copy(stores, partnerStores)
	return stores
}

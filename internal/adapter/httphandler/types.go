package httphandler

import "github.com/niksmo/korzina/internal/core/domain"

const (
	statusSuccess = "success"
	statusError   = "error"
)

type (
	Shop struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Product struct {
		ID       int64   `json:"id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Category string  `json:"category,omitempty"`
	}

	ProductsResponse struct {
		Status   string    `json:"status"`
		Shop     Shop      `json:"shop"`
		Count    int       `json:"count"`
		Products []Product `json:"products"`
	}

	ErrorResponse struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	HealthResponse struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Version  string `json:"version"`
		Database string `json:"database"`
	}

	Offer struct {
		ID       int64   `json:"offer_id"`
		Title    string  `json:"title"`
		Price    float64 `json:"price"`
		Category string  `json:"category_name,omitempty"`
		Seller   string  `json:"seller_name"`
	}

	OffersResponse struct {
		Total  int     `json:"total"`
		Limit  int     `json:"limit"`
		Offset int     `json:"offset"`
		Count  int     `json:"count"`
		Offers []Offer `json:"offers"`
	}

	ProductMatch struct {
		Target     string  `json:"target"`
		Found      string  `json:"found"`
		Price      float64 `json:"price"`
		Similarity float64 `json:"similarity"`
		MatchType  string  `json:"match_type"`
	}

	SearchResponse struct {
		Status          string         `json:"status"`
		BestShop        Shop           `json:"best_shop"`
		TotalPrice      float64        `json:"total_price"`
		ProductsFound   int            `json:"products_found"`
		ProductsTotal   int            `json:"products_total"`
		MatchPercentage float64        `json:"match_percentage"`
		Products        []ProductMatch `json:"products"`
	}

	// SearchDebugResponse is [SearchResponse] with the shop reduced to its name.
	SearchDebugResponse struct {
		Status          string         `json:"status"`
		BestShop        string         `json:"best_shop"`
		TotalPrice      float64        `json:"total_price"`
		ProductsFound   int            `json:"products_found"`
		ProductsTotal   int            `json:"products_total"`
		MatchPercentage float64        `json:"match_percentage"`
		Products        []ProductMatch `json:"products"`
	}

	StatsResponse struct {
		Status        string   `json:"status"`
		ShopsCount    int      `json:"shops_count"`
		ProductsCount int      `json:"products_count"`
		Shops         []string `json:"shops"`
	}

	ShopStats struct {
		Shop               string `json:"shop"`
		Sessions           int64  `json:"sessions"`
		Queries            int64  `json:"queries"`
		Loads              int64  `json:"loads"`
		Failures           int64  `json:"failures"`
		CategorySelections int64  `json:"category_selections"`
	}

	ShopStatsResponse struct {
		Status string    `json:"status"`
		Stats  ShopStats `json:"stats"`
	}
)

func fromDomainProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = Product{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category.String(),
		}
	}
	return out
}

func fromDomainOffers(os []domain.Offer) []Offer {
	out := make([]Offer, len(os))
	for i, o := range os {
		out[i] = Offer{
			ID:       o.ID,
			Title:    o.Name,
			Price:    o.Price,
			Category: o.Category.String(),
			Seller:   o.Shop.Name,
		}
	}
	return out
}

func fromDomainMatches(ms []domain.ProductMatch) []ProductMatch {
	out := make([]ProductMatch, len(ms))
	for i, m := range ms {
		out[i] = ProductMatch{
			Target:     m.Target,
			Found:      m.Found,
			Price:      m.Price,
			Similarity: m.Similarity,
			MatchType:  string(m.Type),
		}
	}
	return out
}

func fromDomainSolution(s domain.ShopSolution) SearchResponse {
	return SearchResponse{
		Status:          statusSuccess,
		BestShop:        Shop{ID: s.Shop.ID, Name: s.Shop.Name},
		TotalPrice:      s.TotalPrice,
		ProductsFound:   s.FoundCount,
		ProductsTotal:   len(s.Matches),
		MatchPercentage: s.MatchPercentage(),
		Products:        fromDomainMatches(s.Matches),
	}
}

func fromDomainShopStats(s domain.ShopStats) ShopStats {
	return ShopStats{
		Shop:               s.ShopID,
		Sessions:           s.Sessions,
		Queries:            s.Queries,
		Loads:              s.Loads,
		Failures:           s.Failures,
		CategorySelections: s.CategorySelections,
	}
}

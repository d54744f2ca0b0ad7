package domain

import "fmt"

type Category string

const (
	CategoryAll        Category = "Все"
	CategoryFruits     Category = "Фрукты"
	CategoryVegetables Category = "Овощи"
	CategoryMeat       Category = "Мясо"
	CategoryDairy      Category = "Молочка"
	CategoryBread      Category = "Хлеб"
	CategoryDrinks     Category = "Напитки"
	CategorySweets     Category = "Сладости"
)

// DefaultCategory is selected when a shop screen is entered.
const DefaultCategory = CategoryAll

var categories = []Category{
	CategoryAll,
	CategoryFruits,
	CategoryVegetables,
	CategoryMeat,
	CategoryDairy,
	CategoryBread,
	CategoryDrinks,
	CategorySweets,
}

// Categories returns the fixed category list in display order.
func Categories() []Category {
	cs := make([]Category, len(categories))
	copy(cs, categories)
	return cs
}

// ParseCategory returns [ErrInvalidCategory] for names outside the fixed set.
func ParseCategory(name string) (Category, error) {
	for _, c := range categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, name)
}

func (c Category) String() string {
	return string(c)
}

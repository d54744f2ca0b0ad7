package service

import (
	"fmt"

	"github.com/niksmo/korzina/internal/core/domain"
)

// A CategoryFilter holds the category selection of a shop screen.
//
// Not safe for concurrent use.
type CategoryFilter struct {
	selected domain.Category
}

func NewCategoryFilter() *CategoryFilter {
	return &CategoryFilter{selected: domain.DefaultCategory}
}

func (f *CategoryFilter) Categories() []domain.Category {
	return domain.Categories()
}

func (f *CategoryFilter) Selected() domain.Category {
	return f.selected
}

// Select keeps the current selection when name is not a known category.
func (f *CategoryFilter) Select(name string) (domain.Category, error) {
	const op = "CategoryFilter.Select"

	c, err := domain.ParseCategory(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	f.selected = c
	return c, nil
}

func (f *CategoryFilter) Reset() {
	f.selected = domain.DefaultCategory
}

// Apply returns the products visible under the current selection.
//
// Products without a category are visible only under [domain.CategoryAll].
func (f *CategoryFilter) Apply(ps []domain.Product) []domain.Product {
	if f.selected == domain.CategoryAll {
		return ps
	}
	filtered := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if p.Category == f.selected {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

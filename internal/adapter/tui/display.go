package tui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
)

var _ port.ProductsDisplay = (*Display)(nil)

type (
	categoriesMsg struct {
		gen        uint64
		categories []domain.Category
		selected   domain.Category
	}

	selectedCategoryMsg struct {
		gen      uint64
		category domain.Category
	}

	productsMsg struct {
		gen      uint64
		products []domain.Product
	}

	stateMsg struct {
		gen   uint64
		state domain.ScreenState
		err   error
	}
)

// A Display forwards session output to the bubbletea program as messages
// tagged with the session generation, so output of a dismissed session
// is dropped by the model.
type Display struct {
	gen  uint64
	send func(tea.Msg)
}

func NewDisplay(gen uint64, send func(tea.Msg)) *Display {
	return &Display{gen: gen, send: send}
}

func (d *Display) ShowCategories(categories []domain.Category, selected domain.Category) {
	d.send(categoriesMsg{d.gen, slices.Clone(categories), selected})
}

func (d *Display) ShowSelectedCategory(c domain.Category) {
	d.send(selectedCategoryMsg{d.gen, c})
}

func (d *Display) ShowProducts(ps []domain.Product) {
	d.send(productsMsg{d.gen, slices.Clone(ps)})
}

func (d *Display) ShowState(state domain.ScreenState, err error) {
	d.send(stateMsg{d.gen, state, err})
}

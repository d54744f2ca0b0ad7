package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/korzina/internal/core/domain"
)

type fetchResult struct {
	products []domain.Product
	err      error
}

type fetchCall struct {
	query domain.Query
	resp  chan fetchResult
}

func (c fetchCall) reply(ps []domain.Product, err error) {
	c.resp <- fetchResult{ps, err}
}

// fakeQuerier hands every request to the test and blocks until it replies.
type fakeQuerier struct {
	calls chan fetchCall
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{calls: make(chan fetchCall, 16)}
}

func (f *fakeQuerier) FetchProducts(
	ctx context.Context, q domain.Query,
) ([]domain.Product, error) {
	c := fetchCall{query: q, resp: make(chan fetchResult, 1)}
	f.calls <- c
	select {
	case r := <-c.resp:
		return r.products, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, ctx.Err())
	}
}

type stateChange struct {
	state domain.ScreenState
	err   error
}

type fakeDisplay struct {
	mu         sync.Mutex
	categories []domain.Category
	selected   []domain.Category
	products   [][]domain.Product
	states     []stateChange
}

func (d *fakeDisplay) ShowCategories(cs []domain.Category, selected domain.Category) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.categories = cs
	d.selected = append(d.selected, selected)
}

func (d *fakeDisplay) ShowSelectedCategory(c domain.Category) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = append(d.selected, c)
}

func (d *fakeDisplay) ShowProducts(ps []domain.Product) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.products = append(d.products, ps)
}

func (d *fakeDisplay) ShowState(state domain.ScreenState, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.states = append(d.states, stateChange{state, err})
}

func (d *fakeDisplay) nProducts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.products)
}

func (d *fakeDisplay) lastProducts() []domain.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.products) == 0 {
		return nil
	}
	return d.products[len(d.products)-1]
}

func (d *fakeDisplay) lastState() stateChange {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.states) == 0 {
		return stateChange{state: domain.StateIdle}
	}
	return d.states[len(d.states)-1]
}

func (d *fakeDisplay) lastSelected() domain.Category {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.selected) == 0 {
		return ""
	}
	return d.selected[len(d.selected)-1]
}

type fakeObserver struct {
	mu     sync.Mutex
	events []domain.ShopEvent
}

func (o *fakeObserver) Observe(evt domain.ShopEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, evt)
}

func (o *fakeObserver) kinds() []domain.ShopEventKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	kinds := make([]domain.ShopEventKind, len(o.events))
	for i, e := range o.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (o *fakeObserver) has(kind domain.ShopEventKind) bool {
	for _, k := range o.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultOfferLimit = 20
	MaxOfferLimit     = 100
)

// NotFoundName stands for the found offer of an unmatched search target.
const NotFoundName = "НЕ НАЙДЕН"

type MatchType string

const (
	MatchExactFull    MatchType = "exact_full"
	MatchPartialFull  MatchType = "partial_full"
	MatchExactClean   MatchType = "exact_clean"
	MatchPartialClean MatchType = "partial_clean"
	MatchNone         MatchType = "none"
)

type (
	// An Offer is one shop price of a product.
	Offer struct {
		ID       int64
		Name     string
		Price    float64
		Category Category
		Shop     Shop
	}

	// An OfferFilter selects a page of offers. Empty string fields
	// match everything.
	OfferFilter struct {
		Limit    int
		Offset   int
		Shop     string
		Category string
		Term     string
	}

	OfferPage struct {
		Total  int
		Limit  int
		Offset int
		Offers []Offer
	}

	// A ProductMatch is the offer chosen for one search target.
	// Offer is nil when the shop has nothing matching.
	ProductMatch struct {
		Target     string
		Found      string
		Price      float64
		Similarity float64
		Type       MatchType
		Offer      *Offer
	}

	// A ShopSolution prices a whole product list in one shop.
	ShopSolution struct {
		Shop       Shop
		TotalPrice float64
		FoundCount int
		Matches    []ProductMatch
	}
)

// NewOfferFilter validates pagination and trims filter values.
func NewOfferFilter(limit, offset int, shop, category, term string) (OfferFilter, error) {
	if limit < 1 || limit > MaxOfferLimit {
		return OfferFilter{}, fmt.Errorf(
			"%w: limit must be between 1 and %d", ErrInvalidPage, MaxOfferLimit,
		)
	}
	if offset < 0 {
		return OfferFilter{}, fmt.Errorf("%w: offset must be non-negative", ErrInvalidPage)
	}
	return OfferFilter{
		Limit:    limit,
		Offset:   offset,
		Shop:     strings.TrimSpace(shop),
		Category: strings.TrimSpace(category),
		Term:     strings.TrimSpace(term),
	}, nil
}

func (s ShopSolution) MatchPercentage() float64 {
	if len(s.Matches) == 0 {
		return 0
	}
	return float64(s.FoundCount) / float64(len(s.Matches))
}

// FoundOffers returns the matched offers in target order.
func (s ShopSolution) FoundOffers() []Offer {
	offers := make([]Offer, 0, s.FoundCount)
	for _, m := range s.Matches {
		if m.Offer != nil {
			offers = append(offers, *m.Offer)
		}
	}
	return offers
}

// SplitProducts turns a comma separated list into search targets.
func SplitProducts(list string) []string {
	return NewProductList(strings.Split(list, ","))
}

// NewProductList trims every target and drops blank ones.
func NewProductList(items []string) []string {
	targets := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			targets = append(targets, item)
		}
	}
	return targets
}

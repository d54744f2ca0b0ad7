package domain

import "strings"

// A Query describes one product request for a shop.
//
// SearchTerm is trimmed, empty means no search.
type Query struct {
	ShopID     string
	SearchTerm string
}

func NewQuery(shopID, searchTerm string) (Query, error) {
	shopID = strings.TrimSpace(shopID)
	if shopID == "" {
		return Query{}, ErrEmptyShop
	}
	return Query{
		ShopID:     shopID,
		SearchTerm: strings.TrimSpace(searchTerm),
	}, nil
}

func (q Query) HasSearchTerm() bool {
	return q.SearchTerm != ""
}

// WithSearchTerm returns a copy of q with the normalized term.
func (q Query) WithSearchTerm(term string) Query {
	q.SearchTerm = strings.TrimSpace(term)
	return q
}

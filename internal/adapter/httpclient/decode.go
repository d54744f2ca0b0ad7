package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/niksmo/korzina/internal/core/domain"
)

const statusSuccess = "success"

var (
	errMalformedBody = errors.New("malformed body")
	errBadStatus     = errors.New("status is not success")
	errNoProducts    = errors.New("products is not an array")
)

// decodeProducts reads a products response leniently.
//
// Entries without a string name are dropped. A missing, non-numeric or
// negative price is read as 0. Category is optional.
func decodeProducts(body []byte) ([]domain.Product, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %w", domain.ErrProtocol, errMalformedBody)
	}

	status, err := jsonparser.GetString(body, "status")
	if err != nil || status != statusSuccess {
		return nil, fmt.Errorf("%w: %w: %q", domain.ErrProtocol, errBadStatus, status)
	}

	products := make([]domain.Product, 0)
	_, err = jsonparser.ArrayEach(body,
		func(entry []byte, t jsonparser.ValueType, _ int, _ error) {
			if t != jsonparser.Object {
				return
			}
			p, ok := decodeProduct(entry)
			if ok {
				products = append(products, p)
			}
		},
		"products",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrProtocol, errNoProducts, err)
	}
	return products, nil
}

func decodeProduct(entry []byte) (domain.Product, bool) {
	name, err := jsonparser.GetString(entry, "name")
	if err != nil || name == "" {
		return domain.Product{}, false
	}

	price, err := jsonparser.GetFloat(entry, "price")
	if err != nil {
		price = 0
	}

	category, err := jsonparser.GetString(entry, "category")
	if err != nil {
		category = ""
	}

	return domain.NewProduct(name, price, domain.Category(category)), true
}

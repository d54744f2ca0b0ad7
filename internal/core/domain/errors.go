package domain

import "errors"

var (
	// ErrTransport is a connectivity, timeout or DNS failure.
	ErrTransport = errors.New("transport error")

	// ErrProtocol is a non-2xx status or an unexpected response shape.
	ErrProtocol = errors.New("protocol error")

	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyShop       = errors.New("empty shop identifier")
	ErrShopNotFound    = errors.New("shop not found")
	ErrInvalidPage     = errors.New("invalid page")
	ErrEmptyProducts   = errors.New("empty product list")
	ErrNoSuitableShop  = errors.New("no suitable shop")
)

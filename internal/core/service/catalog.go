package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
)

var _ port.CatalogReader = (*CatalogService)(nil)

const statsShopsLimit = 10

// A CatalogService serves shop product listings from the catalog storage.
type CatalogService struct {
	storage port.CatalogStorage
}

func NewCatalogService(storage port.CatalogStorage) CatalogService {
	return CatalogService{storage}
}

// ListProducts returns one entry per product with its lowest offer price.
//
// A non-empty search term keeps products whose name contains it,
// case-insensitively.
func (s CatalogService) ListProducts(
	ctx context.Context, q domain.Query,
) (domain.Shop, []domain.Product, error) {
	const op = "CatalogService.ListProducts"

	if err := ctx.Err(); err != nil {
		return domain.Shop{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	if q.ShopID == "" {
		return domain.Shop{}, nil, fmt.Errorf("%s: %w", op, domain.ErrEmptyShop)
	}

	shop, err := s.storage.ReadShop(ctx, q.ShopID)
	if err != nil {
		return domain.Shop{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	offers, err := s.storage.ReadShopOffers(ctx, shop.ID)
	if err != nil {
		return domain.Shop{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	products := lowestPrices(offers)
	if q.HasSearchTerm() {
		products = matchName(products, q.SearchTerm)
	}
	return shop, products, nil
}

func (s CatalogService) Stats(ctx context.Context) (domain.CatalogStats, error) {
	const op = "CatalogService.Stats"

	names, err := s.storage.ReadShopNames(ctx)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("%s: %w", op, err)
	}

	nProducts, err := s.storage.CountProducts(ctx)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("%s: %w", op, err)
	}

	stats := domain.CatalogStats{
		ShopsCount:    len(names),
		ProductsCount: nProducts,
		Shops:         names,
	}
	if len(names) > statsShopsLimit {
		stats.Shops = names[:statsShopsLimit]
	}
	return stats, nil
}

func (s CatalogService) Healthy(ctx context.Context) bool {
	const op = "CatalogService.Healthy"

	if err := s.storage.Ping(ctx); err != nil {
		slog.Warn("storage is unhealthy", "op", op, "err", err)
		return false
	}
	return true
}

func lowestPrices(offers []domain.Product) []domain.Product {
	byID := make(map[int64]domain.Product, len(offers))
	for _, o := range offers {
		cur, ok := byID[o.ID]
		if !ok || o.Price < cur.Price {
			byID[o.ID] = o
		}
	}

	products := make([]domain.Product, 0, len(byID))
	for _, p := range byID {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
	return products
}

func matchName(ps []domain.Product, term string) []domain.Product {
	term = strings.ToLower(term)
	matched := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.Name), term) {
			matched = append(matched, p)
		}
	}
	return matched
}

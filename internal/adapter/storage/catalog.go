package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
)

var _ port.CatalogStorage = (*CatalogRepository)(nil)

type CatalogRepository struct {
	sqldb sqldb
}

func NewCatalogRepository(sqldb sqldb) CatalogRepository {
	return CatalogRepository{sqldb}
}

func (r CatalogRepository) ReadShop(
	ctx context.Context, name string,
) (domain.Shop, error) {
	const op = "CatalogRepository.ReadShop"

	if err := ctx.Err(); err != nil {
		return domain.Shop{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT id, name FROM shops WHERE name = $1;`

	var v domain.Shop
	err := r.sqldb.QueryRowContext(ctx, query, name).Scan(&v.ID, &v.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shop{}, fmt.Errorf("%s: %w", op, domain.ErrShopNotFound)
		}
		return domain.Shop{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// ReadShopOffers returns every priced product of the shop.
// A product may appear more than once when it has several prices.
func (r CatalogRepository) ReadShopOffers(
	ctx context.Context, shopID int64,
) (offers []domain.Product, readErr error) {
	const op = "CatalogRepository.ReadShopOffers"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT p.id, p.name, pr.price, p.category
		FROM prices pr
		JOIN products p ON p.id = pr.product_id
		WHERE pr.shop_id = $1
		ORDER BY p.id ASC, pr.price ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	for rows.Next() {
		var (
			v        domain.Product
			price    sql.NullFloat64
			category sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Name, &price, &category); err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		if price.Valid && price.Float64 > 0 {
			v.Price = price.Float64
		}
		v.Category = domain.Category(category.String)
		offers = append(offers, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return offers, nil
}

// ReadOffers returns every price of every shop in insertion order.
func (r CatalogRepository) ReadOffers(ctx context.Context) (offers []domain.Offer, readErr error) {
	const op = "CatalogRepository.ReadOffers"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT pr.id, p.name, pr.price, p.category, s.id, s.name
		FROM prices pr
		JOIN products p ON p.id = pr.product_id
		JOIN shops s ON s.id = pr.shop_id
		ORDER BY pr.id ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	for rows.Next() {
		var (
			v        domain.Offer
			price    sql.NullFloat64
			category sql.NullString
		)
		err := rows.Scan(&v.ID, &v.Name, &price, &category, &v.Shop.ID, &v.Shop.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		if price.Valid && price.Float64 > 0 {
			v.Price = price.Float64
		}
		v.Category = domain.Category(category.String)
		offers = append(offers, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return offers, nil
}

func (r CatalogRepository) ReadShopNames(ctx context.Context) ([]string, error) {
	const op = "CatalogRepository.ReadShopNames"
	log := slog.With("op", op)

	rows, err := r.sqldb.QueryContext(ctx, `SELECT name FROM shops ORDER BY id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return names, nil
}

func (r CatalogRepository) CountProducts(ctx context.Context) (int, error) {
	const op = "CatalogRepository.CountProducts"

	var n int
	err := r.sqldb.QueryRowContext(ctx, `SELECT count(*) FROM products;`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r CatalogRepository) Ping(ctx context.Context) error {
	const op = "CatalogRepository.Ping"
	if err := r.sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

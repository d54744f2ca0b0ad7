package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var ErrInvalidDSN = errors.New("invalid data source name")

type sqldb interface {
	PingContext(ctx context.Context) error
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// A SQLStorage owns the pgx backed [sql.DB] shared by repositories.
type SQLStorage struct {
	sqldb sqldb
}

func NewSQLStorage(ctx context.Context, dsn string) (SQLStorage, error) {
	const op = "NewSQLStorage"

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return SQLStorage{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidDSN, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return SQLStorage{}, fmt.Errorf("%s: %w", op, err)
	}

	s := SQLStorage{db}
	if err := s.ping(ctx); err != nil {
		_ = db.Close()
		return SQLStorage{}, err
	}
	return s, nil
}

func (s SQLStorage) ping(ctx context.Context) error {
	const op = "SQLStorage.ping"
	if err := s.sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: database unavailable: %w", op, err)
	}
	slog.Info("database is available", "op", op)
	return nil
}

func (s SQLStorage) Catalog() CatalogRepository {
	return NewCatalogRepository(s.sqldb)
}

func (s SQLStorage) Close() {
	const op = "SQLStorage.Close"
	log := slog.With("op", op)

	if err := s.sqldb.Close(); err != nil {
		log.Error("failed to close database", "err", err)
		return
	}
	log.Info("database is closed")
}

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"postgres://u:p@db:5432/korzina?sslmode=disable", "pgx5://u:p@db:5432/korzina?sslmode=disable"},
		{"postgresql://db/korzina", "pgx5://db/korzina"},
		{"u:p@db:5432/korzina", "pgx5://u:p@db:5432/korzina"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrateURL(tt.in))
	}
}

func TestNewMigrate(t *testing.T) {
	flags := flagsValues{
		storage:         "postgres://127.0.0.1:1/korzina?connect_timeout=1",
		migrations:      filepath.Join(t.TempDir(), "missing"),
		connectAttempts: 2,
	}

	t.Run("gives up after attempts", func(t *testing.T) {
		m, err := newMigrate(t.Context(), flags)
		require.Error(t, err)
		assert.Nil(t, m)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := newMigrate(ctx, flags)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

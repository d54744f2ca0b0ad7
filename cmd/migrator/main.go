package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/niksmo/korzina/config"
	"github.com/niksmo/korzina/pkg/retry"
	"github.com/spf13/pflag"
)

const (
	storagePathFlag     = "storage-path"
	migrationPathFlag   = "migrations-path"
	downFlag            = "down"
	connectAttemptsFlag = "connect-attempts"
)

type flagsValues struct {
	storage         string
	migrations      string
	down            bool
	connectAttempts int
}

func main() {
	flags := getFlagsValues()
	if flags.storage == "" {
		flags.storage = config.Load().SQLDB
	}
	validateFlags(flags)
	makeMigrations(flags)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() flagsValues {
	storagePath := pflag.StringP(storagePathFlag, "s", "", "postgres DSN, sql_db from config by default")
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "migrations", "migrations directory")
	down := pflag.Bool(downFlag, false, "roll back every migration")
	attempts := pflag.Int(connectAttemptsFlag, 5, "storage connection attempts")
	_ = pflag.String("config", "config.yaml", "config file")
	pflag.Parse()
	return flagsValues{
		storage:         *storagePath,
		migrations:      *migrationsPath,
		down:            *down,
		connectAttempts: *attempts,
	}
}

func validateFlags(flags flagsValues) {
	var errs []error

	if flags.storage == "" {
		errs = append(errs, fmt.Errorf("--%s flag or sql_db: required", storagePathFlag))
	}

	if flags.migrations == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("too few args", "err", errors.Join(errs...))
		fallDown()
	}
}

// migrateURL points golang-migrate at the pgx v5 driver.
func migrateURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return "pgx5://" + dsn
}

// newMigrate waits for the storage with exponential backoff.
func newMigrate(ctx context.Context, flags flagsValues) (*migrate.Migrate, error) {
	var m *migrate.Migrate
	cfg := retry.RetryConfig{MaxAttempts: flags.connectAttempts}
	err := retry.Do(ctx, cfg, func() error {
		var err error
		m, err = migrate.New(
			fmt.Sprintf("file://%s", flags.migrations),
			migrateURL(flags.storage),
		)
		if err != nil {
			slog.Warn("storage is not ready", "err", err)
		}
		return err
	})
	return m, err
}

func makeMigrations(flags flagsValues) {
	m, err := newMigrate(context.Background(), flags)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	apply, direction := m.Up, "up"
	if flags.down {
		apply, direction = m.Down, "down"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "direction", direction, "err", err)
		fallDown()
	}
	m.Log.Printf("migration applied: %s", direction)
}

func fallDown() {
	os.Exit(2)
}

package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/noah-isme/sma-records/pkg/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending embedded migration for the configured dialect. Running it
// against an up-to-date schema is a no-op.
//
// golang-migrate closes the *sql.DB it is given, so a dedicated handle is opened here rather
// than borrowing the application pool.
func Migrate(ctx context.Context, cfg config.DatabaseConfig) error {
	dialect := cfg.Driver
	if dialect == "" {
		dialect = config.DriverPostgres
	}

	raw, err := sql.Open(dialect, cfg.DSN())
	if err != nil {
		return fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := raw.PingContext(ctx); err != nil {
		_ = raw.Close()
		return fmt.Errorf("ping %s: %w", dialect, err)
	}

	var driver migratedb.Driver
	switch dialect {
	case config.DriverSQLite:
		driver, err = migratesqlite.WithInstance(raw, &migratesqlite.Config{})
	case config.DriverPostgres:
		driver, err = migratepg.WithInstance(raw, &migratepg.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		_ = raw.Close()
		return fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

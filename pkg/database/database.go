package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/pkg/config"
)

// New opens the store selected by DB_DRIVER.
func New(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLite(cfg)
	case config.DriverPostgres, "":
		return NewPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

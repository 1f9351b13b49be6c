package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Auth.OfflineFallback)
	assert.Equal(t, "admin123", cfg.Auth.SeedAdminPassword)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.False(t, cfg.Cache.Enabled)
}

func TestDatabaseDSN(t *testing.T) {
	t.Run("sqlite enables foreign keys", func(t *testing.T) {
		dsn := DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/records.db"}.DSN()
		assert.True(t, strings.HasPrefix(dsn, "/tmp/records.db?"))
		assert.Contains(t, dsn, "_pragma=foreign_keys(1)")
	})

	t.Run("postgres trusts server certificate", func(t *testing.T) {
		dsn := DatabaseConfig{
			Driver: DriverPostgres, Host: "db", Port: 5432, User: "app", Password: "p@ss",
			Name: "records", SSLMode: "require", TrustServerCert: true, ConnectTimeout: 3 * time.Second,
		}.DSN()
		assert.Contains(t, dsn, "postgres://app:p%40ss@db:5432/records")
		assert.Contains(t, dsn, "sslmode=require")
		assert.Contains(t, dsn, "connect_timeout=3")
	})

	t.Run("postgres verifies certificate when not trusted", func(t *testing.T) {
		dsn := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: 5432, Name: "records", SSLMode: "require"}.DSN()
		assert.Contains(t, dsn, "sslmode=verify-full")
	})
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}

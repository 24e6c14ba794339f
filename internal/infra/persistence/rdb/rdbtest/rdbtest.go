// Package rdbtest opens throwaway in-memory SQLite stores with the production schema.
package rdbtest

import (
	"io"
	"log/slog"
	"testing"

	"warbler/config"
	"warbler/internal/infra/persistence/rdb"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MemoryDSN keeps the database private to the single pooled connection and enforces foreign keys.
const MemoryDSN = "file::memory:?_foreign_keys=1"

// Config returns a configuration pointing at a fresh in-memory SQLite database.
func Config() *config.Config {
	cfg := &config.Config{
		Database: &config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			DSN:         MemoryDSN,
			AutoMigrate: true,
		},
	}
	cfg.Env.ServiceName = "warbler-test"

	return cfg
}

// Open migrates a fresh database, registers its metrics on a private registry and closes it with the test.
func Open(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, _ := OpenWithRegistry(tb)

	return db
}

// OpenWithRegistry is Open, also returning the registry holding the store metrics.
func OpenWithRegistry(tb testing.TB) (*gorm.DB, *prometheus.Registry) {
	tb.Helper()

	registry := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := rdb.Open(Config(), logger, registry)
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	return db, registry
}

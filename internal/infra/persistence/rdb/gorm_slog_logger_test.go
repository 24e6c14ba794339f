package rdb

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"warbler/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(cfg *config.Config) (logger.Interface, *bytes.Buffer) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return newGormSlogLogger(base, cfg), &buf
}

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}

	return entries
}

func traceFn(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 0 }
}

func TestGormSlogLogger_TraceErrorLevels(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		level string
	}{
		{"unique violation", gorm.ErrDuplicatedKey, "WARN"},
		{"sqlite foreign key on delete", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, "WARN"},
		{"postgres not null", &pgconn.PgError{Code: "23502"}, "WARN"},
		{"connection failure", errors.New("connection refused"), "ERROR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormLogger, buf := newBufferedGormLogger(&config.Config{})

			gormLogger.Trace(context.Background(), time.Now(), traceFn("DELETE FROM users"), tc.err)

			entries := decodeLogLines(t, buf)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0]["level"])
			assert.Equal(t, "GORM query failed", entries[0]["msg"])
			assert.Equal(t, "DELETE FROM users", entries[0]["sql"])
		})
	}
}

func TestGormSlogLogger_TraceSkipsRecordNotFound(t *testing.T) {
	gormLogger, buf := newBufferedGormLogger(&config.Config{})

	gormLogger.Trace(context.Background(), time.Now(), traceFn("SELECT * FROM users"), gorm.ErrRecordNotFound)

	assert.Empty(t, buf.String())
}

func TestGormSlogLogger_TraceSlowAndDebug(t *testing.T) {
	gormLogger, buf := newBufferedGormLogger(&config.Config{})

	gormLogger.Trace(context.Background(), time.Now().Add(-time.Second), traceFn("SELECT 1"), nil)
	// Fast successful queries are only logged in debug mode.
	gormLogger.Trace(context.Background(), time.Now(), traceFn("SELECT 2"), nil)

	entries := decodeLogLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "GORM slow query", entries[0]["msg"])

	debugCfg := &config.Config{}
	debugCfg.Env.Debug = true
	gormLogger, buf = newBufferedGormLogger(debugCfg)

	gormLogger.Trace(context.Background(), time.Now(), traceFn("SELECT 2"), nil)

	entries = decodeLogLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "SELECT 2", entries[0]["sql"])

	gormLogger.LogMode(logger.Silent).Trace(context.Background(), time.Now(), traceFn("SELECT 3"), errors.New("boom"))
	assert.Len(t, decodeLogLines(t, buf), 1)
}

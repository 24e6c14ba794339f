package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSubcommand_Unknown(t *testing.T) {
	err := runSubcommand(context.Background(), "tweet", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown subcommand")
}

func TestCommands_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range commands {
		assert.False(t, seen[cmd.name], "duplicate command %s", cmd.name)
		seen[cmd.name] = true
		assert.NotNil(t, cmd.run)
	}
}

func TestLogStoreMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "warbler_db_statements_total"}, []string{"operation", "table"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "unrelated_total"})
	registry.MustRegister(counter, other)
	counter.WithLabelValues("create", "users").Add(2)
	other.Inc()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logStoreMetrics(context.Background(), logger, registry)

	out := buf.String()
	assert.Contains(t, out, "metric=warbler_db_statements_total")
	assert.Contains(t, out, "value=2")
	assert.Contains(t, out, "table=users")
	assert.NotContains(t, out, "unrelated_total")
}

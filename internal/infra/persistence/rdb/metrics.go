package rdb

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const metricsPluginName = "warbler:query_metrics"

// queryMetricsPlugin counts statements and failed statements per operation and table.
type queryMetricsPlugin struct {
	statements *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

func newQueryMetricsPlugin(registerer prometheus.Registerer) *queryMetricsPlugin {
	return &queryMetricsPlugin{
		statements: registerCounterVec(registerer, prometheus.CounterOpts{
			Namespace: "warbler",
			Subsystem: "db",
			Name:      "statements_total",
			Help:      "Statements executed through gorm, by operation and table.",
		}),
		failures: registerCounterVec(registerer, prometheus.CounterOpts{
			Namespace: "warbler",
			Subsystem: "db",
			Name:      "statement_errors_total",
			Help:      "Statements that returned an error other than record-not-found, by operation and table.",
		}),
	}
}

// registerCounterVec registers a counter vector, reusing the existing collector when
// another database handle already registered it with the same registerer.
func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(opts, []string{"operation", "table"})
	if err := registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}

	return vec
}

func (p *queryMetricsPlugin) Name() string {
	return metricsPluginName
}

func (p *queryMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().After("gorm:create").Register(metricsPluginName+":create", p.observe("create")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register(metricsPluginName+":query", p.observe("query")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register(metricsPluginName+":update", p.observe("update")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register(metricsPluginName+":delete", p.observe("delete")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register(metricsPluginName+":row", p.observe("row")); err != nil {
		return err
	}

	return cb.Raw().After("gorm:raw").Register(metricsPluginName+":raw", p.observe("raw"))
}

func (p *queryMetricsPlugin) observe(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		table := tx.Statement.Table
		p.statements.WithLabelValues(operation, table).Inc()

		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			p.failures.WithLabelValues(operation, table).Inc()
		}
	}
}

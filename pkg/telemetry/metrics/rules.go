package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"fastrecycle-hq/salvage/pkg/config"
)

// RuleMetrics tracks rule set loading.
//
// Metrics:
//   - salvage_rule_documents_loaded_total: Documents decoded by the loader
//   - salvage_rule_references_dropped_total: Unresolved references by kind
//   - salvage_rule_keys: Match-keys in the last merged rule set
//   - salvage_rule_sets_built_total: Successful merges
type RuleMetrics struct {
	documentsLoaded *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	keys            prometheus.Gauge
	built           prometheus.Counter
}

// NewRuleMetrics creates and registers rule metrics with the provided registry.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		documentsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_documents_loaded_total",
				Help:      "Total number of rule documents decoded",
			},
			[]string{"source"},
		),

		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_references_dropped_total",
				Help:      "Total number of rule references dropped because they did not resolve",
			},
			[]string{"kind"},
		),

		keys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_keys",
				Help:      "Number of match-keys in the last merged rule set",
			},
		),

		built: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_sets_built_total",
				Help:      "Total number of merged rule sets",
			},
		),
	}

	registry.MustRegister(rm.documentsLoaded, rm.dropped, rm.keys, rm.built)
	return rm
}

// RecordDocument records one decoded document.
func (rm *RuleMetrics) RecordDocument(source string) {
	rm.documentsLoaded.WithLabelValues(source).Inc()
}

// RecordDropped records one unresolved reference.
func (rm *RuleMetrics) RecordDropped(kind string) {
	rm.dropped.WithLabelValues(kind).Inc()
}

// RecordBuilt records a merge and the resulting key count.
func (rm *RuleMetrics) RecordBuilt(keys int) {
	rm.built.Inc()
	rm.keys.Set(float64(keys))
}

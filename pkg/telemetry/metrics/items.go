package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"fastrecycle-hq/salvage/pkg/config"
)

// ItemMetrics tracks per-item classification.
//
// Metrics:
//   - salvage_items_classified_total: Item kinds by outcome and match strategy
//   - salvage_items_skipped_total: Item kinds left untouched, by reason
type ItemMetrics struct {
	classified *prometheus.CounterVec
	skipped    *prometheus.CounterVec
}

// NewItemMetrics creates and registers item metrics with the provided registry.
func NewItemMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ItemMetrics {
	im := &ItemMetrics{
		classified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "items_classified_total",
				Help:      "Total number of item kinds classified",
			},
			[]string{"outcome", "strategy"},
		),

		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "items_skipped_total",
				Help:      "Total number of item kinds left untouched",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(im.classified, im.skipped)
	return im
}

// RecordClassified records one classification. strategy is empty for
// unmatched items.
func (im *ItemMetrics) RecordClassified(outcome, strategy string) {
	if strategy == "" {
		strategy = "none"
	}
	im.classified.WithLabelValues(outcome, strategy).Inc()
}

// RecordSkipped records one untouched item kind.
func (im *ItemMetrics) RecordSkipped(reason string) {
	im.skipped.WithLabelValues(reason).Inc()
}

// Package metrics provides Prometheus metrics for salvage.
//
// A Collector is attached to the rule loader, the aggregation engine and the
// executor as an observer and recorder:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	executor, err := recycle.NewExecutor(recycle.Config{
//		RuleObserver: collector,
//		ItemObserver: collector,
//		Recorder:     collector,
//		...
//	}, logger)
//
// Label values that come from rule data (document names, output identifiers)
// pass through a CardinalityLimiter and collapse into "other" past the limit.
//
// In watch mode Handler is mounted on the status server at telemetry.metrics.path.
package metrics

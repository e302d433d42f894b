// Package telemetry groups the observability subpackages of salvage.
//
//   - logging: slog construction and the observer that logs rule and item events
//   - metrics: Prometheus collectors for rule loads, items and runs
//   - tracing: OpenTelemetry spans around each recycling run
//   - health: liveness and readiness endpoints served by watch
//
// The cmd/salvage app wires them from the telemetry section of the
// configuration:
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    path: /metrics
//	  health:
//	    enabled: true
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    sampler: ratio
//	    sample_ratio: 0.1
package telemetry

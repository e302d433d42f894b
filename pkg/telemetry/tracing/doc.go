// Package tracing records OpenTelemetry spans for recycle runs.
//
// Each run is one trace: a salvage.run root span with children for rule
// loading, aggregation and, unless the run is a dry run, applying the yields.
// Spans are exported over OTLP gRPC when telemetry.tracing.enabled is set;
// otherwise a no-op tracer is used and spans cost next to nothing.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	executor, err := recycle.NewExecutor(recycle.Config{
//	    // ...
//	    Tracer: tracer.Tracer(),
//	}, logger)
//
// # Sampling
//
// Three strategies are supported:
//   - always: every run (default)
//   - never: no run
//   - ratio: a fraction of runs, decided by trace ID
package tracing

package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampler names accepted by telemetry.tracing.sampler.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// createSampler decides per run whether its spans are kept. The decision is
// taken on the root salvage.run span; rule-load, aggregate and apply spans
// inherit it through ParentBased.
func createSampler(name string, ratio float64) (sdktrace.Sampler, error) {
	root := sdktrace.AlwaysSample()
	switch name {
	case "", SamplerAlways:
	case SamplerNever:
		root = sdktrace.NeverSample()
	case SamplerRatio:
		if ratio < 0 || ratio > 1 {
			return nil, fmt.Errorf("sample ratio %g outside [0, 1]", ratio)
		}
		root = sdktrace.TraceIDRatioBased(ratio)
	default:
		return nil, fmt.Errorf("unknown sampler %q", name)
	}
	return sdktrace.ParentBased(root), nil
}

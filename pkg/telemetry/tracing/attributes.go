package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanRun       = "salvage.run"
	SpanRulesLoad = "salvage.rules.load"
	SpanAggregate = "salvage.aggregate"
	SpanApply     = "salvage.apply"
)

// Attribute keys use the "salvage.*" namespace.
const (
	// Run attributes
	AttrRunID   = "salvage.run_id"
	AttrTarget  = "salvage.target"
	AttrDryRun  = "salvage.dry_run"
	AttrOutcome = "salvage.outcome"

	// Rule set attributes
	AttrRulesVersion   = "salvage.rules.version"
	AttrRulesDocuments = "salvage.rules.documents"
	AttrRulesKeys      = "salvage.rules.keys"
	AttrRulesDropped   = "salvage.rules.dropped"

	// Aggregation attributes
	AttrItems    = "salvage.items"
	AttrConsumed = "salvage.items.consumed"
	AttrOutputs  = "salvage.yield.outputs"
	AttrUnits    = "salvage.yield.units"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// RunAttributes identifies a run on its root span.
func RunAttributes(runID, target string, dryRun bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrTarget, target),
		attribute.Bool(AttrDryRun, dryRun),
	}
}

// SetRuleSetAttributes records the merged rule set on a span.
func SetRuleSetAttributes(span trace.Span, version string, documents, keys, dropped int) {
	span.SetAttributes(
		attribute.String(AttrRulesVersion, version),
		attribute.Int(AttrRulesDocuments, documents),
		attribute.Int(AttrRulesKeys, keys),
		attribute.Int(AttrRulesDropped, dropped),
	)
}

// SetYieldAttributes records what an aggregation pass consumed and produced.
func SetYieldAttributes(span trace.Span, items, consumed, outputs int, units int64) {
	span.SetAttributes(
		attribute.Int(AttrItems, items),
		attribute.Int(AttrConsumed, consumed),
		attribute.Int(AttrOutputs, outputs),
		attribute.Int64(AttrUnits, units),
	)
}

// SetOutcome records the terminal outcome of a run.
func SetOutcome(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
}

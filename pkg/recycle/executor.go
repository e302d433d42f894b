package recycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/rules"
	"fastrecycle-hq/salvage/pkg/telemetry/logging"
	"fastrecycle-hq/salvage/pkg/telemetry/tracing"
)

// Config wires an Executor.
type Config struct {
	// Source supplies the rule documents, read afresh on every run.
	Source DocumentSource

	// Resolver resolves rule targets, exclusions and yields.
	Resolver rules.Resolver

	// Policy holds the classifier switches.
	Policy classify.Options

	// DryRun computes yields without touching the container.
	DryRun bool

	// RuleObserver receives loader events. Optional.
	RuleObserver rules.Observer

	// ItemObserver receives per-item events. Optional.
	ItemObserver aggregate.Observer

	// Recorder receives every finished report. Optional; its errors are logged.
	Recorder Recorder

	// Tracer creates a span tree per run. Optional.
	Tracer trace.Tracer
}

// Executor runs the read, merge, aggregate and apply sequence against one
// container at a time. It keeps no state between runs.
type Executor struct {
	cfg        Config
	classifier *classify.Classifier
	logger     *slog.Logger
}

// NewExecutor validates cfg and creates an executor.
func NewExecutor(cfg Config, logger *slog.Logger) (*Executor, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("document source cannot be nil")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		cfg:        cfg,
		classifier: classify.New(cfg.Policy),
		logger:     logger.With("component", "recycle.executor"),
	}, nil
}

// Execute runs once against target. A target that is not a Container, or a
// container without playable items, ends before any document is read. Rule
// loading errors end the run before any mutation; the returned report then has
// OutcomeFailed and the error satisfies errors.Is(err, rules.ErrConfiguration)
// when the documents are at fault.
func (e *Executor) Execute(ctx context.Context, target Target) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		DryRun:    e.cfg.DryRun,
		StartedAt: time.Now(),
	}
	if target != nil {
		report.Target = target.Name()
	}
	ctx = logging.WithTarget(logging.WithRunID(ctx, report.RunID), report.Target)

	ctx, span := e.cfg.Tracer.Start(ctx, tracing.SpanRun,
		trace.WithAttributes(tracing.RunAttributes(report.RunID, report.Target, report.DryRun)...))
	defer span.End()

	report, err := e.execute(ctx, target, report)
	if report != nil {
		tracing.SetOutcome(span, string(report.Outcome))
	}
	tracing.SetStatus(span, err)
	return report, err
}

func (e *Executor) execute(ctx context.Context, target Target, report *Report) (*Report, error) {
	container, ok := target.(Container)
	if !ok {
		e.logger.InfoContext(ctx, "target is not a container")
		return e.record(ctx, report.finish(OutcomeInvalidTarget, nil)), nil
	}

	items, err := container.Enumerate(ctx)
	if err != nil {
		err = fmt.Errorf("enumerate %q: %w", report.Target, err)
		return e.record(ctx, report.finish(OutcomeFailed, err)), err
	}
	if !hasPlayable(items) {
		e.logger.InfoContext(ctx, "container is empty", "items", len(items))
		return e.record(ctx, report.finish(OutcomeEmpty, nil)), nil
	}

	rs, err := e.loadRules(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "rule loading failed", "error", err)
		return e.record(ctx, report.finish(OutcomeFailed, err)), err
	}

	res, err := e.aggregate(ctx, items, rs)
	if err != nil {
		report.fill(rs, nil)
		return e.record(ctx, report.finish(OutcomeFailed, err)), err
	}
	report.fill(rs, res)

	if res.Empty() {
		e.logger.InfoContext(ctx, "nothing to process", "items", len(res.Items))
		return e.record(ctx, report.finish(OutcomeNothingToProcess, nil)), nil
	}

	if !e.cfg.DryRun {
		if err := e.apply(ctx, container, res); err != nil {
			e.logger.ErrorContext(ctx, "applying yields failed", "error", err)
			return e.record(ctx, report.finish(OutcomeFailed, err)), err
		}
	}

	report = report.finish(OutcomeCompleted, nil)
	e.logger.InfoContext(ctx, "recycling finished",
		"consumed", len(res.Consumed),
		"outputs", len(res.Yields),
		"units", res.Yields.Total(),
		"dry_run", e.cfg.DryRun,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return e.record(ctx, report), nil
}

func (e *Executor) loadRules(ctx context.Context) (rs *rules.RuleSet, err error) {
	ctx, span := e.cfg.Tracer.Start(ctx, tracing.SpanRulesLoad)
	defer func() {
		if rs != nil {
			tracing.SetRuleSetAttributes(span, rs.Version(), len(rs.Documents()), rs.Len(), len(rs.Dropped()))
		}
		tracing.SetStatus(span, err)
		span.End()
	}()

	docs, err := e.cfg.Source.LoadDocuments(ctx)
	if err != nil {
		return nil, err
	}
	loader, err := rules.NewLoader(e.cfg.Resolver, e.cfg.RuleObserver, e.logger)
	if err != nil {
		return nil, err
	}
	return loader.Load(docs)
}

func (e *Executor) aggregate(ctx context.Context, items []classify.Item, rs *rules.RuleSet) (res *aggregate.Result, err error) {
	_, span := e.cfg.Tracer.Start(ctx, tracing.SpanAggregate)
	defer func() {
		if res != nil {
			tracing.SetYieldAttributes(span, len(res.Items), len(res.Consumed), len(res.Yields), res.Yields.Total())
		}
		tracing.SetStatus(span, err)
		span.End()
	}()

	engine, err := aggregate.NewEngine(e.classifier, e.cfg.ItemObserver, e.logger)
	if err != nil {
		return nil, err
	}
	return engine.Aggregate(items, rs)
}

func (e *Executor) apply(ctx context.Context, container Container, res *aggregate.Result) (err error) {
	ctx, span := e.cfg.Tracer.Start(ctx, tracing.SpanApply)
	defer func() {
		tracing.SetStatus(span, err)
		span.End()
	}()

	if err := NewApplier(container, e.cfg.Resolver).Apply(ctx, res.Consumed, res.Yields); err != nil {
		return err
	}
	if c, ok := container.(Committer); ok {
		if err := c.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	return nil
}

func (e *Executor) record(ctx context.Context, report *Report) *Report {
	if e.cfg.Recorder == nil {
		return report
	}
	if err := e.cfg.Recorder.RecordRun(ctx, report); err != nil {
		e.logger.WarnContext(ctx, "failed to record run", "error", err)
	}
	return report
}

func hasPlayable(items []classify.Item) bool {
	for _, it := range items {
		if it.Playable && it.Quantity > 0 {
			return true
		}
	}
	return false
}

// IsConfigurationError reports whether err was caused by the rule documents.
func IsConfigurationError(err error) bool {
	return errors.Is(err, rules.ErrConfiguration)
}

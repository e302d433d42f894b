package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/cli"
	"fastrecycle-hq/salvage/pkg/config"
	"fastrecycle-hq/salvage/pkg/inventory"
	"fastrecycle-hq/salvage/pkg/ledger"
	"fastrecycle-hq/salvage/pkg/recycle"
	"fastrecycle-hq/salvage/pkg/rules"
	"fastrecycle-hq/salvage/pkg/rules/source"
	"fastrecycle-hq/salvage/pkg/telemetry/logging"
	"fastrecycle-hq/salvage/pkg/telemetry/metrics"
	"fastrecycle-hq/salvage/pkg/telemetry/tracing"
)

// app holds the components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *inventory.Catalog
	source  *source.Directory
	ledger  *ledger.Store
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// appOptions selects the optional components.
type appOptions struct {
	ledger  bool
	metrics bool
}

// newApp loads the configuration and builds the components a command needs.
// Close releases them.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	l, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    stderr(cmd),
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger := l.Slog()
	slog.SetDefault(logger)

	catalog, err := inventory.LoadCatalog(cfg.Inventory.Catalog)
	if err != nil {
		return nil, cli.NewConfigError("inventory.catalog", err.Error())
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	a := &app{
		cfg:     cfg,
		tracer:  tracer,
		logger:  logger,
		catalog: catalog,
		source: source.NewDirectory(&source.Config{
			Directory:         cfg.Rules.Directory,
			BaseDocument:      cfg.Rules.BaseDocument,
			Prefix:            cfg.Rules.DocumentPrefix,
			Extensions:        cfg.Rules.Extensions,
			ExclusionDocument: cfg.Rules.ExclusionDocument,
			MaxFileSize:       cfg.Rules.MaxFileSize,
		}, logger),
	}

	if opts.ledger && cfg.Ledger.Enabled {
		store, err := ledger.Open(&ledger.Config{
			Path:        cfg.Ledger.Path,
			Driver:      cfg.Ledger.Driver,
			WALMode:     cfg.Ledger.WALMode,
			BusyTimeout: cfg.Ledger.BusyTimeout,
		}, logger)
		if err != nil {
			_ = tracer.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		a.ledger = store
	}

	if opts.metrics && cfg.Telemetry.Metrics.Enabled {
		a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	logger.Debug("configuration loaded",
		"config", cfgFile,
		"rules_directory", cfg.Rules.Directory,
		"catalog_entities", catalog.Len(),
		"ledger", a.ledger != nil,
		"metrics", a.metrics != nil,
		"tracing", tracer.Enabled(),
	)
	return a, nil
}

// Close flushes pending spans and releases the ledger.
func (a *app) Close() error {
	var errs []error
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	return errors.Join(errs...)
}

// ruleObserver combines the logging observer with the metrics collector.
func (a *app) ruleObserver() rules.Observer {
	obs := rules.MultiObserver{logging.NewObserver(a.logger)}
	if a.metrics != nil {
		obs = append(obs, a.metrics)
	}
	return obs
}

func (a *app) itemObserver() aggregate.Observer {
	obs := aggregate.MultiObserver{logging.NewObserver(a.logger)}
	if a.metrics != nil {
		obs = append(obs, a.metrics)
	}
	return obs
}

func (a *app) recorder() recycle.Recorder {
	var rec recycle.MultiRecorder
	if a.ledger != nil {
		rec = append(rec, a.ledger)
	}
	if a.metrics != nil {
		rec = append(rec, a.metrics)
	}
	if len(rec) == 0 {
		return nil
	}
	return rec
}

// executor builds an executor reading rules from the configured directory.
func (a *app) executor(dryRun bool) (*recycle.Executor, error) {
	return recycle.NewExecutor(recycle.Config{
		Source:   a.source,
		Resolver: a.catalog,
		Policy: classify.Options{
			MatchByName:         a.cfg.Policy.MatchByName,
			ExcludeSpecialState: a.cfg.Policy.ExcludeSpecialState,
		},
		DryRun:       dryRun,
		RuleObserver: a.ruleObserver(),
		ItemObserver: a.itemObserver(),
		Recorder:     a.recorder(),
		Tracer:       a.tracer.Tracer(),
	}, a.logger)
}

// loadRuleSet reads and merges the rule documents once.
func (a *app) loadRuleSet(ctx context.Context) (*rules.RuleSet, error) {
	docs, err := a.source.LoadDocuments(ctx)
	if err != nil {
		return nil, err
	}
	loader, err := rules.NewLoader(a.catalog, a.ruleObserver(), a.logger)
	if err != nil {
		return nil, err
	}
	return loader.Load(docs)
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// closeApp closes a and joins any error into err.
func closeApp(a *app, err *error) {
	if cerr := a.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}

func (a *app) retention() *ledger.RetentionConfig {
	return &ledger.RetentionConfig{
		RetentionDays: a.cfg.Ledger.RetentionDays,
		MaxRuns:       a.cfg.Ledger.MaxRuns,
		Schedule:      a.cfg.Ledger.RetentionSchedule,
	}
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fastrecycle-hq/salvage/pkg/cli"
	"fastrecycle-hq/salvage/pkg/inventory"
	"fastrecycle-hq/salvage/pkg/ledger"
	"fastrecycle-hq/salvage/pkg/rules/source"
	"fastrecycle-hq/salvage/pkg/server"
	"fastrecycle-hq/salvage/pkg/telemetry/health"
)

var watchFlags struct {
	dryRun bool
}

var watchCmd = &cobra.Command{
	Use:   "watch [container-file]...",
	Short: "Re-validate the rule documents whenever they change",
	Long: `Watch the rules directory and merge the documents again after every change.

Container files given as arguments are recycled after each successful merge,
so --dry-run shows the effect of a rule edit right away. While watching, a
status server on server.listen_address exposes the metrics endpoint when
telemetry.metrics.enabled is set and the health endpoints when
telemetry.health.enabled is set. The run ledger is pruned on its retention
schedule.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchFlags.dryRun, "dry-run", false, "compute yields without changing the containers")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) (err error) {
	a, err := newApp(cmd, appOptions{ledger: true, metrics: true})
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	execute, err := a.reloader(ctx, args, watchFlags.dryRun)
	if err != nil {
		return err
	}
	var rulesState health.Latch
	reload := func() error {
		err := execute()
		rulesState.Set(err)
		return err
	}
	if err := reload(); err != nil {
		a.logger.Error("initial rule load failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	watcher := source.NewWatcher(source.WatcherConfig{
		Directory:        a.cfg.Rules.Directory,
		DebounceInterval: a.cfg.Rules.WatchDebounce,
		Extensions:       a.cfg.Rules.Extensions,
	}, a.logger)
	g.Go(func() error {
		return watcher.Watch(gctx, reload)
	})

	if srv := a.statusServer(&rulesState); srv != nil {
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}

	if a.ledger != nil {
		scheduler := ledger.NewScheduler(ledger.NewPruner(a.ledger, a.retention(), a.logger))
		if err := scheduler.Start(gctx); err != nil {
			stop()
			return errors.Join(fmt.Errorf("failed to start retention scheduler: %w", err), g.Wait())
		}
		defer scheduler.Stop()
	}

	a.logger.Info("watching rule documents",
		"directory", a.cfg.Rules.Directory,
		"containers", len(args),
		"dry_run", watchFlags.dryRun,
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// reloader returns the callback run on every change: merge the documents and
// recycle each container. A merge failure skips the containers.
func (a *app) reloader(ctx context.Context, containers []string, dryRun bool) (func() error, error) {
	executor, err := a.executor(dryRun)
	if err != nil {
		return nil, err
	}

	return func() error {
		rs, err := a.loadRuleSet(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("rule documents merged",
			"version", rs.Version(),
			"documents", len(rs.Documents()),
			"keys", rs.Len(),
			"dropped", len(rs.Dropped()),
		)

		var errs []error
		for _, path := range containers {
			target, err := inventory.Open(path, a.catalog)
			if err != nil {
				errs = append(errs, fmt.Errorf("open %s: %w", path, err))
				continue
			}
			report, err := executor.Execute(ctx, target)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			a.logger.Info(report.Message,
				"target", report.Target,
				"outcome", report.Outcome,
				"units", report.Yields.Total(),
			)
		}
		return errors.Join(errs...)
	}, nil
}

// statusServer mounts the metrics and health endpoints, or returns nil when
// both are disabled.
func (a *app) statusServer(rulesState *health.Latch) *server.Server {
	healthCfg := &a.cfg.Telemetry.Health
	if a.metrics == nil && !healthCfg.Enabled {
		return nil
	}

	srv := server.New(&a.cfg.Server, a.logger)
	if a.metrics != nil {
		srv.Handle(a.cfg.Telemetry.Metrics.Path, a.metrics.Handler())
	}
	if healthCfg.Enabled {
		checker := health.New(healthCfg.CheckTimeout)
		checker.RegisterCheck("rules", rulesState.Check)
		if a.ledger != nil {
			checker.RegisterCheck("ledger", a.ledger.Ping)
		}
		health.Mount(srv.Mux(), checker, healthCfg, health.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		})
	}
	return srv
}

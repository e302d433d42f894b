package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fastrecycle-hq/salvage/pkg/cli"
	"fastrecycle-hq/salvage/pkg/ledger"
)

var ledgerFlags struct {
	target    string
	since     time.Duration
	limit     int
	output    string
	olderThan time.Duration
	keep      int64
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and prune the run history",
	Long: `Every run, including dry runs and failures, is recorded in the run ledger
when ledger.enabled is set. These commands read and prune it.`,
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLedgerList,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

var ledgerTotalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Sum the units produced per material",
	Long: `Sum the units produced per material over completed runs that changed
their container. Dry runs are left out.`,
	Args: cobra.NoArgs,
	RunE: runLedgerTotals,
}

var ledgerPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Long: `Delete runs according to the configured retention policy.

--older-than and --keep override ledger.retention_days and ledger.max_runs.`,
	Args: cobra.NoArgs,
	RunE: runLedgerPrune,
}

func init() {
	ledgerListCmd.Flags().StringVar(&ledgerFlags.target, "target", "", "only runs against this container")
	ledgerListCmd.Flags().DurationVar(&ledgerFlags.since, "since", 0, "only runs started within this duration (e.g. 24h)")
	ledgerListCmd.Flags().IntVar(&ledgerFlags.limit, "limit", 50, "maximum number of runs")
	ledgerListCmd.Flags().StringVarP(&ledgerFlags.output, "output", "o", "text", "output format (text, json, csv)")

	ledgerShowCmd.Flags().StringVarP(&ledgerFlags.output, "output", "o", "text", "output format (text, json, csv)")

	ledgerTotalsCmd.Flags().DurationVar(&ledgerFlags.since, "since", 0, "only runs started within this duration (e.g. 168h)")
	ledgerTotalsCmd.Flags().StringVarP(&ledgerFlags.output, "output", "o", "text", "output format (text, json, csv)")

	ledgerPruneCmd.Flags().DurationVar(&ledgerFlags.olderThan, "older-than", 0, "delete runs older than this duration")
	ledgerPruneCmd.Flags().Int64Var(&ledgerFlags.keep, "keep", 0, "keep at most this many runs")

	ledgerCmd.AddCommand(ledgerListCmd, ledgerShowCmd, ledgerTotalsCmd, ledgerPruneCmd)
	rootCmd.AddCommand(ledgerCmd)
}

// openLedgerApp builds an app that must have a ledger.
func openLedgerApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd, appOptions{ledger: true})
	if err != nil {
		return nil, err
	}
	if a.ledger == nil {
		_ = a.Close()
		return nil, cli.NewConfigError("ledger.enabled", "the run ledger is disabled")
	}
	return a, nil
}

func sinceTime(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(-d)
}

func runLedgerList(cmd *cobra.Command, args []string) (err error) {
	format, err := cli.ParseOutputFormat(ledgerFlags.output)
	if err != nil {
		return err
	}
	if ledgerFlags.limit < 0 {
		return cli.NewConfigError("limit", "must not be negative")
	}

	a, err := openLedgerApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	runs, err := a.ledger.ListRuns(commandContext(cmd), ledger.ListOptions{
		Target: ledgerFlags.target,
		Since:  sinceTime(ledgerFlags.since),
		Limit:  ledgerFlags.limit,
	})
	if err != nil {
		return cli.NewCommandError("ledger list", err)
	}
	return cli.NewFormatter(format).FormatTo(stdout(cmd), cli.RunsView(runs))
}

func runLedgerShow(cmd *cobra.Command, args []string) (err error) {
	format, err := cli.ParseOutputFormat(ledgerFlags.output)
	if err != nil {
		return err
	}

	a, err := openLedgerApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	run, err := a.ledger.GetRun(commandContext(cmd), args[0])
	if err != nil {
		return cli.NewCommandError("ledger show", err)
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(stdout(cmd), run)
	}
	return cli.NewFormatter(format).FormatTo(stdout(cmd), cli.RunsView{run})
}

func runLedgerTotals(cmd *cobra.Command, args []string) (err error) {
	format, err := cli.ParseOutputFormat(ledgerFlags.output)
	if err != nil {
		return err
	}

	a, err := openLedgerApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	totals, err := a.ledger.Totals(commandContext(cmd), sinceTime(ledgerFlags.since))
	if err != nil {
		return cli.NewCommandError("ledger totals", err)
	}
	return cli.NewFormatter(format).FormatTo(stdout(cmd), cli.TotalsView(totals))
}

func runLedgerPrune(cmd *cobra.Command, args []string) (err error) {
	if ledgerFlags.olderThan < 0 || ledgerFlags.keep < 0 {
		return cli.NewConfigError("prune", "--older-than and --keep must not be negative")
	}

	a, err := openLedgerApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	ctx := commandContext(cmd)
	retention := a.retention()
	var deleted int64

	if ledgerFlags.olderThan > 0 || ledgerFlags.keep > 0 {
		if ledgerFlags.olderThan > 0 {
			n, err := a.ledger.Prune(ctx, time.Now().Add(-ledgerFlags.olderThan))
			if err != nil {
				return cli.NewCommandError("ledger prune", err)
			}
			deleted += n
		}
		if ledgerFlags.keep > 0 {
			n, err := a.ledger.Trim(ctx, ledgerFlags.keep)
			if err != nil {
				return cli.NewCommandError("ledger prune", err)
			}
			deleted += n
		}
	} else {
		n, err := ledger.NewPruner(a.ledger, retention, a.logger).Prune(ctx)
		if err != nil {
			return cli.NewCommandError("ledger prune", err)
		}
		deleted = n
	}

	remaining, err := a.ledger.Count(ctx)
	if err != nil {
		return cli.NewCommandError("ledger prune", err)
	}
	fmt.Fprintf(stdout(cmd), "Deleted %d runs, %d remaining.\n", deleted, remaining)
	return nil
}

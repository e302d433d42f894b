package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fastrecycle-hq/salvage/pkg/cli"
	"fastrecycle-hq/salvage/pkg/inventory"
	"fastrecycle-hq/salvage/pkg/recycle"
)

var runFlags struct {
	dryRun  bool
	output  string
	details bool
}

var runCmd = &cobra.Command{
	Use:   "run <container-file>...",
	Short: "Recycle the contents of one or more containers",
	Long: `Recycle every eligible item of each container file.

The rule documents are read afresh for the first container and every item
kind whose tags match a rule is consumed in full. Yields are rounded up once
per output material and added back to the container, which is then saved.

Use --dry-run to compute the yields without changing the files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecycle,
}

func init() {
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "compute yields without changing the containers")
	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "text", "output format (text, json)")
	runCmd.Flags().BoolVar(&runFlags.details, "details", false, "list skipped items and the reason")

	rootCmd.AddCommand(runCmd)
}

func runRecycle(cmd *cobra.Command, args []string) (err error) {
	format, err := cli.ParseOutputFormat(runFlags.output)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewConfigError("output", "csv is not supported for run reports")
	}

	a, err := newApp(cmd, appOptions{ledger: true})
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	executor, err := a.executor(runFlags.dryRun)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	var progress cli.ProgressReporter
	if len(args) > 1 && format == cli.FormatText {
		progress = cli.NewProgressReporter(stderr(cmd))
		progress.Start(len(args))
	}

	views := make([]cli.ReportView, 0, len(args))
	var runErr error
	for _, path := range args {
		target, err := inventory.Open(path, a.catalog)
		if err != nil {
			runErr = fmt.Errorf("open %s: %w", path, err)
			break
		}

		report, err := executor.Execute(ctx, target)
		if report != nil {
			views = append(views, cli.ReportView{Report: report, Names: a.catalog, Verbose: runFlags.details})
		}
		if err != nil {
			runErr = err
			break
		}
		if progress != nil {
			progress.Done(report)
		}
	}
	if progress != nil {
		if runErr != nil {
			progress.Error(runErr)
		} else {
			progress.Finish()
		}
	}

	a.logger.Debug("containers processed",
		"containers", len(views),
		"completed", completedReports(views),
		"dry_run", runFlags.dryRun,
	)

	if err := renderReports(cmd, format, views); err != nil {
		return err
	}
	if runErr != nil {
		return cli.NewCommandError("run", runErr)
	}
	return nil
}

// renderReports prints text reports one after another and JSON as one object
// for a single container or an array otherwise.
func renderReports(cmd *cobra.Command, format cli.OutputFormat, views []cli.ReportView) error {
	out := stdout(cmd)
	formatter := cli.NewFormatter(format)

	if format == cli.FormatJSON {
		if len(views) == 1 {
			return formatter.FormatTo(out, views[0])
		}
		return formatter.FormatTo(out, views)
	}

	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := formatter.FormatTo(out, v); err != nil {
			return err
		}
	}
	return nil
}

// completedReports counts the reports that converted something.
func completedReports(views []cli.ReportView) int {
	n := 0
	for _, v := range views {
		if v.Outcome == recycle.OutcomeCompleted {
			n++
		}
	}
	return n
}

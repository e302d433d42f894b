/*
Package cli provides command-line interface utilities for salvage.

The cli package includes output formatters, views of run reports, rule sets
and ledger queries, a progress reporter and signal handling used by the
salvage command.

Output Formatting:

Every view supports text and JSON; ledger tables also support CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, cli.ReportView{Report: report}); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps errors to 0 (success), 1 (failure) and 2 (configuration).
*/
package cli

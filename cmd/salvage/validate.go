package main

import (
	"github.com/spf13/cobra"

	"fastrecycle-hq/salvage/pkg/cli"
)

var validateFlags struct {
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and merge the rule documents",
	Long: `Read every rule document, merge them in load order and print the result.

References the entity catalog cannot resolve are dropped and listed. Documents
that cannot be parsed make the command exit with code 2.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format (text, json)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	format, err := cli.ParseOutputFormat(validateFlags.output)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewConfigError("output", "csv is not supported for rule sets")
	}

	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	rs, err := a.loadRuleSet(commandContext(cmd))
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(stdout(cmd), cli.NewRuleSetView(rs))
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fastrecycle-hq/salvage/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "salvage",
	Short: "Salvage - rule-driven container recycling",
	Long: `Salvage turns the items of a container into crafting materials.

Rule documents map keyword substrings to output materials and ratios. Every
run reads the documents afresh, merges them in order, drops references the
entity catalog cannot resolve and converts each eligible item kind in full.

Configuration is read from --config (optional) and SALVAGE_* environment
variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and SALVAGE_* variables when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

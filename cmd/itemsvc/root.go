package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"simpleapp/itemsvc/pkg/cli"
)

// cfgFile is the configuration file path; empty uses defaults.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "itemsvc",
	Short: "Item service with built-in observability",
	Long: `itemsvc serves a small item CRUD API over HTTP.

Every request is traced with OpenTelemetry, logged as structured JSON,
counted in Prometheus metrics and timed against a slow-request threshold.
Liveness, readiness and aggregate health probes report on the SQLite
store and the in-process item cache.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
}

package cmd

import (
	"fmt"
	"os"

	"backoffice/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is where the .env file is looked up.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Back-office Import Service",
	Long: `Back-office reconciles spreadsheet imports of clients and suppliers
against a tenant's stored records: rows are validated, matched by natural key,
and applied as creates, updates and safe deletions in one transaction.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with ISO8601 timestamps, this is read by a person at a terminal
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing the .env file")
}

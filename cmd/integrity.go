package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backoffice/core/config"
	"backoffice/core/database"
	"backoffice/core/logger"
	"backoffice/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the database schema and the archive storage",
	Long:  `Compares the live database schema with the persistence models and checks that the import archive bucket exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}

		// A missing bucket is only created with --fix
		store, err := storageClient(cfg)
		if err != nil {
			return err
		}

		svc := integrity.NewService(store, cfg.Storage.Bucket, cfg.Storage.Region, logg, db)
		report := map[string]any{}

		srv, err := svc.CheckServer()
		if err != nil {
			return fmt.Errorf("server check failed: %w", err)
		}
		report["server"] = srv
		if !srv.Matched {
			logg.Warn("Schema drift detected", zap.Strings("errors", srv.Errors))
		}

		st, err := svc.CheckStorage(ctx)
		switch {
		case errors.Is(err, integrity.ErrStorageDisabled):
			report["storage"] = map[string]string{"status": "disabled"}
		case err != nil:
			return fmt.Errorf("storage check failed: %w", err)
		default:
			if !st.Exists && fixFlag {
				if err := svc.FixStorage(ctx); err != nil {
					return err
				}
				st.Exists, st.Status = true, "fixed"
			}
			report["storage"] = st
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the archive bucket if missing")
	RootCmd.AddCommand(integrityCmd)
}

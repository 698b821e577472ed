package cmd

import (
	"fmt"

	"backoffice/core/config"
	"backoffice/core/database"
	"backoffice/core/logger"
	"backoffice/feature/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var documentTypes []string

// migrateCmd creates or updates the tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Long:  `Runs the schema migration for clients, suppliers, document types, sales and purchases, and seeds document types.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := models.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		l.Info("Schema migrated", zap.Int("tables", len(models.All())))

		seeded, err := seedDocumentTypes(db, documentTypes)
		if err != nil {
			return err
		}
		l.Info("Document types seeded", zap.Int64("created", seeded))
		return nil
	},
}

// seedDocumentTypes inserts the named document types that do not exist yet.
func seedDocumentTypes(db *gorm.DB, names []string) (int64, error) {
	var created int64
	for _, name := range names {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.DocumentType{Name: name})
		if res.Error != nil {
			return created, fmt.Errorf("failed to seed document type %s: %w", name, res.Error)
		}
		created += res.RowsAffected
	}
	return created, nil
}

func init() {
	migrateCmd.Flags().StringSliceVar(&documentTypes, "document-types", []string{"CC", "CE", "NIT", "PP", "TI"}, "Document types to seed")
	RootCmd.AddCommand(migrateCmd)
}

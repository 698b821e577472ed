package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"backoffice/core/config"
	"backoffice/core/database"
	"backoffice/core/loader"
	"backoffice/core/logger"
	"backoffice/core/middleware/auth"
	"backoffice/core/middleware/rayid"

	"backoffice/feature/imports"
	"backoffice/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "backoffice/docs/swagger"
)

// @title Back-office Import API
// @version 1.0
// @description Bulk import of clients and suppliers from spreadsheets.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the import server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (required: every import reads and writes it)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("driver", db.Dialector.Name()))

		// 4. Initialize Storage (optional import archive)
		store, err := newStorage(context.Background(), cfg)
		if err != nil {
			logg.Fatal("Failed to initialize storage", zap.Error(err))
		}
		if store == nil {
			logg.Info("Storage disabled, imports will not be archived")
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager()
		svc := newImportService(cfg, logg, db, store)
		mgr.Register(integrity.NewFeature(store, cfg.Storage.Bucket, cfg.Storage.Region, logg, db))
		mgr.Register(imports.NewFeature(svc))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Importable entities", zap.Strings("entities", svc.Entities()))

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown (in-flight imports finish or roll back within the timeout)
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Shutdown did not complete cleanly", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

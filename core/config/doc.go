// Package config provides configuration management for the back-office service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials and the import archive bucket
//   - Log: Logging level and format
//   - Reconcile: import transaction timeout and validation tuning
//
// LoadConfig runs Validate before returning, so callers never see a config
// with an unknown driver or a zero apply timeout.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Reconcile.TimeoutSeconds)
package config

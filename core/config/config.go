package config

import (
	"fmt"
	"reflect"
	"strings"

	"backoffice/core/database"
	"backoffice/core/logger"
	"backoffice/core/reconcile"
	"backoffice/core/server"
	"backoffice/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the import archive bucket (S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Reconcile holds the bulk import engine settings.
	Reconcile reconcile.Config `mapstructure:"reconcile"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. RECONCILE_TIMEOUT_SECONDS -> reconcile.timeout_seconds)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports every setting that would make the application fail later.
func (c *Config) Validate() error {
	var err error

	switch c.Database.Driver {
	case database.DriverMySQL, database.DriverPostgres, database.DriverSQLite:
	default:
		err = multierr.Append(err, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Reconcile.TimeoutSeconds <= 0 {
		err = multierr.Append(err, fmt.Errorf("reconcile.timeout_seconds: must be positive, got %d", c.Reconcile.TimeoutSeconds))
	}
	if c.Reconcile.HeaderRows < 0 {
		err = multierr.Append(err, fmt.Errorf("reconcile.header_rows: must not be negative, got %d", c.Reconcile.HeaderRows))
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		err = multierr.Append(err, fmt.Errorf("storage.bucket: required when storage is enabled"))
	}

	return err
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}

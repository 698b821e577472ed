// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL, PostgreSQL or SQLite
// connections from the application's configuration.
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies the connection timeout
// and pool settings, and pings the database before returning.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read live table definitions. The integrity
// feature uses them to compare the database with the persistence models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "clients", []string{"document_number"})
package database

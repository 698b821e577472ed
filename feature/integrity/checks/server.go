package checks

import (
	"fmt"
	"strings"
	"sync"

	"backoffice/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ServerReport strictly types the result of a server integrity check.
type ServerReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckServerIntegrity verifies the database schema using GORM models as the source of truth.
func CheckServerIntegrity(db *gorm.DB, models []any) (*ServerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	driver := db.Dialector.Name()
	report := &ServerReport{
		Driver:  driver,
		Tables:  make(map[string]TableReport),
		Matched: true,
		Errors:  []string{},
	}

	cache := &sync.Map{}
	for _, model := range models {
		sch, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		tblReport := TableReport{
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         "ok",
		}

		actualCols, err := database.GetTableColumns(db, sch.Table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", sch.Table, err))
			report.Matched = false
			continue
		}
		if len(actualCols) == 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("Table %s does not exist", sch.Table))
		}

		actualMap := make(map[string]database.ColumnInfo, len(actualCols))
		for _, col := range actualCols {
			actualMap[col.Field] = col
		}

		for _, field := range sch.Fields {
			if field.DBName == "" {
				continue
			}

			actCol, exists := actualMap[field.DBName]
			if !exists {
				tblReport.MissingColumns = append(tblReport.MissingColumns, field.DBName)
				tblReport.Status = "error"
				report.Matched = false
				continue
			}

			// Postgres reports "character varying" for varchar(n); only names are compared there
			expType := strings.ToLower(field.TagSettings["TYPE"])
			if expType == "" || driver == "postgres" {
				continue
			}
			if !strings.Contains(actCol.Type, expType) {
				mismatch := fmt.Sprintf("%s: expected %s, got %s", field.DBName, expType, actCol.Type)
				tblReport.TypeMismatches = append(tblReport.TypeMismatches, mismatch)
				tblReport.Status = "error"
				report.Matched = false
			}
		}

		report.Tables[sch.Table] = tblReport
	}

	return report, nil
}

package models

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"sort"
	"strings"

	zlog "github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Schema tooling.

GENERATE_MODELS=true migrates every model, prints the column report and writes typed
query helpers to ./generated. GENERATE_COLUMN_REPORT=true prints only the report.

The report lists columns present in the database but missing from the Go structs, e.g.

	--- Table: result_media ---
	Found 1 columns not accounted for in model:
	  - legacy_title
*/

// All returns one zero value of every persisted model
func All() []interface{} {
	return []interface{}{
		&Project{},
		&MediaItem{},
		&Testimonial{},
		&AdminUser{},
		&MagicLink{},
	}
}

// Migrate creates or updates the tables for every model
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func GenerateModels(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	db = db.Session(&gorm.Session{Logger: verbose})

	zlog.Info().Msg("migrating models")
	if err := Migrate(db); err != nil {
		return err
	}

	if err := PrintColumnMismatchReport(db); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()

	zlog.Info().Msg("model generation complete")
	return nil
}

// ColumnMismatches maps table name to the database columns no struct field covers
func ColumnMismatches(db *gorm.DB) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		if !db.Migrator().HasTable(model) {
			zlog.Warn().Str("table", table).Msg("table does not exist yet")
			continue
		}
		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("columns for %s: %w", table, err)
		}
		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		if missing := findColumnMismatches(dbColumns, getModelFields(model)); len(missing) > 0 {
			out[table] = missing
		}
	}
	return out, nil
}

func PrintColumnMismatchReport(db *gorm.DB) error {
	mismatches, err := ColumnMismatches(db)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(mismatches))
	for table := range mismatches {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	fmt.Println("=== COLUMN MISMATCH REPORT ===")
	total := 0
	for _, table := range tables {
		fmt.Printf("\n--- Table: %s ---\n", table)
		fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches[table]))
		for _, col := range mismatches[table] {
			fmt.Printf("  - %s\n", col)
		}
		total += len(mismatches[table])
	}
	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", total)
	return nil
}

// getModelFields reads column names from the `db` struct tags
func getModelFields(model interface{}) []string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var fields []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name != "" && name != "-" {
			fields = append(fields, name)
		}
	}
	return fields
}

func findColumnMismatches(dbColumns, modelFields []string) []string {
	known := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		known[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !known[col] {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}

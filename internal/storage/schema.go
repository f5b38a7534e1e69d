package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createUniversitiesTable(ctx, db); err != nil {
		return err
	}
	return createImportsTable(ctx, db)
}

// Requirement columns are nullable: NULL means the source gave no usable number.
func createUniversitiesTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS universities (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		program_details TEXT NOT NULL,
		tuition_fees REAL,
		ielts REAL,
		grades REAL,
		UNIQUE(name, program_details)
	);
	CREATE INDEX IF NOT EXISTS idx_universities_location ON universities(location);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create universities table: %w", err)
	}
	return nil
}

func createImportsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS dataset_imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		imported_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create dataset_imports table: %w", err)
	}
	return nil
}

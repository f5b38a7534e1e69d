package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uniadvisor/uniadvisor/internal/dataset"
)

// Import describes one dataset snapshot written by the importer.
type Import struct {
	Source     string
	RowCount   int
	ImportedAt time.Time
}

// ReplaceUniversities atomically replaces the stored dataset with rows,
// preserving their order, and records the import.
func (db *DB) ReplaceUniversities(ctx context.Context, source string, rows []dataset.University) error {
	start := time.Now()

	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM universities`); err != nil {
		return fmt.Errorf("clear universities: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO universities (position, name, location, program_details, tuition_fees, ielts, grades)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, program_details) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, u := range rows {
		if _, err := stmt.ExecContext(ctx, i, u.Name, u.Location, u.ProgramDetails,
			nullFloat(u.TuitionFees), nullFloat(u.IELTS), nullFloat(u.Grades)); err != nil {
			return fmt.Errorf("insert %q: %w", u.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_imports (source, row_count, imported_at) VALUES (?, ?, ?)`,
		source, len(rows), time.Now().Unix()); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "batch operation completed",
		"operation", "ReplaceUniversities",
		"count", len(rows),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// LoadUniversities returns all stored rows in import order.
func (db *DB) LoadUniversities(ctx context.Context) ([]dataset.University, error) {
	rows, err := db.reader.QueryContext(ctx, `
		SELECT name, location, program_details, tuition_fees, ielts, grades
		FROM universities
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query universities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []dataset.University
	for rows.Next() {
		var (
			u                   dataset.University
			fees, ielts, grades sql.NullFloat64
		)
		if err := rows.Scan(&u.Name, &u.Location, &u.ProgramDetails, &fees, &ielts, &grades); err != nil {
			return nil, fmt.Errorf("scan university: %w", err)
		}
		u.TuitionFees = fromNull(fees)
		u.IELTS = fromNull(ielts)
		u.Grades = fromNull(grades)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universities: %w", err)
	}
	return out, nil
}

// CountUniversities returns the number of stored rows.
func (db *DB) CountUniversities(ctx context.Context) (int, error) {
	var n int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM universities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count universities: %w", err)
	}
	return n, nil
}

// LastImport returns the most recent import, or nil if none happened yet.
func (db *DB) LastImport(ctx context.Context) (*Import, error) {
	var (
		imp Import
		ts  int64
	)
	err := db.reader.QueryRowContext(ctx, `
		SELECT source, row_count, imported_at
		FROM dataset_imports
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&imp.Source, &imp.RowCount, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last import: %w", err)
	}
	imp.ImportedAt = time.Unix(ts, 0)
	return &imp, nil
}

func nullFloat(n dataset.Number) sql.NullFloat64 {
	return sql.NullFloat64{Float64: n.Value, Valid: n.Valid}
}

func fromNull(n sql.NullFloat64) dataset.Number {
	if !n.Valid {
		return dataset.Number{}
	}
	return dataset.Some(n.Float64)
}

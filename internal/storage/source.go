package storage

import (
	"context"

	"github.com/uniadvisor/uniadvisor/internal/dataset"
	errs "github.com/uniadvisor/uniadvisor/internal/errors"
)

// Source exposes the stored snapshot as a dataset.Source.
type Source struct {
	DB *DB
}

// Name implements dataset.Source.
func (s Source) Name() string { return "sqlite" }

// Load implements dataset.Source. Stored rows were cleaned by the importer
// and are unique per (name, program_details).
func (s Source) Load(ctx context.Context) (*dataset.Dataset, dataset.LoadStats, error) {
	rows, err := s.DB.LoadUniversities(ctx)
	if err != nil {
		return dataset.Empty("sqlite"), dataset.LoadStats{}, errs.NewDatasetLoadError("sqlite", err)
	}
	stats := dataset.LoadStats{Rows: len(rows), Kept: len(rows)}
	return dataset.New("sqlite", rows), stats, nil
}

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniadvisor/uniadvisor/internal/dataset"
)

func sampleRows() []dataset.University {
	return []dataset.University{
		{Name: "TUM", Location: "Germany", ProgramDetails: "MSc Informatics", TuitionFees: dataset.Some(3000), IELTS: dataset.Some(6.5), Grades: dataset.Some(2.5)},
		{Name: "Sydney", Location: "Australia", ProgramDetails: "Master of Data Science", IELTS: dataset.Some(7)},
		{Name: "Toronto", Location: "Canada", ProgramDetails: "BSc Computer Science", TuitionFees: dataset.Some(45000)},
	}
}

func TestNew_InMemory(t *testing.T) {
	t.Parallel()

	db, err := NewTestDB(context.Background())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, ":memory:", db.Path())
}

func TestReplaceAndLoadUniversities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := NewTestDB(ctx)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.ReplaceUniversities(ctx, "first.csv", sampleRows()))

	got, err := db.LoadUniversities(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), got, "rows must round-trip in order with absent numbers preserved")

	// Replacing drops the previous snapshot entirely.
	require.NoError(t, db.ReplaceUniversities(ctx, "second.csv", sampleRows()[:1]))
	n, err := db.CountUniversities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	imp, err := db.LastImport(ctx)
	require.NoError(t, err)
	require.NotNil(t, imp)
	assert.Equal(t, "second.csv", imp.Source)
	assert.Equal(t, 1, imp.RowCount)
}

func TestReplaceUniversities_DuplicateKeysIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := NewTestDB(ctx)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := append(sampleRows(), dataset.University{Name: "TUM", Location: "Elsewhere", ProgramDetails: "MSc Informatics"})
	require.NoError(t, db.ReplaceUniversities(ctx, "dups.csv", rows))

	got, err := db.LoadUniversities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Germany", got[0].Location, "first occurrence wins")
}

func TestLastImport_None(t *testing.T) {
	t.Parallel()

	db, err := NewTestDB(context.Background())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	imp, err := db.LastImport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, imp)
}

func TestSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := New(ctx, filepath.Join(t.TempDir(), "nested", "advisor.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	src := Source{DB: db}
	ds, _, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len(), "empty table yields empty dataset")

	require.NoError(t, db.ReplaceUniversities(ctx, "x", sampleRows()))
	ds, stats, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 3, stats.Kept)
	assert.Equal(t, "sqlite", ds.Source())
}

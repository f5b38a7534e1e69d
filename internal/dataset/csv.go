package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	errs "github.com/uniadvisor/uniadvisor/internal/errors"
	"github.com/uniadvisor/uniadvisor/internal/r2client"
)

var (
	errEmptySource = errors.New("source is empty")
	requiredCols   = []string{ColName, ColLocation, ColProgramDetails, ColTuitionFees}
)

// ReadCSV reads a header-first delimited stream into raw records.
// Rows whose field count differs from the header, or whose quoting is
// broken, are skipped and counted as malformed.
func ReadCSV(r io.Reader) ([]RawRecord, int, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, errEmptySource
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(strings.TrimSpace(col), "\ufeff")
		index[strings.ToLower(col)] = i
	}
	for _, col := range requiredCols {
		if _, ok := index[strings.ToLower(col)]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", col)
		}
	}

	get := func(fields []string, col string) string {
		if i, ok := index[strings.ToLower(col)]; ok && i < len(fields) {
			return fields[i]
		}
		return ""
	}

	var (
		records   []RawRecord
		malformed int
	)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				malformed++
				continue
			}
			return records, malformed, fmt.Errorf("read row: %w", err)
		}
		records = append(records, RawRecord{
			Name:           get(fields, ColName),
			Location:       get(fields, ColLocation),
			ProgramDetails: get(fields, ColProgramDetails),
			TuitionFees:    get(fields, ColTuitionFees),
			IELTS:          get(fields, ColIELTS),
			Grades:         get(fields, ColGrades),
		})
	}
	return records, malformed, nil
}

// Parse reads and cleans a delimited source.
//
// The returned dataset is never nil. When the source is empty or cannot be
// read, the dataset has no rows and err is a *errors.DatasetLoadError; callers
// log it and keep serving.
func Parse(source string, r io.Reader) (*Dataset, LoadStats, error) {
	records, malformed, err := ReadCSV(r)
	if err != nil {
		return Empty(source), LoadStats{Malformed: malformed}, errs.NewDatasetLoadError(source, err)
	}

	rows, stats := Normalize(records)
	stats.Rows += malformed
	stats.Malformed = malformed
	return New(source, rows), stats, nil
}

// LoadFile parses a CSV file, transparently decompressing ".zst" files.
// Like Parse, it always returns a usable dataset.
func LoadFile(path string) (*Dataset, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Empty(path), LoadStats{}, errs.NewDatasetLoadError(path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if r2client.IsCompressedKey(path) {
		dec, err := r2client.NewDecompressReader(f)
		if err != nil {
			return Empty(path), LoadStats{}, errs.NewDatasetLoadError(path, err)
		}
		defer func() { _ = dec.Close() }()
		r = dec
	}
	return Parse(path, r)
}

// WriteCSV writes rows with the canonical header so the output reloads to
// the same dataset. An absent fee is written as "N/A" because an empty fee
// would make the row incomplete; absent requirements are written empty.
func WriteCSV(w io.Writer, rows []University) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return err
	}
	for _, u := range rows {
		if err := cw.Write([]string{
			u.Name,
			u.Location,
			u.ProgramDetails,
			u.TuitionFees.String(),
			csvNumber(u.IELTS),
			csvNumber(u.Grades),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvNumber(n Number) string {
	if !n.Valid {
		return ""
	}
	return n.String()
}

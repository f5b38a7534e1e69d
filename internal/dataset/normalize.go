package dataset

import (
	"errors"
	"strings"

	errs "github.com/uniadvisor/uniadvisor/internal/errors"
	"github.com/uniadvisor/uniadvisor/internal/sliceutil"
)

// RawRecord is one source row before cleaning. Missing columns are empty.
type RawRecord struct {
	Name           string
	Location       string
	ProgramDetails string
	TuitionFees    string
	IELTS          string
	Grades         string
}

// LoadStats summarizes what happened to the source rows.
type LoadStats struct {
	Rows        int // data rows read, including malformed ones
	Malformed   int // rows with the wrong field count or broken quoting
	Incomplete  int // rows missing a required field
	Duplicates  int // repeated (Name, ProgramDetails) rows after the first
	FieldErrors int // numeric fields that could not be parsed and became absent
	Kept        int
}

// Normalize cleans raw rows: drops incomplete ones, coerces numeric fields
// and collapses duplicates keeping the first occurrence.
func Normalize(records []RawRecord) ([]University, LoadStats) {
	stats := LoadStats{Rows: len(records)}
	out := make([]University, 0, len(records))

	for _, rec := range records {
		u, ok, fieldErrs := normalizeRecord(rec)
		stats.FieldErrors += fieldErrs
		if !ok {
			stats.Incomplete++
			continue
		}
		out = append(out, u)
	}

	unique := sliceutil.Deduplicate(out, University.Key)
	stats.Duplicates = len(out) - len(unique)
	stats.Kept = len(unique)
	return unique, stats
}

// Clean applies the row rules of Normalize to already-typed rows, such as
// those produced by a scraper: text fields are trimmed, rows missing a name,
// location or program are dropped and duplicates collapse to the first.
func Clean(rows []University) ([]University, LoadStats) {
	stats := LoadStats{Rows: len(rows)}
	out := make([]University, 0, len(rows))

	for _, u := range rows {
		u.Name = strings.TrimSpace(u.Name)
		u.Location = strings.TrimSpace(u.Location)
		u.ProgramDetails = strings.TrimSpace(u.ProgramDetails)
		if u.Name == "" || u.Location == "" || u.ProgramDetails == "" {
			stats.Incomplete++
			continue
		}
		out = append(out, u)
	}

	unique := sliceutil.Deduplicate(out, University.Key)
	stats.Duplicates = len(out) - len(unique)
	stats.Kept = len(unique)
	return unique, stats
}

func normalizeRecord(rec RawRecord) (University, bool, int) {
	u := University{
		Name:           strings.TrimSpace(rec.Name),
		Location:       strings.TrimSpace(rec.Location),
		ProgramDetails: strings.TrimSpace(rec.ProgramDetails),
	}
	fees := strings.TrimSpace(rec.TuitionFees)
	if u.Name == "" || u.Location == "" || u.ProgramDetails == "" || fees == "" {
		return University{}, false, 0
	}

	var fieldErrs int
	count := func(n Number, err error) Number {
		if errors.Is(err, errs.ErrFieldParse) {
			fieldErrs++
		}
		return n
	}
	u.TuitionFees = count(ParseFees(fees))
	u.IELTS = count(ExtractNumber(ColIELTS, rec.IELTS))
	u.Grades = count(ExtractNumber(ColGrades, rec.Grades))
	return u, true, fieldErrs
}

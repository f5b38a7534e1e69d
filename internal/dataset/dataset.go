// Package dataset loads, normalizes and serves the university dataset.
//
// A Dataset is immutable once built. Reloads build a new Dataset and swap it
// in through a Holder, so readers never observe a partially loaded table.
package dataset

import (
	"iter"
	"slices"
	"time"
)

// Column names of the tabular source. Matching is case-insensitive.
const (
	ColName           = "Name"
	ColLocation       = "Location"
	ColProgramDetails = "ProgramDetails"
	ColTuitionFees    = "TuitionFees"
	ColIELTS          = "IELTS"
	ColGrades         = "Grades"
)

// Columns returns the canonical header in output order.
func Columns() []string {
	return []string{ColName, ColLocation, ColProgramDetails, ColTuitionFees, ColIELTS, ColGrades}
}

// University is one cleaned program offering.
type University struct {
	Name           string
	Location       string
	ProgramDetails string
	TuitionFees    Number // absent when the source value was not numeric
	IELTS          Number // minimum IELTS band
	Grades         Number // minimum grade requirement
}

// Key identifies a program offering for deduplication.
type Key struct {
	Name           string
	ProgramDetails string
}

// Key returns the deduplication key.
func (u University) Key() Key {
	return Key{Name: u.Name, ProgramDetails: u.ProgramDetails}
}

// Dataset is an immutable, ordered set of universities.
type Dataset struct {
	universities []University
	source       string
	loadedAt     time.Time
}

// New builds a dataset from rows; rows is copied.
func New(source string, rows []University) *Dataset {
	return &Dataset{
		universities: slices.Clone(rows),
		source:       source,
		loadedAt:     time.Now(),
	}
}

// Empty returns a dataset with no rows.
func Empty(source string) *Dataset {
	return New(source, nil)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.universities)
}

// At returns the i-th row.
func (d *Dataset) At(i int) University {
	return d.universities[i]
}

// All iterates rows in source order.
func (d *Dataset) All() iter.Seq2[int, University] {
	return func(yield func(int, University) bool) {
		if d == nil {
			return
		}
		for i, u := range d.universities {
			if !yield(i, u) {
				return
			}
		}
	}
}

// Universities returns a copy of all rows.
func (d *Dataset) Universities() []University {
	if d == nil {
		return nil
	}
	return slices.Clone(d.universities)
}

// Source names where the rows came from (file path, "r2", "sqlite").
func (d *Dataset) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}

// LoadedAt returns when the dataset was built.
func (d *Dataset) LoadedAt() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.loadedAt
}

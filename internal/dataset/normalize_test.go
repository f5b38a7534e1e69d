package dataset

import (
	"reflect"
	"testing"
)

func TestClean(t *testing.T) {
	rows := []University{
		{Name: "  ETH Zurich ", Location: "Switzerland", ProgramDetails: "MSc Robotics", TuitionFees: Some(1500)},
		{Name: "ETH Zurich", Location: " Switzerland", ProgramDetails: "MSc Robotics"},
		{Name: "ETH Zurich", Location: "Switzerland", ProgramDetails: "MSc Physics"},
		{Name: "", Location: "Norway", ProgramDetails: "MSc"},
		{Name: "Oslo U", Location: "Norway", ProgramDetails: " "},
	}

	got, stats := Clean(rows)

	want := []University{
		{Name: "ETH Zurich", Location: "Switzerland", ProgramDetails: "MSc Robotics", TuitionFees: Some(1500)},
		{Name: "ETH Zurich", Location: "Switzerland", ProgramDetails: "MSc Physics"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Clean() = %+v, want %+v", got, want)
	}
	wantStats := LoadStats{Rows: 5, Incomplete: 2, Duplicates: 1, Kept: 2}
	if stats != wantStats {
		t.Errorf("stats = %+v, want %+v", stats, wantStats)
	}
	if rows[0].Name != "  ETH Zurich " {
		t.Errorf("input row mutated: %q", rows[0].Name)
	}
}

func TestClean_Empty(t *testing.T) {
	got, stats := Clean(nil)
	if len(got) != 0 || stats != (LoadStats{}) {
		t.Errorf("Clean(nil) = %v, %+v", got, stats)
	}
}

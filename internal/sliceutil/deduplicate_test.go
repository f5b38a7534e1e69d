package sliceutil

import (
	"slices"
	"testing"
)

type programRow struct {
	Name    string
	Program string
	Fees    int
}

func rowKey(r programRow) [2]string { return [2]string{r.Name, r.Program} }

func TestDeduplicate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		items []programRow
		want  []programRow
	}{
		{
			name:  "Empty slice",
			items: []programRow{},
			want:  []programRow{},
		},
		{
			name: "No duplicates",
			items: []programRow{
				{"Oxford", "MSc CS", 1},
				{"Oxford", "MBA", 2},
			},
			want: []programRow{
				{"Oxford", "MSc CS", 1},
				{"Oxford", "MBA", 2},
			},
		},
		{
			name: "Composite key duplicates - first wins",
			items: []programRow{
				{"TUM", "MSc Informatics", 1},
				{"ETH", "MSc Informatics", 2},
				{"TUM", "MSc Informatics", 3},
				{"TUM", "BSc Informatics", 4},
			},
			want: []programRow{
				{"TUM", "MSc Informatics", 1},
				{"ETH", "MSc Informatics", 2},
				{"TUM", "BSc Informatics", 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Deduplicate(tt.items, rowKey)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Deduplicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeduplicate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []int{3, 1, 3, 2, 1}
	orig := slices.Clone(in)
	_ = Deduplicate(in, func(i int) int { return i })

	if !slices.Equal(in, orig) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d"}
	tests := []struct {
		n    int
		want []string
	}{
		{-1, nil},
		{0, nil},
		{2, []string{"c", "d"}},
		{4, items},
		{10, items},
	}
	for _, tt := range tests {
		if got := Tail(items, tt.n); !slices.Equal(got, tt.want) {
			t.Errorf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

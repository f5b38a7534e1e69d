package dataset

import (
	"errors"
	"testing"

	errs "github.com/uniadvisor/uniadvisor/internal/errors"
)

func TestParseFees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    Number
		wantErr bool
	}{
		{"25000", Some(25000), false},
		{"25,000", Some(25000), false},
		{" 1,234,567.5 ", Some(1234567.5), false},
		{"0", Some(0), false},
		{"", Number{}, false},
		{"Varies", Number{}, true},
		{"$25,000", Number{}, true},
		{"NaN", Number{}, true},
		{"Inf", Number{}, true},
		{"0x1p4", Number{}, true},
		{"1_000", Number{}, true},
		{"0b101", Number{}, true},
		{"1e400", Number{}, true},
		{"1.5e4", Some(15000), false},
		{".5", Some(0.5), false},
		{"-200", Some(-200), false},
		{"12.", Some(12), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFees(tt.raw)
			if got != tt.want {
				t.Errorf("ParseFees(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFees(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errs.ErrFieldParse) {
				t.Errorf("error %v should match ErrFieldParse", err)
			}
		})
	}
}

func TestExtractNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    Number
		wantErr bool
	}{
		{"6.5", Some(6.5), false},
		{"Minimum 6.5 overall, 6.0 per band", Some(6.5), false},
		{"IELTS 7", Some(7), false},
		{"3.0 GPA", Some(3), false},
		{"85%", Some(85), false},
		{"", Number{}, false},
		{"   ", Number{}, false},
		{"Varies", Number{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractNumber(ColIELTS, tt.raw)
			if got != tt.want {
				t.Errorf("ExtractNumber(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("ExtractNumber(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestNumber_StringReparses(t *testing.T) {
	t.Parallel()

	for _, n := range []Number{Some(25000), Some(6.5), Some(0), Some(1234567.89), Some(0.1)} {
		s := n.String()

		fees, err := ParseFees(s)
		if err != nil || fees != n {
			t.Errorf("ParseFees(%q) = %+v, %v; want %+v", s, fees, err, n)
		}
		extracted, err := ExtractNumber(ColIELTS, s)
		if err != nil || extracted != n {
			t.Errorf("ExtractNumber(%q) = %+v, %v; want %+v", s, extracted, err, n)
		}
	}

	if got := (Number{}).String(); got != "N/A" {
		t.Errorf("absent String() = %q, want N/A", got)
	}
}

func TestNumber_Or(t *testing.T) {
	t.Parallel()

	if got := (Number{}).Or(0); got != 0 {
		t.Errorf("absent Or(0) = %v", got)
	}
	if got := Some(7).Or(0); got != 7 {
		t.Errorf("Some(7).Or(0) = %v", got)
	}
	if got := Some(0).Or(9); got != 0 {
		t.Errorf("present zero must not fall back: got %v", got)
	}
}

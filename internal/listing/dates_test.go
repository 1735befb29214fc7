package listing

import (
	"testing"
	"time"
)

func TestParseListingDate(t *testing.T) {
	ref := time.Date(2026, time.August, 27, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		want string
	}{
		{"Today", "2026-08-27"},
		{"today ", "2026-08-27"},
		{"Tomorrow", "2026-08-28"},
		{"20 December 2026", "2026-12-20"},
		{"1st September", "2026-09-01"},
		{"27 August", "2026-08-27"},
		{"3 Jan 2027", "2027-01-03"},
	}
	for _, tt := range tests {
		got, err := ParseListingDate(tt.raw, ref)
		if err != nil {
			t.Errorf("ParseListingDate(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseListingDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseListingDateRollsForward(t *testing.T) {
	ref := time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC)

	got, err := ParseListingDate("10 February", ref)
	if err != nil {
		t.Fatalf("ParseListingDate: %v", err)
	}
	if got != "2027-02-10" {
		t.Errorf("got %q, want 2027-02-10", got)
	}

	// A still-upcoming date in the same year keeps its year.
	got, err = ParseListingDate("28 December", ref)
	if err != nil {
		t.Fatalf("ParseListingDate: %v", err)
	}
	if got != "2026-12-28" {
		t.Errorf("got %q, want 2026-12-28", got)
	}
}

func TestParseListingDateRejectsGarbage(t *testing.T) {
	ref := time.Date(2026, time.August, 27, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"", "soon", "32 January", "10 Febuary"} {
		if _, err := ParseListingDate(raw, ref); err == nil {
			t.Errorf("ParseListingDate(%q) succeeded, want error", raw)
		}
	}
}

package calendar

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalize_DropsTimeAndZone(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	// 23:30 KST on Jan 15 is still Jan 15: normalization never shifts the
	// calendar day.
	got := Normalize(time.Date(2026, 1, 15, 23, 30, 0, 0, kst))
	if got != "2026-01-15" {
		t.Errorf("expected 2026-01-15, got %s", got)
	}
}

func TestParseDate_CanonicalForm(t *testing.T) {
	d, err := ParseDate("2026-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != "2026-01-15" {
		t.Errorf("round trip changed the date: %s", d)
	}
}

func TestParseDate_AcceptsUnpadded(t *testing.T) {
	d, err := ParseDate("2026-1-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != "2026-01-05" {
		t.Errorf("expected canonical 2026-01-05, got %s", d)
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, in := range []string{"", "15/01/2026", "2026-13-01", "yesterday"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestDateSet_Membership(t *testing.T) {
	set := NewDateSet([]string{"2026-01-15", "2026-01-03"})

	if !set.Has("2026-01-15") {
		t.Error("expected membership for 2026-01-15")
	}
	if set.Has("2026-01-16") {
		t.Error("unexpected membership for 2026-01-16")
	}
	if set.Len() != 2 {
		t.Errorf("expected 2 dates, got %d", set.Len())
	}
}

func TestDateSet_HasTime(t *testing.T) {
	set := NewDateSet([]string{"2026-01-15"})
	if !set.HasTime(time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)) {
		t.Error("expected membership for a time on a held date")
	}
}

func TestDateSet_DatesSorted(t *testing.T) {
	set := NewDateSet([]string{"2026-03-01", "2026-01-01", "2026-02-01"})
	want := []string{"2026-01-01", "2026-02-01", "2026-03-01"}
	if got := set.Dates(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// Entries written on a set of dates are exactly the dates reported back:
// no phantom days, no missing days.
func TestDateSet_RoundTrip(t *testing.T) {
	dates := []string{"2026-01-01", "2026-01-15", "2026-02-28", "2026-12-31"}
	set := NewDateSet(dates)

	if set.Len() != len(dates) {
		t.Fatalf("expected %d dates, got %d", len(dates), set.Len())
	}
	for _, d := range dates {
		if !set.Has(d) {
			t.Errorf("missing date %s", d)
		}
	}
	if got := set.Dates(); !reflect.DeepEqual(got, dates) {
		t.Errorf("expected %v, got %v", dates, got)
	}
}

package types

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, err := ParseDate("2026-09-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := ParseDate("15/09/2026"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestNormalizeDateDropsClock(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("JST", 9*3600)
	stamp := time.Date(2026, time.March, 3, 23, 45, 12, 999, loc)
	got := NormalizeDate(stamp)
	if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
		t.Fatalf("normalization left clock components: %v", got)
	}
	if got.Day() != 3 {
		t.Fatalf("normalization must keep the civil day, got %v", got)
	}
}

func TestDaysUntil(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.August, 31, 18, 30, 0, 0, time.UTC)
	target := time.Date(2026, time.September, 2, 1, 0, 0, 0, time.UTC)
	if d := DaysUntil(today, target); d != 2 {
		t.Fatalf("expected 2 days, got %d", d)
	}
	if d := DaysUntil(target, today); d != -2 {
		t.Fatalf("expected -2 days, got %d", d)
	}
	if d := DaysUntil(today, today); d != 0 {
		t.Fatalf("expected 0 days, got %d", d)
	}
}

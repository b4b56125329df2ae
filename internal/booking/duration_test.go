package booking

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestHoursForDayIndex_SingleRowTakesWholeDuration(t *testing.T) {
	half := decimal.RequireFromString("0.5")
	if got := HoursForDayIndex(1, half, 1); got != 12.0 {
		t.Fatalf("expected 12h for a half-day single row, got %v", got)
	}

	if got := HoursForDayIndex(1, decimal.NewFromInt(1), 1); got != 24.0 {
		t.Fatalf("expected 24h, got %v", got)
	}
}

func TestHoursForDayIndex_MultiDayFractional(t *testing.T) {
	total := decimal.RequireFromString("2.5")

	if got := HoursForDayIndex(1, total, 3); got != 24.0 {
		t.Fatalf("day 1: expected 24h, got %v", got)
	}
	if got := HoursForDayIndex(2, total, 3); got != 24.0 {
		t.Fatalf("day 2: expected 24h, got %v", got)
	}
	if got := HoursForDayIndex(3, total, 3); got != 12.0 {
		t.Fatalf("day 3: expected 12h (0.5 x 24), got %v", got)
	}
}

func TestHoursForDayIndex_UnexpectedIndexDefaultsToFullDay(t *testing.T) {
	// Day rows that were hand-edited can put the index past the pattern;
	// the fallback is a full day rather than a short one.
	total := decimal.RequireFromString("2.5")
	if got := HoursForDayIndex(7, total, 3); got != 24.0 {
		t.Fatalf("expected fallback 24h, got %v", got)
	}

	whole := decimal.NewFromInt(2)
	if got := HoursForDayIndex(3, whole, 2); got != 24.0 {
		t.Fatalf("expected fallback 24h past a whole-number duration, got %v", got)
	}
}

func TestHoursForDayIndex_DegenerateDurations(t *testing.T) {
	if got := HoursForDayIndex(1, decimal.Zero, 1); got != 0 {
		t.Fatalf("zero duration single row: expected 0h, got %v", got)
	}
	if got := HoursForDayIndex(1, decimal.RequireFromString("-1.5"), 1); got != 0 {
		t.Fatalf("negative duration single row: expected clamp to 0h, got %v", got)
	}
}

func TestAddHoursToTime(t *testing.T) {
	got := AddHoursToTime(NewTimeOfDay(9, 0, 0), 12)
	if got != NewTimeOfDay(21, 0, 0) {
		t.Fatalf("09:00 + 12h: expected 21:00:00, got %s", got)
	}

	// Fractional hours round to the nearest second.
	got = AddHoursToTime(NewTimeOfDay(9, 0, 0), 3.5)
	if got != NewTimeOfDay(12, 30, 0) {
		t.Fatalf("09:00 + 3.5h: expected 12:30:00, got %s", got)
	}

	// Midnight wraps; only the time of day survives.
	got = AddHoursToTime(NewTimeOfDay(22, 0, 0), 4)
	if got != NewTimeOfDay(2, 0, 0) {
		t.Fatalf("22:00 + 4h: expected 02:00:00, got %s", got)
	}

	// A full 24h lands back on the start time.
	got = AddHoursToTime(NewTimeOfDay(9, 0, 0), 24)
	if got != NewTimeOfDay(9, 0, 0) {
		t.Fatalf("09:00 + 24h: expected 09:00:00, got %s", got)
	}
}

func TestDayRowCount(t *testing.T) {
	cases := []struct {
		duration string
		want     int
	}{
		{"0.5", 1},
		{"1", 1},
		{"1.5", 2},
		{"2.5", 3},
		{"3", 3},
		{"0", 1},
		{"-2", 1},
	}
	for _, c := range cases {
		if got := DayRowCount(decimal.RequireFromString(c.duration)); got != c.want {
			t.Fatalf("DayRowCount(%s): expected %d, got %d", c.duration, c.want, got)
		}
	}
}

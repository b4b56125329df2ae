package booking

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30:15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != NewTimeOfDay(9, 30, 15) {
		t.Fatalf("got %v", got)
	}

	got, err = ParseTimeOfDay("14:05")
	if err != nil {
		t.Fatalf("parse short form: %v", err)
	}
	if got != NewTimeOfDay(14, 5, 0) {
		t.Fatalf("got %v", got)
	}

	for _, bad := range []string{"", "9am", "25:00:00", "09-30"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("ParseTimeOfDay(%q): expected error", bad)
		}
	}
}

func TestTimeOfDayOn(t *testing.T) {
	d := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	got := NewTimeOfDay(16, 45, 0).On(d, time.UTC)
	want := time.Date(2025, 3, 14, 16, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("On() = %v, want %v", got, want)
	}
}

func TestTimeOfDayBefore(t *testing.T) {
	if !NewTimeOfDay(8, 59, 59).Before(NewTimeOfDay(9, 0, 0)) {
		t.Fatal("08:59:59 should be before 09:00:00")
	}
	if NewTimeOfDay(9, 0, 0).Before(NewTimeOfDay(9, 0, 0)) {
		t.Fatal("a time is not before itself")
	}
}

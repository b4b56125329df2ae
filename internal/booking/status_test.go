package booking

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"scheduled", "in_progress", "awaiting_closure", "completed", "cancelled"} {
		got, err := ParseStatus(s)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", s, err)
		}
		if string(got) != s {
			t.Fatalf("ParseStatus(%q) = %q", s, got)
		}
	}

	if _, err := ParseStatus("pending"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := ParseStatus(""); err == nil {
		t.Fatal("expected error for empty status")
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusScheduled, StatusInProgress},
		{StatusScheduled, StatusAwaitingClosure},
		{StatusScheduled, StatusCancelled},
		{StatusInProgress, StatusAwaitingClosure},
		{StatusInProgress, StatusCancelled},
		{StatusAwaitingClosure, StatusCompleted},
		{StatusAwaitingClosure, StatusCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusInProgress, StatusScheduled},
		{StatusAwaitingClosure, StatusInProgress},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusScheduled},
		{StatusScheduled, StatusCompleted},
		{Status("bogus"), StatusScheduled},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tc.from, tc.to)
		}
	}
}

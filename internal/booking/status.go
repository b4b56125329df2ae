package booking

import "fmt"

type Status string

const (
	StatusScheduled       Status = "scheduled"
	StatusInProgress      Status = "in_progress"
	StatusAwaitingClosure Status = "awaiting_closure"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusInProgress, StatusAwaitingClosure, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// The lifecycle only moves forward. The engine drives scheduled -> in_progress
// -> awaiting_closure; closure confirmation and cancellation are manual
// workflows. A booking that skipped in_progress (single short course, engine
// ran late) may go scheduled -> awaiting_closure directly.
var allowedTransitions = map[Status]map[Status]bool{
	StatusScheduled:       {StatusInProgress: true, StatusAwaitingClosure: true, StatusCancelled: true},
	StatusInProgress:      {StatusAwaitingClosure: true, StatusCancelled: true},
	StatusAwaitingClosure: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:       {},
	StatusCancelled:       {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

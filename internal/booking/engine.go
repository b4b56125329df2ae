package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store is the persistence contract the engine runs against. Queries and the
// status write are independent per booking; no cross-booking transaction is
// required.
type Store interface {
	// MarkInProgressDue bulk-moves scheduled bookings with a day row dated
	// `day` whose start time is at or before `now` into in_progress, and
	// reports how many rows changed.
	MarkInProgressDue(ctx context.Context, day time.Time, now TimeOfDay) (int64, error)

	// ListOpen returns every booking still in scheduled or in_progress, with
	// its day rows ordered by date and the course duration attached.
	ListOpen(ctx context.Context) ([]Candidate, error)

	// AdvanceStatus writes the status field only, conditional on the row
	// still being scheduled or in_progress. Returns whether a row changed.
	AdvanceStatus(ctx context.Context, bookingID string, to Status) (bool, error)
}

// TransitionRecorder receives a best-effort event trail of engine
// transitions. Failures are logged, never propagated: the status write has
// already landed and must not be undone over bookkeeping.
type TransitionRecorder interface {
	RecordStatusChange(ctx context.Context, bookingID, from, to string, at time.Time) error
}

// safeLateEnd is the conservative fallback end time used whenever real data
// is missing or inconsistent, so a booking is never closed prematurely.
var safeLateEnd = NewTimeOfDay(23, 59, 59)

// Engine advances booking statuses along scheduled -> in_progress ->
// awaiting_closure from wall-clock time. Every step is idempotent: re-running
// with no qualifying rows is a no-op, and overlapping invocations converge on
// the same final statuses.
type Engine struct {
	store  Store
	events TransitionRecorder
	log    *zap.Logger
	loc    *time.Location

	// now is swappable for tests.
	now func() time.Time
}

func NewEngine(store Store, events TransitionRecorder, log *zap.Logger, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		store:  store,
		events: events,
		log:    log,
		loc:    loc,
		now:    time.Now,
	}
}

// Result reports what one invocation changed. Counts are for operational
// logging only; callers must not build business logic on them.
type Result struct {
	InProgress      int64 `json:"inProgress"`
	AwaitingClosure int   `json:"awaitingClosure"`
}

// AutoUpdateStatuses runs one pass of the two-phase advance:
//
//  1. scheduled -> in_progress for every booking with a day row dated today
//     whose start time has passed (single bulk update).
//  2. scheduled/in_progress -> awaiting_closure for every booking whose FINAL
//     day's end has passed. A missing end time is derived from the course
//     duration; anything missing or inconsistent degrades to a 23:59:59
//     sentinel so bookings close late rather than early.
//
// Data-shape anomalies never produce an error. Persistence failures propagate
// untouched; retry belongs to the scheduler.
func (e *Engine) AutoUpdateStatuses(ctx context.Context) (Result, error) {
	now := e.now().In(e.loc)
	today := dateOnly(now)
	nowT := TimeOfDayAt(now)

	var res Result

	n, err := e.store.MarkInProgressDue(ctx, today, nowT)
	if err != nil {
		return res, fmt.Errorf("mark in progress: %w", err)
	}
	res.InProgress = n

	candidates, err := e.store.ListOpen(ctx)
	if err != nil {
		return res, fmt.Errorf("list open bookings: %w", err)
	}

	for _, c := range candidates {
		cutoff, ok := e.closureCutoff(c, today, nowT)
		if !ok {
			continue
		}
		if now.Before(cutoff) {
			continue
		}

		changed, err := e.store.AdvanceStatus(ctx, c.ID, StatusAwaitingClosure)
		if err != nil {
			return res, fmt.Errorf("advance booking %s: %w", c.ID, err)
		}
		if !changed {
			continue
		}
		res.AwaitingClosure++
		e.recordChange(ctx, c.ID, c.Status, StatusAwaitingClosure, now)
	}

	return res, nil
}

// closureCutoff computes the instant after which a candidate may move to
// awaiting_closure, or reports that it is not yet eligible at all.
func (e *Engine) closureCutoff(c Candidate, today time.Time, nowT TimeOfDay) (time.Time, bool) {
	if len(c.Days) == 0 {
		return time.Time{}, false
	}

	lastDay := dateOnly(c.Days[0].Date)
	for _, d := range c.Days[1:] {
		if dd := dateOnly(d.Date); dd.After(lastDay) {
			lastDay = dd
		}
	}
	if today.Before(lastDay) {
		return time.Time{}, false
	}

	// Locate the row for the final day. Days arrive ordered so this is the
	// tail, but walk backwards anyway in case ordering ever breaks upstream.
	var lastRow *Day
	for i := len(c.Days) - 1; i >= 0; i-- {
		if dateOnly(c.Days[i].Date).Equal(lastDay) {
			lastRow = &c.Days[i]
			break
		}
	}
	if lastRow == nil {
		return time.Time{}, false
	}

	startT := lastRow.StartTime
	endT := lastRow.EndTime
	finalDayIsToday := today.Equal(lastDay)

	// The date arriving is not enough: never close before the final session
	// has even started.
	if finalDayIsToday && startT.Valid && nowT.Before(startT.Time) {
		return time.Time{}, false
	}

	end := safeLateEnd
	switch {
	case endT.Valid:
		end = endT.Time
	case startT.Valid:
		rows := DayRowCount(c.DurationDays)
		idx := rows
		for i, d := range c.Days {
			if d.ID == lastRow.ID {
				idx = i + 1
				break
			}
		}
		span := HoursForDayIndex(idx, c.DurationDays, rows)
		if span > 0 {
			end = AddHoursToTime(startT.Time, span)
		}
	}

	// A booking must never close at or before its own start instant.
	if finalDayIsToday && startT.Valid && end.Seconds() <= startT.Time.Seconds() {
		end = safeLateEnd
	}

	return end.On(lastDay, e.loc), true
}

func (e *Engine) recordChange(ctx context.Context, bookingID string, from, to Status, at time.Time) {
	if e.events == nil {
		return
	}
	if err := e.events.RecordStatusChange(ctx, bookingID, string(from), string(to), at); err != nil {
		e.log.Warn("failed to record status change event",
			zap.String("booking_id", bookingID),
			zap.Error(err))
	}
}

// dateOnly normalizes to midnight UTC so calendar dates compare regardless of
// the zone the source time carried. Postgres DATE columns scan the same way.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

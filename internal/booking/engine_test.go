package booking

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBooking struct {
	id       string
	status   Status
	duration decimal.Decimal
	days     []Day
}

type fakeStore struct {
	bookings []*fakeBooking

	listErr    error
	advanceErr error
}

func (s *fakeStore) get(id string) *fakeBooking {
	for _, b := range s.bookings {
		if b.id == id {
			return b
		}
	}
	return nil
}

func (s *fakeStore) MarkInProgressDue(ctx context.Context, day time.Time, now TimeOfDay) (int64, error) {
	var n int64
	for _, b := range s.bookings {
		if b.status != StatusScheduled {
			continue
		}
		for _, d := range b.days {
			if d.Date.Equal(day) && d.StartTime.Valid && !now.Before(d.StartTime.Time) {
				b.status = StatusInProgress
				n++
				break
			}
		}
	}
	return n, nil
}

func (s *fakeStore) ListOpen(ctx context.Context) ([]Candidate, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []Candidate
	for _, b := range s.bookings {
		if b.status != StatusScheduled && b.status != StatusInProgress {
			continue
		}
		days := append([]Day(nil), b.days...)
		sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
		out = append(out, Candidate{ID: b.id, Status: b.status, DurationDays: b.duration, Days: days})
	}
	return out, nil
}

func (s *fakeStore) AdvanceStatus(ctx context.Context, bookingID string, to Status) (bool, error) {
	if s.advanceErr != nil {
		return false, s.advanceErr
	}
	b := s.get(bookingID)
	if b == nil || (b.status != StatusScheduled && b.status != StatusInProgress) {
		return false, nil
	}
	b.status = to
	return true, nil
}

type fakeRecorder struct {
	changes []string
}

func (r *fakeRecorder) RecordStatusChange(ctx context.Context, bookingID, from, to string, at time.Time) error {
	r.changes = append(r.changes, bookingID+":"+from+":"+to)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func day(bookingID string, dt time.Time, start, end NullTimeOfDay) Day {
	return Day{ID: bookingID + "-" + dt.Format("20060102"), BookingID: bookingID, Date: dt, StartTime: start, EndTime: end}
}

func engineAt(store Store, rec TransitionRecorder, at time.Time) *Engine {
	e := NewEngine(store, rec, zap.NewNop(), time.UTC)
	e.now = func() time.Time { return at }
	return e
}

func TestAutoUpdateStatuses_EndToEndDerivedEnd(t *testing.T) {
	// 1.5-day course starting 2025-01-10 at 09:00, no explicit end times.
	// Day 2 spans 0.5 x 24h = 12h, so the final end is 21:00 on 2025-01-11.
	makeStore := func() *fakeStore {
		b := &fakeBooking{
			id:       "b1",
			status:   StatusScheduled,
			duration: decimal.RequireFromString("1.5"),
			days: []Day{
				day("b1", date(2025, 1, 10), SomeTime(NewTimeOfDay(9, 0, 0)), NullTimeOfDay{}),
				day("b1", date(2025, 1, 11), SomeTime(NewTimeOfDay(9, 0, 0)), NullTimeOfDay{}),
			},
		}
		return &fakeStore{bookings: []*fakeBooking{b}}
	}

	// Just before the derived end: in progress, not closed.
	store := makeStore()
	e := engineAt(store, nil, time.Date(2025, 1, 11, 20, 59, 59, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.InProgress)
	assert.Equal(t, 0, res.AwaitingClosure)
	assert.Equal(t, StatusInProgress, store.get("b1").status)

	// Just after: awaiting closure.
	store = makeStore()
	e = engineAt(store, nil, time.Date(2025, 1, 11, 21, 0, 1, 0, time.UTC))
	res, err = e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AwaitingClosure)
	assert.Equal(t, StatusAwaitingClosure, store.get("b1").status)
}

func TestAutoUpdateStatuses_Idempotent(t *testing.T) {
	b := &fakeBooking{
		id:       "b1",
		status:   StatusScheduled,
		duration: decimal.NewFromInt(1),
		days: []Day{
			day("b1", date(2025, 1, 10), SomeTime(NewTimeOfDay(9, 0, 0)), SomeTime(NewTimeOfDay(17, 0, 0))),
		},
	}
	store := &fakeStore{bookings: []*fakeBooking{b}}
	now := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)

	e := engineAt(store, nil, now)
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AwaitingClosure)
	assert.Equal(t, StatusAwaitingClosure, b.status)

	// Same wall clock, second run: nothing left to do.
	res, err = e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.InProgress)
	assert.Equal(t, 0, res.AwaitingClosure)
	assert.Equal(t, StatusAwaitingClosure, b.status)
}

func TestAutoUpdateStatuses_NeverCloseBeforeStart(t *testing.T) {
	b := &fakeBooking{
		id:       "b1",
		status:   StatusScheduled,
		duration: decimal.NewFromInt(1),
		days: []Day{
			day("b1", date(2025, 1, 10), SomeTime(NewTimeOfDay(9, 0, 0)), NullTimeOfDay{}),
		},
	}
	store := &fakeStore{bookings: []*fakeBooking{b}}

	e := engineAt(store, nil, time.Date(2025, 1, 10, 8, 59, 0, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.InProgress)
	assert.Equal(t, 0, res.AwaitingClosure)
	assert.Equal(t, StatusScheduled, b.status)
}

func TestAutoUpdateStatuses_SanityClampBadEndTime(t *testing.T) {
	// Explicit end before start is bad data; the effective end becomes the
	// 23:59:59 sentinel, not 08:00.
	makeStore := func() *fakeStore {
		b := &fakeBooking{
			id:       "b1",
			status:   StatusInProgress,
			duration: decimal.NewFromInt(1),
			days: []Day{
				day("b1", date(2025, 1, 10), SomeTime(NewTimeOfDay(9, 0, 0)), SomeTime(NewTimeOfDay(8, 0, 0))),
			},
		}
		return &fakeStore{bookings: []*fakeBooking{b}}
	}

	store := makeStore()
	e := engineAt(store, nil, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.AwaitingClosure)
	assert.Equal(t, StatusInProgress, store.get("b1").status)

	store = makeStore()
	e = engineAt(store, nil, time.Date(2025, 1, 10, 23, 59, 59, 0, time.UTC))
	res, err = e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AwaitingClosure)
	assert.Equal(t, StatusAwaitingClosure, store.get("b1").status)
}

func TestAutoUpdateStatuses_BulkStepRunsBeforePerRowStep(t *testing.T) {
	// Start has passed and the final end has passed too: one pass takes the
	// booking through in_progress straight to awaiting_closure.
	b := &fakeBooking{
		id:       "b1",
		status:   StatusScheduled,
		duration: decimal.NewFromInt(1),
		days: []Day{
			day("b1", date(2025, 1, 10), SomeTime(NewTimeOfDay(8, 0, 0)), SomeTime(NewTimeOfDay(9, 0, 0))),
		},
	}
	store := &fakeStore{bookings: []*fakeBooking{b}}
	rec := &fakeRecorder{}

	e := engineAt(store, rec, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.InProgress)
	assert.Equal(t, 1, res.AwaitingClosure)
	assert.Equal(t, StatusAwaitingClosure, b.status)
	assert.Equal(t, []string{"b1:in_progress:awaiting_closure"}, rec.changes)
}

func TestAutoUpdateStatuses_MonotonicProgression(t *testing.T) {
	b := &fakeBooking{
		id:       "b1",
		status:   StatusScheduled,
		duration: decimal.NewFromInt(1),
		days: []Day{
			day("b1", date(2025, 1, 10), SomeTime(NewTimeOfDay(9, 0, 0)), SomeTime(NewTimeOfDay(17, 0, 0))),
		},
	}
	store := &fakeStore{bookings: []*fakeBooking{b}}

	order := map[Status]int{StatusScheduled: 0, StatusInProgress: 1, StatusAwaitingClosure: 2}
	var observed []Status

	clocks := []time.Time{
		time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 17, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 9, 0, 0, 0, time.UTC),
	}
	for _, now := range clocks {
		e := engineAt(store, nil, now)
		_, err := e.AutoUpdateStatuses(context.Background())
		require.NoError(t, err)
		observed = append(observed, b.status)
	}

	for i := 1; i < len(observed); i++ {
		assert.LessOrEqual(t, order[observed[i-1]], order[observed[i]],
			"status regressed from %s to %s", observed[i-1], observed[i])
	}
	assert.Equal(t, StatusAwaitingClosure, observed[len(observed)-1])
}

func TestAutoUpdateStatuses_SkipsBeforeFinalDay(t *testing.T) {
	b := &fakeBooking{
		id:       "b1",
		status:   StatusScheduled,
		duration: decimal.NewFromInt(2),
		days: []Day{
			day("b1", date(2025, 1, 10), SomeTime(NewTimeOfDay(9, 0, 0)), SomeTime(NewTimeOfDay(17, 0, 0))),
			day("b1", date(2025, 1, 11), SomeTime(NewTimeOfDay(9, 0, 0)), SomeTime(NewTimeOfDay(17, 0, 0))),
		},
	}
	store := &fakeStore{bookings: []*fakeBooking{b}}

	// Evening of day 1: in progress, but the course has another day to go.
	e := engineAt(store, nil, time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.InProgress)
	assert.Equal(t, 0, res.AwaitingClosure)
	assert.Equal(t, StatusInProgress, b.status)
}

func TestAutoUpdateStatuses_MissingStartFallsBackToSentinel(t *testing.T) {
	// No start time at all: the end degrades to 23:59:59 on the final day,
	// so the booking closes only once that day is fully over.
	b := &fakeBooking{
		id:       "b1",
		status:   StatusInProgress,
		duration: decimal.NewFromInt(1),
		days: []Day{
			day("b1", date(2025, 1, 10), NullTimeOfDay{}, NullTimeOfDay{}),
		},
	}
	store := &fakeStore{bookings: []*fakeBooking{b}}

	e := engineAt(store, nil, time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.AwaitingClosure)

	e = engineAt(store, nil, time.Date(2025, 1, 11, 0, 0, 1, 0, time.UTC))
	res, err = e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AwaitingClosure)
	assert.Equal(t, StatusAwaitingClosure, b.status)
}

func TestAutoUpdateStatuses_NoDaysIsSkipped(t *testing.T) {
	b := &fakeBooking{id: "b1", status: StatusScheduled, duration: decimal.NewFromInt(1)}
	store := &fakeStore{bookings: []*fakeBooking{b}}

	e := engineAt(store, nil, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.AwaitingClosure)
	assert.Equal(t, StatusScheduled, b.status)
}

func TestAutoUpdateStatuses_CancelledIsUntouched(t *testing.T) {
	b := &fakeBooking{
		id:       "b1",
		status:   StatusCancelled,
		duration: decimal.NewFromInt(1),
		days: []Day{
			day("b1", date(2025, 1, 1), SomeTime(NewTimeOfDay(9, 0, 0)), SomeTime(NewTimeOfDay(17, 0, 0))),
		},
	}
	store := &fakeStore{bookings: []*fakeBooking{b}}

	e := engineAt(store, nil, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	res, err := e.AutoUpdateStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.InProgress)
	assert.Equal(t, 0, res.AwaitingClosure)
	assert.Equal(t, StatusCancelled, b.status)
}

func TestAutoUpdateStatuses_PersistenceErrorPropagates(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection reset")}

	e := engineAt(store, nil, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	_, err := e.AutoUpdateStatuses(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
}

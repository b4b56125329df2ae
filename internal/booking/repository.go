package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

func (r *Repository) MarkInProgressDue(ctx context.Context, day time.Time, now TimeOfDay) (int64, error) {
	const q = `
UPDATE bookings b
SET status = 'in_progress', updated_at = NOW()
WHERE b.status = 'scheduled'
  AND EXISTS (
    SELECT 1 FROM booking_days d
    WHERE d.booking_id = b.id
      AND d.date = $1
      AND d.start_time IS NOT NULL
      AND d.start_time <= $2
  )
`
	tag, err := r.db.Exec(ctx, q, day, pgTime(now))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) ListOpen(ctx context.Context) ([]Candidate, error) {
	const q = `
SELECT b.id, b.status, ct.duration_days::text
FROM bookings b
JOIN course_types ct ON ct.id = b.course_type_id
WHERE b.status IN ('scheduled', 'in_progress')
ORDER BY b.course_date ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	index := map[string]int{}
	for rows.Next() {
		var c Candidate
		var status, duration string
		if err := rows.Scan(&c.ID, &status, &duration); err != nil {
			return nil, err
		}
		c.Status = Status(status)
		// Malformed duration degrades to zero; the engine treats that as
		// "cannot derive, fall back to the sentinel" rather than an error.
		c.DurationDays, _ = decimal.NewFromString(duration)
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, c := range out {
		ids = append(ids, c.ID)
	}

	const dq = `
SELECT id, booking_id, date, start_time, end_time, day_code
FROM booking_days
WHERE booking_id = ANY($1)
ORDER BY booking_id, date ASC
`
	drows, err := r.db.Query(ctx, dq, ids)
	if err != nil {
		return nil, err
	}
	defer drows.Close()

	for drows.Next() {
		var d Day
		var start, end pgtype.Time
		if err := drows.Scan(&d.ID, &d.BookingID, &d.Date, &start, &end, &d.DayCode); err != nil {
			return nil, err
		}
		d.StartTime = fromPgTime(start)
		d.EndTime = fromPgTime(end)
		if i, ok := index[d.BookingID]; ok {
			out[i].Days = append(out[i].Days, d)
		}
	}
	return out, drows.Err()
}

func (r *Repository) AdvanceStatus(ctx context.Context, bookingID string, to Status) (bool, error) {
	const q = `
UPDATE bookings
SET status = $2, updated_at = NOW()
WHERE id = $1 AND status IN ('scheduled', 'in_progress')
`
	tag, err := r.db.Exec(ctx, q, bookingID, string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountInProgressDue mirrors the step-1 predicate without writing; used by
// the operator CLI's --debug output.
func (r *Repository) CountInProgressDue(ctx context.Context, day time.Time, now TimeOfDay) (int64, error) {
	const q = `
SELECT COUNT(*) FROM bookings b
WHERE b.status = 'scheduled'
  AND EXISTS (
    SELECT 1 FROM booking_days d
    WHERE d.booking_id = b.id
      AND d.date = $1
      AND d.start_time IS NOT NULL
      AND d.start_time <= $2
  )
`
	var n int64
	err := r.db.QueryRow(ctx, q, day, pgTime(now)).Scan(&n)
	return n, err
}

// CountOpen is the size of the step-2 evaluation pool; debug output only.
func (r *Repository) CountOpen(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE status IN ('scheduled', 'in_progress')`
	var n int64
	err := r.db.QueryRow(ctx, q).Scan(&n)
	return n, err
}

func (r *Repository) List(ctx context.Context) ([]Booking, error) {
	const q = `
SELECT b.id, b.course_type_id, ct.code, b.course_reference, b.course_date,
       COALESCE(b.start_time::text, ''), b.status, b.contact_name, b.telephone, b.email,
       b.booking_notes, b.cancel_reason, b.cancelled_at, b.created_at, b.updated_at
FROM bookings b
JOIN course_types ct ON ct.id = b.course_type_id
ORDER BY b.course_date DESC, b.created_at DESC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		var status string
		if err := rows.Scan(
			&b.ID, &b.CourseTypeID, &b.CourseTypeCode, &b.CourseReference, &b.CourseDate,
			&b.StartTime, &status, &b.ContactName, &b.Telephone, &b.Email,
			&b.BookingNotes, &b.CancelReason, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		b.Status = Status(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	const q = `
SELECT b.id, b.course_type_id, ct.code, b.course_reference, b.course_date,
       COALESCE(b.start_time::text, ''), b.status, b.contact_name, b.telephone, b.email,
       b.booking_notes, b.cancel_reason, b.cancelled_at, b.created_at, b.updated_at
FROM bookings b
JOIN course_types ct ON ct.id = b.course_type_id
WHERE b.id = $1
`
	var b Booking
	var status string
	if err := r.db.QueryRow(ctx, q, id).Scan(
		&b.ID, &b.CourseTypeID, &b.CourseTypeCode, &b.CourseReference, &b.CourseDate,
		&b.StartTime, &status, &b.ContactName, &b.Telephone, &b.Email,
		&b.BookingNotes, &b.CancelReason, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	return &b, nil
}

func (r *Repository) DaysByBooking(ctx context.Context, bookingID string) ([]Day, error) {
	const q = `
SELECT id, booking_id, date, start_time, end_time, day_code
FROM booking_days
WHERE booking_id = $1
ORDER BY date ASC
`
	rows, err := r.db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Day
	for rows.Next() {
		var d Day
		var start, end pgtype.Time
		if err := rows.Scan(&d.ID, &d.BookingID, &d.Date, &start, &end, &d.DayCode); err != nil {
			return nil, err
		}
		d.StartTime = fromPgTime(start)
		d.EndTime = fromPgTime(end)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Insert writes a booking and its day rows atomically.
func Insert(ctx context.Context, tx pgx.Tx, b *Booking, days []Day) error {
	const q = `
INSERT INTO bookings (id, course_type_id, course_reference, course_date, start_time,
                      status, contact_name, telephone, email, booking_notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	var start any
	if b.StartTime != "" {
		t, err := ParseTimeOfDay(b.StartTime)
		if err != nil {
			return err
		}
		start = pgTime(t)
	}
	if _, err := tx.Exec(ctx, q, b.ID, b.CourseTypeID, b.CourseReference, b.CourseDate, start,
		string(b.Status), b.ContactName, b.Telephone, b.Email, b.BookingNotes); err != nil {
		return err
	}

	const dq = `
INSERT INTO booking_days (id, booking_id, date, start_time, end_time, day_code)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, d := range days {
		if _, err := tx.Exec(ctx, dq, d.ID, d.BookingID, d.Date,
			nullPgTime(d.StartTime), nullPgTime(d.EndTime), d.DayCode); err != nil {
			return err
		}
	}
	return nil
}

// Cancel marks a booking cancelled with a reason; the engine excludes it from
// every later pass. Only open bookings can be cancelled.
func Cancel(ctx context.Context, tx pgx.Tx, bookingID, reason string, at time.Time) (bool, error) {
	const q = `
UPDATE bookings
SET status = 'cancelled', cancel_reason = $2, cancelled_at = $3, updated_at = NOW()
WHERE id = $1 AND status IN ('scheduled', 'in_progress', 'awaiting_closure')
`
	tag, err := tx.Exec(ctx, q, bookingID, reason, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetDayEndTime backfills an explicit end time on one day row.
func (r *Repository) SetDayEndTime(ctx context.Context, bookingID, dayID string, end TimeOfDay) error {
	const q = `
UPDATE booking_days
SET end_time = $3
WHERE id = $2 AND booking_id = $1
`
	tag, err := r.db.Exec(ctx, q, bookingID, dayID, pgTime(end))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("day %s not found on booking %s", dayID, bookingID)
	}
	return nil
}

func pgTime(t TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t.Seconds()) * 1_000_000, Valid: true}
}

func nullPgTime(t NullTimeOfDay) pgtype.Time {
	if !t.Valid {
		return pgtype.Time{}
	}
	return pgTime(t.Time)
}

func fromPgTime(t pgtype.Time) NullTimeOfDay {
	if !t.Valid {
		return NullTimeOfDay{}
	}
	secs := int(t.Microseconds / 1_000_000)
	return SomeTime(TimeOfDay{Hour: secs / 3600, Minute: (secs % 3600) / 60, Second: secs % 60})
}

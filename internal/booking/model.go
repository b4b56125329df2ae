package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID              string     `json:"id"`
	CourseTypeID    string     `json:"courseTypeId"`
	CourseTypeCode  string     `json:"courseTypeCode,omitempty"`
	CourseReference string     `json:"courseReference"`
	CourseDate      time.Time  `json:"courseDate"`
	StartTime       string     `json:"startTime,omitempty"`
	Status          Status     `json:"status"`
	ContactName     string     `json:"contactName,omitempty"`
	Telephone       string     `json:"telephone,omitempty"`
	Email           string     `json:"email,omitempty"`
	BookingNotes    string     `json:"bookingNotes,omitempty"`
	CancelReason    string     `json:"cancelReason,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Day is one calendar day of a booking's schedule. Days are created with the
// booking and immutable afterwards except for explicit end-time backfill.
type Day struct {
	ID        string        `json:"id"`
	BookingID string        `json:"bookingId"`
	Date      time.Time     `json:"date"`
	StartTime NullTimeOfDay `json:"-"`
	EndTime   NullTimeOfDay `json:"-"`
	DayCode   string        `json:"dayCode,omitempty"`
}

// Candidate is an open booking as the status engine sees it: current status,
// the course's fractional duration, and the full day schedule ordered by date.
type Candidate struct {
	ID           string
	Status       Status
	DurationDays decimal.Decimal
	Days         []Day
}

package booking

import (
	"math"

	"github.com/shopspring/decimal"
)

// A course's duration_days is fractional (0.5 means a half day), so 1 day
// maps to 24 hours when allocating spans across day rows.
const hoursPerDay = 24.0

// HoursForDayIndex computes how many hours a given day of a multi-day course
// spans, from the course's total fractional duration.
//
// Rules:
// - dayIndex is 1-based within the ordered day rows; rowCount is how many
//   day rows the booking has (normally ceil(totalDays)).
// - A single-row booking takes the whole duration: 0.5 days is a 12-hour day.
// - Otherwise whole days span 24h; the day right after the last whole day
//   takes the fractional remainder, if any.
// - Any index outside that pattern (day rows were hand-edited) defaults to a
//   full 24h rather than guessing short.
func HoursForDayIndex(dayIndex int, totalDays decimal.Decimal, rowCount int) float64 {
	if rowCount == 1 {
		return math.Max(0, totalDays.InexactFloat64()) * hoursPerDay
	}

	whole := int(totalDays.IntPart())
	frac := math.Max(0, totalDays.Sub(decimal.NewFromInt(totalDays.IntPart())).InexactFloat64())

	if dayIndex <= whole {
		return hoursPerDay
	}
	if frac > 0 && dayIndex == whole+1 {
		return frac * hoursPerDay
	}
	return hoursPerDay
}

// AddHoursToTime adds a floating-point hour count (rounded to the nearest
// second) to a time of day. The result wraps at midnight and carries no date;
// date-boundary correctness is the caller's job.
func AddHoursToTime(t TimeOfDay, hours float64) TimeOfDay {
	offset := int(math.Round(hours * 3600))
	secs := (t.Seconds() + offset) % 86400
	if secs < 0 {
		secs += 86400
	}
	return TimeOfDay{Hour: secs / 3600, Minute: (secs % 3600) / 60, Second: secs % 60}
}

// DayRowCount is how many day rows a booking of the given duration gets:
// ceil(duration), never fewer than one.
func DayRowCount(totalDays decimal.Decimal) int {
	n := int(totalDays.Ceil().IntPart())
	if n < 1 {
		return 1
	}
	return n
}

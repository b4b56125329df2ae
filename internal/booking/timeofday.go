package booking

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with no date attached. Day rows store their
// start/end as times of day; only the engine combines them with a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}
}

func TimeOfDayAt(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Seconds() < o.Seconds()
}

// On anchors the time of day to a calendar date in loc, producing an instant.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, t.Second, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// NullTimeOfDay is an explicitly optional time of day. End times (and in bad
// data, start times) can be absent; callers must check Valid rather than rely
// on a zero value meaning midnight.
type NullTimeOfDay struct {
	Time  TimeOfDay
	Valid bool
}

func SomeTime(t TimeOfDay) NullTimeOfDay {
	return NullTimeOfDay{Time: t, Valid: true}
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayAt(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day: %q", s)
}

package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/sittara/table-reservation/internal/model"
)

// ErrBadDate and ErrBadTime flag unparseable client input.
var (
	ErrBadDate = errors.New("invalid date, want YYYY-MM-DD")
	ErrBadTime = errors.New("invalid time, want HH:MM")
)

// ParseTimeOfDay converts "HH:MM" into minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, ErrBadTime
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrBadTime
	}
	return h*60 + m, nil
}

// FormatTimeOfDay renders minutes since midnight as "HH:MM". Minutes
// beyond 24h (overnight slot candidates) wrap into the next day.
func FormatTimeOfDay(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "YYYY-MM-DD" service day into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t.UTC(), nil
}

// OccupancyWindow computes the UTC interval a table is held for a
// seating on the given service day. The date names the service day,
// not the calendar day: with overnight hours (close earlier than open,
// e.g. 19:00-02:00) a "00:30" seating belongs to the service day but
// starts on the following calendar day.
func OccupancyWindow(date, timeOfDay string, sched model.DaySchedule, occupancy time.Duration) (start, end time.Time, err error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	tod, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	offset := time.Duration(tod) * time.Minute
	if !sched.Closed {
		open, openErr := ParseTimeOfDay(sched.Open)
		closeAt, closeErr := ParseTimeOfDay(sched.Close)
		if openErr == nil && closeErr == nil && closeAt < open && tod < open {
			// past-midnight seating of an overnight service day
			offset += 24 * time.Hour
		}
	}
	start = day.Add(offset)
	return start, start.Add(occupancy), nil
}

// WithinHours reports whether a seating may start at the given time of
// day under the day's schedule: at or after open, strictly before
// close. For overnight hours (close earlier than open) times before
// open count as the past-midnight stretch of the service day.
func WithinHours(sched model.DaySchedule, timeOfDay string) (bool, error) {
	if sched.Closed {
		return false, nil
	}
	tod, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false, err
	}
	open, err := ParseTimeOfDay(sched.Open)
	if err != nil {
		return false, err
	}
	closeAt, err := ParseTimeOfDay(sched.Close)
	if err != nil {
		return false, err
	}
	if closeAt <= open {
		closeAt += 24 * 60
		if tod < open {
			tod += 24 * 60
		}
	}
	return tod >= open && tod < closeAt, nil
}

// Overlaps reports whether two half-open intervals intersect:
// aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

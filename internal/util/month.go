package util

import (
	"errors"
	"time"
)

// ErrInvalidMonth is returned by ParseMonth for anything other than YYYY-MM or YYYY-MM-DD
var ErrInvalidMonth = errors.New("month must be YYYY-MM or YYYY-MM-DD")

// DateOf returns the calendar date of t at midnight UTC
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeMonth returns the first day of t's month. Applying it twice is the same as once.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first and last calendar day of t's month
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := NormalizeMonth(t)
	// day 0 of next month is the last day of this one
	end := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// DaysInMonth returns the number of days in t's month
func DaysInMonth(t time.Time) int {
	_, end := MonthBounds(t)
	return end.Day()
}

// WeekStart returns the Monday of the week containing t
func WeekStart(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// PreviousMonthStart returns the first day of the month before t's month
func PreviousMonthStart(t time.Time) time.Time {
	y, m := PreviousMonth(t.Year(), int(t.Month()))
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses YYYY-MM or YYYY-MM-DD and normalizes the result
func ParseMonth(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeMonth(t), nil
		}
	}
	return time.Time{}, ErrInvalidMonth
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DaysBetween counts calendar days from start to end, both inclusive
func DaysBetween(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours()/24) + 1
}

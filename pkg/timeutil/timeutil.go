// Package timeutil provides timezone utilities for Singapore time (UTC+8).
// Recyclify schools run on Singapore time: the streak-gift "today" and the
// class points calendar are both Singapore dates.
package timeutil

import (
	"fmt"
	"time"
)

// SingaporeTZ is the Singapore timezone (UTC+8, no DST).
var SingaporeTZ = time.FixedZone("Asia/Singapore", 8*60*60)

// DateLayout is the calendar date layout used by the backend (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Now returns the current time in Singapore timezone.
func Now() time.Time {
	return time.Now().In(SingaporeTZ)
}

// ToSingapore converts a time to Singapore timezone.
func ToSingapore(t time.Time) time.Time {
	return t.In(SingaporeTZ)
}

// Date creates a time in Singapore timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, SingaporeTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Singapore timezone.
func StartOfDay(t time.Time) time.Time {
	sg := ToSingapore(t)
	return time.Date(sg.Year(), sg.Month(), sg.Day(), 0, 0, 0, 0, SingaporeTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Singapore timezone.
func StartOfWeek(t time.Time) time.Time {
	sg := ToSingapore(t)
	weekday := int(sg.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return StartOfDay(sg.AddDate(0, 0, -(weekday - 1)))
}

// DateKey formats t as a Singapore calendar date (YYYY-MM-DD).
func DateKey(t time.Time) string {
	return ToSingapore(t).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as midnight Singapore time.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, SingaporeTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// IsSameDay checks if two times fall on the same Singapore calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	return DateKey(t1) == DateKey(t2)
}

// DaysBetween returns the number of whole calendar days from t1 to t2.
func DaysBetween(t1, t2 time.Time) int {
	d1 := StartOfDay(t1)
	d2 := StartOfDay(t2)
	return int(d2.Sub(d1).Hours() / 24)
}

// FormatRelative formats a past time relative to now ("5 minutes ago").
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return "just now"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	default:
		return plural(DaysBetween(t, now), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

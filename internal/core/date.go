package core

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the storage form of a calendar day.
const DayLayout = "2006-01-02"

// SameDay compares the calendar day of a and b, each read in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey returns the YYYY-MM-DD form of t.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD key into a Date at midnight UTC.
func ParseDay(s string) (Date, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// SameDay reports whether d falls on the calendar day of t.
func (d Date) SameDay(t time.Time) bool {
	return SameDay(d.Time, t)
}

// Key returns the YYYY-MM-DD form of d.
func (d Date) Key() string {
	return DayKey(d.Time)
}

// FormatLongDate renders "Monday, October 19th, 2026".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s, %s %d%s, %d", t.Weekday(), t.Month(), t.Day(), ordinalSuffix(t.Day()), t.Year())
}

// FormatShortDay renders the trend axis label, e.g. "Oct 19".
func FormatShortDay(t time.Time) string {
	return t.Format("Jan 2")
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FirstName returns the first word of a display name, or "there" when empty.
func FirstName(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

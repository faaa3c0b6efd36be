// Package view derives display-ready structures from card snapshots and the
// ephemeral overlay. Everything here is pure and deterministic.
package view

import (
	"strconv"
	"strings"
	"time"
)

// NotAvailable is shown for optional task attributes that are unset.
const NotAvailable = "N/A"

// FormatTime12h converts a 24-hour "HH:MM" string to "H:MM AM/PM".
// Empty input yields "". Input that is not a valid 24-hour time is returned
// unchanged.
func FormatTime12h(hhmm string) string {
	if hhmm == "" {
		return ""
	}
	hourStr, minute, ok := strings.Cut(hhmm, ":")
	if !ok {
		return hhmm
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return hhmm
	}

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return strconv.Itoa(hour) + ":" + minute + " " + suffix
}

// FormatDate renders a stored date as a calendar date, "1/2/2006", in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return calendarDay(t, loc).Format("1/2/2006")
}

// calendarDay keeps dates stored at UTC midnight on the same calendar day
// regardless of loc; other instants are converted into loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, loc)
	}
	return t.In(loc)
}

// FromEpochSeconds rebuilds a timestamp from the store's seconds
// representation.
func FromEpochSeconds(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

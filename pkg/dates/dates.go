// Package dates parses the loosely formatted dates the school server emits and does the
// inclusive day arithmetic used by leave and attendance screens.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical wire format for dates sent to the school server.
const Layout = "2006-01-02"

var layouts = []string{
	Layout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// Parse accepts any of the date layouts seen in backend payloads and returns the calendar day in UTC.
func Parse(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// Day truncates t to midnight UTC of its own calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders t using the canonical wire layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

const secondsPerDay = 24 * 60 * 60

// CalculateDays returns ceil(|to-from| in days) + 1, counting both endpoints. It works on Unix
// seconds because time.Duration only spans about 292 years.
func CalculateDays(from, to time.Time) int {
	secs := to.Unix() - from.Unix()
	nanos := int64(to.Nanosecond()) - int64(from.Nanosecond())
	if nanos < 0 {
		secs--
		nanos += int64(time.Second)
	}
	if secs < 0 {
		secs, nanos = -secs, -nanos
		if nanos < 0 {
			secs--
			nanos += int64(time.Second)
		}
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 || nanos != 0 {
		days++
	}
	return int(days) + 1
}

// CalculateDaysBetween parses both endpoints before counting.
func CalculateDaysBetween(fromRaw, toRaw string) (int, error) {
	from, err := Parse(fromRaw)
	if err != nil {
		return 0, fmt.Errorf("from date: %w", err)
	}
	to, err := Parse(toRaw)
	if err != nil {
		return 0, fmt.Errorf("to date: %w", err)
	}
	return CalculateDays(from, to), nil
}

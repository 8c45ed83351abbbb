// Package availability decides whether stores and products are open at a given
// instant. Every function is a pure computation over caller-supplied schedule
// records and an explicit reference instant; nothing here performs I/O or reads
// the wall clock except the *Now convenience wrappers.
package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Clock is a wall-clock time of day without a date or zone.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24-hour "HH:MM" string. A trailing ":00" seconds part is accepted.
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) == 3 && parts[2] == "00" {
		parts = parts[:2]
	}
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", raw)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes elapsed since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ClockOf extracts the wall clock of t in its own location.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// Weekday returns the day of week of t in its own location, 0=Sunday through 6=Saturday.
// All weekday arithmetic in this package goes through here.
func Weekday(t time.Time) int {
	return int(t.Weekday())
}

// ValidWeekday reports whether d is in [0,6].
func ValidWeekday(d int) bool {
	return d >= 0 && d <= 6
}

// WeekdayName returns the English name for a 0=Sunday weekday number.
func WeekdayName(d int) string {
	if !ValidWeekday(d) {
		return ""
	}
	return time.Weekday(d).String()
}

// LoadLocation resolves an IANA zone name. The empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// startOfDay returns the first instant of t's calendar date in loc, shifted by
// offset days. Zones that skip midnight start the day at the end of the gap.
func startOfDay(t time.Time, loc *time.Location, offset int) time.Time {
	local := t.In(loc)
	y, m, d := time.Date(local.Year(), local.Month(), local.Day()+offset, 0, 0, 0, 0, time.UTC).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if midnight.Hour() == 0 && midnight.Day() == d {
		return midnight
	}
	_, prev := time.Date(y, m, d-1, 12, 0, 0, 0, loc).Zone()
	return time.Date(y, m, d, 0, 0, 0, 0, time.FixedZone("", prev)).In(loc)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

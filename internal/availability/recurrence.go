package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Recurrence decides whether a calendar date qualifies for a recurring window.
// date carries the window's location.
type Recurrence interface {
	Matches(date time.Time) bool
}

// RecurrenceFunc adapts a plain predicate to Recurrence.
type RecurrenceFunc func(date time.Time) bool

// Matches calls f.
func (f RecurrenceFunc) Matches(date time.Time) bool {
	return f(date)
}

type weekdaySet [7]bool

func (s weekdaySet) Matches(date time.Time) bool {
	return s[Weekday(date)]
}

var recurrenceKeywords = map[string]weekdaySet{
	"daily":    {true, true, true, true, true, true, true},
	"weekdays": {false, true, true, true, true, true, false},
	"weekends": {true, false, false, false, false, false, true},
	// weekly adds nothing beyond the window's own day list.
	"weekly": {},
}

// ParseRecurrence understands the keywords daily, weekdays, weekends and weekly,
// and RFC 5545 RRULE strings ("FREQ=WEEKLY;BYDAY=MO,WE" with or without the
// "RRULE:" prefix). An empty rule returns a nil Recurrence.
func ParseRecurrence(rule string) (Recurrence, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil, nil
	}
	if set, ok := recurrenceKeywords[strings.ToLower(trimmed)]; ok {
		return set, nil
	}
	if !strings.Contains(trimmed, "\n") {
		trimmed = strings.TrimPrefix(trimmed, "RRULE:")
	}
	opts, err := rrule.StrToROption(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule %q: %w", rule, err)
	}
	return rruleRecurrence{opts: *opts}, nil
}

// recurrenceEpoch is the Sunday from which rules without DTSTART are anchored.
var recurrenceEpoch = time.Date(2020, time.January, 5, 12, 0, 0, 0, time.UTC)

// rruleRecurrence evaluates an RRULE. A rule without DTSTART starts on the
// first epoch-week date whose weekday is in anchorDays (the epoch Sunday when
// anchorDays is empty), at midnight in the tested date's zone. Such rules add
// nothing before 2020-01-05; rules with COUNT or UNTIL need an explicit DTSTART.
type rruleRecurrence struct {
	opts       rrule.ROption
	anchorDays weekdaySet
}

// anchoredOn binds a DTSTART-less rule to the weekdays of its window.
func (r rruleRecurrence) anchoredOn(days weekdaySet) rruleRecurrence {
	r.anchorDays = days
	return r
}

func (r rruleRecurrence) dtstart(loc *time.Location) time.Time {
	epoch := time.Date(recurrenceEpoch.Year(), recurrenceEpoch.Month(), recurrenceEpoch.Day(), 12, 0, 0, 0, loc)
	if r.anchorDays == (weekdaySet{}) {
		return startOfDay(epoch, loc, 0)
	}
	for offset := 0; offset < 7; offset++ {
		if r.anchorDays[(int(time.Sunday)+offset)%7] {
			return startOfDay(epoch, loc, offset)
		}
	}
	return startOfDay(epoch, loc, 0)
}

func (r rruleRecurrence) Matches(date time.Time) bool {
	loc := date.Location()
	dayStart := startOfDay(date, loc, 0)
	dayEnd := startOfDay(date, loc, 1).Add(-time.Second)

	opts := r.opts
	if opts.Dtstart.IsZero() {
		opts.Dtstart = r.dtstart(loc)
	}
	rule, err := rrule.NewRRule(opts)
	if err != nil {
		return false
	}
	return len(rule.Between(dayStart, dayEnd, true)) > 0
}

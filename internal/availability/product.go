package availability

import (
	"time"
)

// ProductSearchHorizonDays bounds the forward scan of NextAvailableTime.
const ProductSearchHorizonDays = 60

// ProductWindow is a product-level availability rule. StartTime and EndTime are
// wall-clock times in Timezone (UTC when empty). SpecialDates maps an ISO date in
// that zone to a forced verdict for the date. StartTimeUTC and EndTimeUTC are
// output only: Anchors fills them, and evaluation always recomputes occurrences
// from StartTime, EndTime and Timezone, ignoring any values passed in.
type ProductWindow struct {
	DayOfWeek      []int           `json:"dayOfWeek"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	Timezone       string          `json:"timezone,omitempty"`
	StartTimeUTC   *time.Time      `json:"startTimeUtc,omitempty"`
	EndTimeUTC     *time.Time      `json:"endTimeUtc,omitempty"`
	RecurrenceRule string          `json:"recurrenceRule,omitempty"`
	SpecialDates   map[string]bool `json:"specialDates,omitempty"`
}

// ProductVerdict bundles the three product answers for one reference instant.
type ProductVerdict struct {
	Available     bool       `json:"available"`
	NextAvailable *time.Time `json:"nextAvailable"`
	Status        string     `json:"status"`
}

type productRule struct {
	loc        *time.Location
	days       weekdaySet
	open       Clock
	close      Clock
	recurrence Recurrence
	special    map[string]bool
}

// compileProductWindow validates w. Windows with no usable day, an empty or
// malformed time, or an unknown zone report false.
func compileProductWindow(w ProductWindow) (productRule, bool) {
	var rule productRule
	for _, d := range w.DayOfWeek {
		if ValidWeekday(d) {
			rule.days[d] = true
		}
	}
	if rule.days == (weekdaySet{}) {
		return productRule{}, false
	}

	var err error
	if rule.open, err = ParseClock(w.StartTime); err != nil {
		return productRule{}, false
	}
	if rule.close, err = ParseClock(w.EndTime); err != nil {
		return productRule{}, false
	}
	if rule.loc, err = LoadLocation(w.Timezone); err != nil {
		return productRule{}, false
	}
	// An unparsable rule adds no days.
	if rec, err := ParseRecurrence(w.RecurrenceRule); err == nil {
		if rr, ok := rec.(rruleRecurrence); ok {
			rec = rr.anchoredOn(rule.days)
		}
		rule.recurrence = rec
	}
	rule.special = w.SpecialDates
	return rule, true
}

func (r productRule) override(date time.Time) (value, ok bool) {
	value, ok = r.special[date.Format(isoDate)]
	return value, ok
}

// qualifies reports whether an occurrence opens on date. A forced-available
// special date qualifies; a forced-unavailable one never does.
func (r productRule) qualifies(date time.Time) bool {
	if v, ok := r.override(date); ok {
		return v
	}
	if r.days.Matches(date) {
		return true
	}
	return r.recurrence != nil && r.recurrence.Matches(date)
}

func (r productRule) occurrence(date time.Time) (Interval, bool) {
	resolved, ok := resolveClocks(r.open, r.close, false, date, r.loc, true)
	return resolved.Interval, ok
}

// IsAvailableNow reports whether any window is available at ref.
//
// A special date set to false for ref's local date silences the window for that
// date, including spill from an overnight occurrence that opened the day before.
// A special date set to true makes the window available without time checks.
func IsAvailableNow(windows []ProductWindow, ref time.Time) bool {
	for _, w := range windows {
		rule, ok := compileProductWindow(w)
		if !ok {
			continue
		}
		today := startOfDay(ref, rule.loc, 0)
		if forced, ok := rule.override(today); ok {
			if forced {
				return true
			}
			continue
		}
		for _, offset := range []int{0, -1} {
			date := startOfDay(ref, rule.loc, offset)
			if !rule.qualifies(date) {
				continue
			}
			if iv, ok := rule.occurrence(date); ok && iv.Contains(ref) {
				return true
			}
		}
	}
	return false
}

// NextAvailableTime returns the earliest occurrence start strictly after ref
// across all windows, or nil when none opens within ProductSearchHorizonDays.
// A future forced-available special date counts from its local midnight.
func NextAvailableTime(windows []ProductWindow, ref time.Time) *time.Time {
	var best *time.Time
	for _, w := range windows {
		rule, ok := compileProductWindow(w)
		if !ok {
			continue
		}
		for i := 0; i <= ProductSearchHorizonDays; i++ {
			date := startOfDay(ref, rule.loc, i)
			if !rule.qualifies(date) {
				continue
			}
			candidate := date
			if _, overridden := rule.override(date); !overridden {
				iv, ok := rule.occurrence(date)
				if !ok {
					continue
				}
				candidate = iv.Start
			}
			if !candidate.After(ref) {
				continue
			}
			if best == nil || candidate.Before(*best) {
				c := candidate
				best = &c
			}
			break
		}
	}
	return best
}

// NextAvailableTimeNow is NextAvailableTime at the current wall-clock time.
func NextAvailableTimeNow(windows []ProductWindow) *time.Time {
	return NextAvailableTime(windows, time.Now())
}

// EvaluateProduct computes all product answers against a single ref.
func EvaluateProduct(windows []ProductWindow, ref time.Time) ProductVerdict {
	verdict := ProductVerdict{Status: StatusNotAvailable}
	if len(windows) == 0 {
		return verdict
	}
	verdict.Available = IsAvailableNow(windows, ref)
	verdict.NextAvailable = NextAvailableTime(windows, ref)
	verdict.Status = statusFrom(verdict.Available, verdict.NextAvailable, ref)
	return verdict
}

// Anchors fills StartTimeUTC and EndTimeUTC with the bounds of the occurrence in
// progress at ref, or else the next one within the search horizon.
func Anchors(w ProductWindow, ref time.Time) (ProductWindow, bool) {
	rule, ok := compileProductWindow(w)
	if !ok {
		return w, false
	}
	for i := -1; i <= ProductSearchHorizonDays; i++ {
		date := startOfDay(ref, rule.loc, i)
		if !rule.qualifies(date) {
			continue
		}
		iv, ok := rule.occurrence(date)
		if !ok || !iv.End.After(ref) {
			continue
		}
		start, end := iv.Start.UTC(), iv.End.UTC()
		w.StartTimeUTC, w.EndTimeUTC = &start, &end
		return w, true
	}
	return w, false
}

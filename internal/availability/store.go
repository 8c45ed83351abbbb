package availability

import (
	"fmt"
	"strings"
	"time"
)

// StoreHorizonDays is the number of store-local calendar days a verdict covers.
const StoreHorizonDays = 14

type dayPlan struct {
	start    time.Time
	end      time.Time
	own      []Interval
	warnings []string
}

// IsStoreOpen evaluates the store schedule at ref.
//
// The verdict covers StoreHorizonDays local days starting with the day that
// contains ref. Windows that cross midnight spill into the following day, and
// overlapping windows are merged before closed gaps are computed. An unknown
// store timezone yields a verdict that is closed for the whole horizon (in UTC).
// userTimezone is optional; when it names a different zone an advisory notice is
// appended to the warnings.
func IsStoreOpen(store Store, ref time.Time, userTimezone string) StoreVerdict {
	loc, err := LoadLocation(store.Timezone)
	windows := store.OperatingHours
	if err != nil {
		loc, windows = time.UTC, nil
	}

	// plans[0] is the day before the horizon; it only feeds overnight spill.
	plans := make([]dayPlan, StoreHorizonDays+1)
	for i := range plans {
		plans[i] = planDay(windows, startOfDay(ref, loc, i-1), loc)
	}

	verdict := StoreVerdict{ClosedOn: []Interval{}}
	var periods []Interval
	seen := make(map[string]struct{})

	for i := 1; i < len(plans); i++ {
		day := plans[i]
		var parts []Interval
		for _, iv := range day.own {
			if c, ok := clip(iv, day.start, day.end); ok {
				parts = append(parts, c)
			}
		}
		for _, iv := range plans[i-1].own {
			if c, ok := clip(iv, day.start, day.end); ok {
				parts = append(parts, c)
			}
		}

		merged := MergeIntervals(parts)
		if i == 1 {
			for _, iv := range merged {
				if iv.Contains(ref) {
					verdict.IsOpen = true
				}
			}
		}
		verdict.ClosedOn = append(verdict.ClosedOn, gaps(merged, day.start, day.end)...)
		periods = append(periods, merged...)

		for _, w := range day.warnings {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			verdict.DSTWarnings = append(verdict.DSTWarnings, w)
		}
	}

	// Periods touching at midnight merge here, so a continuation past midnight
	// is never reported as an opening.
	for _, p := range MergeIntervals(periods) {
		if p.Start.After(ref) {
			next := p.Start
			verdict.NextOpen = &next
			break
		}
	}

	if notice := timezoneNotice(loc, ref, userTimezone); notice != "" {
		verdict.DSTWarnings = append(verdict.DSTWarnings, notice)
	}
	return verdict
}

// IsStoreOpenNow is IsStoreOpen at the current wall-clock time.
func IsStoreOpenNow(store Store, userTimezone string) StoreVerdict {
	return IsStoreOpen(store, time.Now(), userTimezone)
}

func planDay(windows []WeeklyWindow, start time.Time, loc *time.Location) dayPlan {
	plan := dayPlan{start: start, end: startOfDay(start, loc, 1)}
	weekday := Weekday(start)
	for _, w := range windows {
		if w.DayOfWeek != weekday {
			continue
		}
		resolved, ok := ResolveWindow(w, start, loc)
		if !ok {
			continue
		}
		plan.own = append(plan.own, resolved.Interval)
		plan.warnings = append(plan.warnings, resolved.Warnings...)
	}
	return plan
}

func timezoneNotice(storeLoc *time.Location, ref time.Time, userTimezone string) string {
	if strings.TrimSpace(userTimezone) == "" {
		return ""
	}
	userLoc, err := LoadLocation(userTimezone)
	if err != nil || userLoc.String() == storeLoc.String() {
		return ""
	}
	return fmt.Sprintf("Store timezone %s (%s) differs from your timezone %s (%s)",
		storeLoc, ClockOf(ref.In(storeLoc)), userLoc, ClockOf(ref.In(userLoc)))
}

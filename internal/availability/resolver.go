package availability

import (
	"fmt"
	"time"
)

// Resolved is a wall-clock time pinned to an absolute instant, with an optional
// advisory note when a DST transition affected the resolution.
type Resolved struct {
	Time    time.Time
	Warning string
}

// ResolvedInterval is a single weekly window resolved against one calendar date.
type ResolvedInterval struct {
	Interval
	Warnings []string
}

type transitionKind int

const (
	noTransition transitionKind = iota
	springForward
	fallBack
)

// transitionOn compares the UTC offset at local midnight with the offset at the
// end of the same local day.
func transitionOn(y int, m time.Month, d int, loc *time.Location) (kind transitionKind, before, after int) {
	_, before = time.Date(y, m, d, 0, 0, 0, 0, loc).Zone()
	_, after = time.Date(y, m, d, 23, 59, 59, 0, loc).Zone()
	switch {
	case after > before:
		return springForward, before, after
	case after < before:
		return fallBack, before, after
	default:
		return noTransition, before, after
	}
}

// ResolveLocalTime pins clock on the calendar date of date (as seen in loc).
//
// On a spring-forward day a time inside the skipped hour is moved forward by the
// size of the gap. On a fall-back day a repeated time resolves to its first
// occurrence. Both cases, and times in the 01:00-03:00 neighborhood of a
// transition, carry a warning. With dstAware false the naive instant is returned.
func ResolveLocalTime(clock Clock, date time.Time, loc *time.Location, dstAware bool) Resolved {
	y, m, d := date.In(loc).Date()
	naive := time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, loc)
	if !dstAware {
		return Resolved{Time: naive}
	}

	kind, before, after := transitionOn(y, m, d, loc)
	day := fmt.Sprintf("%04d-%02d-%02d", y, m, d)

	switch kind {
	case springForward:
		if ClockOf(naive) != clock {
			shifted := time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, time.FixedZone("", before)).In(loc)
			return Resolved{
				Time:    shifted,
				Warning: fmt.Sprintf("%s on %s does not exist in %s (spring forward); adjusted to %s", clock, day, loc, ClockOf(shifted)),
			}
		}
		if clock.Hour >= 1 && clock.Hour <= 3 {
			return Resolved{
				Time:    naive,
				Warning: fmt.Sprintf("%s on %s is near the spring forward transition in %s", clock, day, loc),
			}
		}
	case fallBack:
		delta := time.Duration(before-after) * time.Second
		first, ambiguous := naive, false
		if earlier := naive.Add(-delta); ClockOf(earlier) == clock && sameDate(earlier, naive) {
			first, ambiguous = earlier, true
		} else if later := naive.Add(delta); ClockOf(later) == clock && sameDate(later, naive) {
			ambiguous = true
		}
		if ambiguous {
			return Resolved{
				Time:    first,
				Warning: fmt.Sprintf("%s on %s occurs twice in %s (fall back); using the first occurrence", clock, day, loc),
			}
		}
		if clock.Hour >= 1 && clock.Hour <= 2 {
			return Resolved{
				Time:    naive,
				Warning: fmt.Sprintf("%s on %s is near the fall back transition in %s", clock, day, loc),
			}
		}
	}
	return Resolved{Time: naive}
}

// ResolveWindow resolves w against the calendar date of date in loc. It does not
// check that date falls on w.DayOfWeek. Disabled or malformed windows, and
// zero-length ones, report false.
func ResolveWindow(w WeeklyWindow, date time.Time, loc *time.Location) (ResolvedInterval, bool) {
	if !w.IsOpen || !ValidWeekday(w.DayOfWeek) {
		return ResolvedInterval{}, false
	}
	open, err := ParseClock(w.OpenTime)
	if err != nil {
		return ResolvedInterval{}, false
	}
	closing, err := ParseClock(w.CloseTime)
	if err != nil {
		return ResolvedInterval{}, false
	}
	return resolveClocks(open, closing, w.ClosesNextDay, date, loc, w.DSTCorrected())
}

// resolveClocks applies the overnight rule: an explicit next-day flag or a close
// earlier than the open puts the close on the following calendar date.
func resolveClocks(open, closing Clock, closesNextDay bool, date time.Time, loc *time.Location, dstAware bool) (ResolvedInterval, bool) {
	overnight := closesNextDay || closing.Minutes() < open.Minutes()
	if !overnight && closing == open {
		return ResolvedInterval{}, false
	}

	o := ResolveLocalTime(open, date, loc, dstAware)
	closeDate := date
	if overnight {
		closeDate = startOfDay(date, loc, 1)
	}
	c := ResolveLocalTime(closing, closeDate, loc, dstAware)
	if !c.Time.After(o.Time) {
		return ResolvedInterval{}, false
	}

	out := ResolvedInterval{Interval: Interval{Start: o.Time, End: c.Time}}
	for _, w := range []string{o.Warning, c.Warning} {
		if w != "" {
			out.Warnings = append(out.Warnings, w)
		}
	}
	return out, true
}

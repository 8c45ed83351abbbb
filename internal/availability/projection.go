package availability

import (
	"sort"
	"time"
)

// ConvertWeeklyWindows re-expresses windows defined in sourceZone as the
// equivalent windows in targetZone for the week containing referenceDate.
//
// Each window is resolved on the date of that week matching its DayOfWeek. A
// converted window that crosses a targetZone midnight is split at the midnight.
// The result is ordered by weekday, then open time. Disabled and malformed
// windows are dropped; unknown zone names are an error.
func ConvertWeeklyWindows(windows []WeeklyWindow, sourceZone, targetZone string, referenceDate time.Time) ([]WeeklyWindow, error) {
	src, err := LoadLocation(sourceZone)
	if err != nil {
		return nil, err
	}
	dst, err := LoadLocation(targetZone)
	if err != nil {
		return nil, err
	}

	anchor := startOfDay(referenceDate, src, 0)
	out := make([]WeeklyWindow, 0, len(windows))
	for _, w := range windows {
		if !ValidWeekday(w.DayOfWeek) {
			continue
		}
		date := startOfDay(anchor, src, (w.DayOfWeek-Weekday(anchor)+7)%7)
		resolved, ok := ResolveWindow(w, date, src)
		if !ok {
			continue
		}
		out = append(out, splitAtMidnight(resolved.Interval, dst, w.DSTAware)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return openMinutes(out[i]) < openMinutes(out[j])
	})
	return out, nil
}

func splitAtMidnight(iv Interval, loc *time.Location, dstAware *bool) []WeeklyWindow {
	var out []WeeklyWindow
	start, end := iv.Start.In(loc), iv.End.In(loc)
	for start.Before(end) {
		pieceEnd := end
		if midnight := startOfDay(start, loc, 1); midnight.Before(end) {
			pieceEnd = midnight
		}
		out = append(out, WeeklyWindow{
			DayOfWeek:     Weekday(start),
			OpenTime:      ClockOf(start).String(),
			CloseTime:     ClockOf(pieceEnd).String(),
			IsOpen:        true,
			ClosesNextDay: !sameDate(start, pieceEnd),
			DSTAware:      dstAware,
		})
		start = pieceEnd
	}
	return out
}

func openMinutes(w WeeklyWindow) int {
	c, err := ParseClock(w.OpenTime)
	if err != nil {
		return 0
	}
	return c.Minutes()
}

package availability

import (
	"sort"
	"time"
)

// MergeIntervals coalesces overlapping or touching intervals. The input is not modified.
func MergeIntervals(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]Interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// clip bounds iv to [lo, hi). Empty results report false.
func clip(iv Interval, lo, hi time.Time) (Interval, bool) {
	start, end := iv.Start, iv.End
	if start.Before(lo) {
		start = lo
	}
	if end.After(hi) {
		end = hi
	}
	return Interval{Start: start, End: end}, end.After(start)
}

// gaps returns the parts of [lo, hi) not covered by merged, which must be sorted
// and disjoint.
func gaps(merged []Interval, lo, hi time.Time) []Interval {
	var out []Interval
	cursor := lo
	for _, iv := range merged {
		if iv.Start.After(cursor) {
			out = append(out, Interval{Start: cursor, End: iv.Start})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if hi.After(cursor) {
		out = append(out, Interval{Start: cursor, End: hi})
	}
	return out
}

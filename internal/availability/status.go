package availability

import (
	"fmt"
	"math"
	"time"
)

// Product status vocabulary.
const (
	StatusNotAvailable = "Not available"
	StatusAvailableNow = "Available now"
)

// AvailabilityStatus summarises product availability at ref. "Same day" is
// judged in ref's location, so callers pass ref in the viewer's zone.
func AvailabilityStatus(windows []ProductWindow, ref time.Time) string {
	return EvaluateProduct(windows, ref).Status
}

func statusFrom(available bool, next *time.Time, ref time.Time) string {
	switch {
	case available:
		return StatusAvailableNow
	case next == nil:
		return StatusNotAvailable
	}

	local := next.In(ref.Location())
	if sameDate(local, ref) {
		hours := int(math.Round(next.Sub(ref).Hours()))
		// Openings under half an hour away still read "in 1 hours", never "in 0".
		if hours < 1 {
			hours = 1
		}
		return fmt.Sprintf("Available in %d hours", hours)
	}
	return "Available " + local.Weekday().String()
}

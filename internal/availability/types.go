package availability

import "time"

// WeeklyWindow is a recurring weekly opening rule. DayOfWeek is the local day on
// which OpenTime falls.
type WeeklyWindow struct {
	DayOfWeek     int    `json:"dayOfWeek"`
	OpenTime      string `json:"openTime"`
	CloseTime     string `json:"closeTime"`
	IsOpen        bool   `json:"isOpen"`
	ClosesNextDay bool   `json:"closesNextDay"`
	// DSTAware defaults to true when nil.
	DSTAware *bool `json:"dstAware,omitempty"`
}

// DSTCorrected reports whether DST correction applies to the window.
func (w WeeklyWindow) DSTCorrected() bool {
	return w.DSTAware == nil || *w.DSTAware
}

// Store is the schedule snapshot the store engine evaluates.
type Store struct {
	Timezone       string         `json:"timezone"`
	OperatingHours []WeeklyWindow `json:"operatingHours"`
}

// Interval is an absolute half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// StoreVerdict is the store engine's answer for one reference instant.
type StoreVerdict struct {
	IsOpen      bool       `json:"isOpen"`
	NextOpen    *time.Time `json:"nextOpen"`
	ClosedOn    []Interval `json:"closedOn"`
	DSTWarnings []string   `json:"dstWarnings,omitempty"`
}

package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productWindow(days []int, start, end string) ProductWindow {
	return ProductWindow{DayOfWeek: days, StartTime: start, EndTime: end}
}

func TestIsAvailableNowWeekly(t *testing.T) {
	windows := []ProductWindow{productWindow([]int{1}, "09:00", "17:00")}

	assert.True(t, IsAvailableNow(windows, utc(t, "2025-06-02T12:00:00Z")))
	assert.False(t, IsAvailableNow(windows, utc(t, "2025-06-02T17:00:00Z")))
	assert.False(t, IsAvailableNow(windows, utc(t, "2025-06-03T12:00:00Z")))
}

func TestIsAvailableNowSpecialDateClosed(t *testing.T) {
	w := productWindow([]int{0}, "09:00", "17:00")
	ref := utc(t, "2025-08-24T12:00:00Z")
	require.True(t, IsAvailableNow([]ProductWindow{w}, ref))

	w.SpecialDates = map[string]bool{"2025-08-24": false}
	assert.False(t, IsAvailableNow([]ProductWindow{w}, ref))
}

func TestIsAvailableNowSpecialDateOpen(t *testing.T) {
	w := productWindow([]int{1}, "09:00", "17:00")
	w.SpecialDates = map[string]bool{"2025-08-26": true}
	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-08-26T03:00:00Z")))
}

func TestIsAvailableNowOvernight(t *testing.T) {
	windows := []ProductWindow{productWindow([]int{1}, "22:00", "02:00")}
	assert.True(t, IsAvailableNow(windows, utc(t, "2025-06-03T01:00:00Z")))
	assert.False(t, IsAvailableNow(windows, utc(t, "2025-06-03T02:00:00Z")))
}

func TestIsAvailableNowLocalZone(t *testing.T) {
	w := productWindow([]int{1}, "09:00", "17:00")
	w.Timezone = "America/New_York"
	assert.False(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-02T12:00:00Z")))
	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-02T14:00:00Z")))
}

func TestIsAvailableNowMalformedWindows(t *testing.T) {
	ref := utc(t, "2025-06-02T12:00:00Z")
	bad := []ProductWindow{
		productWindow(nil, "09:00", "17:00"),
		productWindow([]int{9}, "09:00", "17:00"),
		productWindow([]int{1}, "", "17:00"),
		productWindow([]int{1}, "09:00", "25:00"),
		{DayOfWeek: []int{1}, StartTime: "09:00", EndTime: "17:00", Timezone: "Bogus/Zone"},
	}
	for _, w := range bad {
		assert.False(t, IsAvailableNow([]ProductWindow{w}, ref), "%+v", w)
		assert.Nil(t, NextAvailableTime([]ProductWindow{w}, ref), "%+v", w)
	}
}

func TestNextAvailableTime(t *testing.T) {
	windows := []ProductWindow{productWindow([]int{1}, "09:00", "17:00")}

	next := NextAvailableTime(windows, utc(t, "2025-06-02T07:00:00Z"))
	require.NotNil(t, next)
	assert.Equal(t, utc(t, "2025-06-02T09:00:00Z"), next.UTC())

	next = NextAvailableTime(windows, utc(t, "2025-06-02T12:00:00Z"))
	require.NotNil(t, next)
	assert.Equal(t, utc(t, "2025-06-09T09:00:00Z"), next.UTC())

	assert.Nil(t, NextAvailableTime(nil, utc(t, "2025-06-02T12:00:00Z")))
}

func TestNextAvailableTimeForcedDate(t *testing.T) {
	w := productWindow([]int{1}, "09:00", "17:00")
	w.SpecialDates = map[string]bool{"2025-06-04": true, "2025-06-09": false}

	next := NextAvailableTime([]ProductWindow{w}, utc(t, "2025-06-02T18:00:00Z"))
	require.NotNil(t, next)
	assert.Equal(t, utc(t, "2025-06-04T00:00:00Z"), next.UTC())

	next = NextAvailableTime([]ProductWindow{w}, utc(t, "2025-06-04T01:00:00Z"))
	require.NotNil(t, next)
	assert.Equal(t, utc(t, "2025-06-16T09:00:00Z"), next.UTC(), "the closed Monday is skipped")
}

func TestNextAvailableTimePicksEarliestWindow(t *testing.T) {
	windows := []ProductWindow{
		productWindow([]int{5}, "09:00", "17:00"),
		productWindow([]int{3}, "13:00", "14:00"),
	}
	next := NextAvailableTime(windows, utc(t, "2025-06-02T12:00:00Z"))
	require.NotNil(t, next)
	assert.Equal(t, utc(t, "2025-06-04T13:00:00Z"), next.UTC())
}

func TestNextAvailableTimeIsMonotonic(t *testing.T) {
	windows := []ProductWindow{
		productWindow([]int{1, 3}, "09:00", "17:00"),
		{DayOfWeek: []int{5}, StartTime: "22:00", EndTime: "02:00", Timezone: "Europe/Berlin"},
		{DayOfWeek: []int{2}, StartTime: "10:00", EndTime: "11:00", SpecialDates: map[string]bool{"2025-06-07": true}},
	}

	var previous *time.Time
	for ref := utc(t, "2025-06-01T00:00:00Z"); ref.Before(utc(t, "2025-06-15T00:00:00Z")); ref = ref.Add(45 * time.Minute) {
		next := NextAvailableTime(windows, ref)
		require.NotNil(t, next)
		require.True(t, next.After(ref))
		if previous != nil {
			require.False(t, next.Before(*previous), "ref %s", ref)
		}
		previous = next
	}
}

func TestProductRecurrenceAugmentsDays(t *testing.T) {
	w := productWindow([]int{1}, "09:00", "17:00")
	w.RecurrenceRule = "weekends"
	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-07T10:00:00Z")))
	assert.False(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-04T10:00:00Z")))

	w.RecurrenceRule = "FREQ=WEEKLY;BYDAY=WE"
	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-04T10:00:00Z")))
	assert.False(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-05T10:00:00Z")))

	w.RecurrenceRule = "FREQ=MONTHLY"
	assert.False(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-04T10:00:00Z")))
	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-06T10:00:00Z")), "monthly on the anchor Monday's date")
	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-02T10:00:00Z")))

	w.RecurrenceRule = "FREQ=WEEKLY"
	for day := 3; day <= 8; day++ {
		ref := time.Date(2025, time.June, day, 10, 0, 0, 0, time.UTC)
		assert.False(t, IsAvailableNow([]ProductWindow{w}, ref), "weekly adds no day beyond Monday: %s", ref)
	}

	w.RecurrenceRule = "not a rule"
	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-02T10:00:00Z")))
	assert.False(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-04T10:00:00Z")))
}

func TestProductEvaluationIgnoresInboundAnchors(t *testing.T) {
	w := productWindow([]int{1}, "09:00", "17:00")
	staleStart := utc(t, "2025-06-02T00:00:00Z")
	staleEnd := utc(t, "2025-06-02T01:00:00Z")
	w.StartTimeUTC, w.EndTimeUTC = &staleStart, &staleEnd

	assert.True(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-02T12:00:00Z")))
	assert.False(t, IsAvailableNow([]ProductWindow{w}, utc(t, "2025-06-02T00:30:00Z")))
	next := NextAvailableTime([]ProductWindow{w}, utc(t, "2025-06-01T23:00:00Z"))
	require.NotNil(t, next)
	assert.Equal(t, utc(t, "2025-06-02T09:00:00Z"), *next)
}

func TestAnchors(t *testing.T) {
	w := productWindow([]int{1}, "09:00", "17:00")
	w.Timezone = "America/New_York"

	anchored, ok := Anchors(w, utc(t, "2025-06-02T12:00:00Z"))
	require.True(t, ok)
	require.NotNil(t, anchored.StartTimeUTC)
	assert.Equal(t, utc(t, "2025-06-02T13:00:00Z"), *anchored.StartTimeUTC)
	assert.Equal(t, utc(t, "2025-06-02T21:00:00Z"), *anchored.EndTimeUTC)

	anchored, ok = Anchors(w, utc(t, "2025-06-02T22:00:00Z"))
	require.True(t, ok)
	assert.Equal(t, utc(t, "2025-06-09T13:00:00Z"), *anchored.StartTimeUTC)

	_, ok = Anchors(productWindow(nil, "09:00", "17:00"), utc(t, "2025-06-02T12:00:00Z"))
	assert.False(t, ok)
}

func TestAvailabilityStatus(t *testing.T) {
	ref := utc(t, "2025-06-02T12:00:00Z")

	assert.Equal(t, StatusNotAvailable, AvailabilityStatus(nil, ref))
	assert.Equal(t, StatusAvailableNow, AvailabilityStatus([]ProductWindow{productWindow([]int{1}, "09:00", "17:00")}, ref))
	assert.Equal(t, "Available in 3 hours", AvailabilityStatus([]ProductWindow{productWindow([]int{1}, "15:00", "17:00")}, ref))
	assert.Equal(t, "Available in 1 hours", AvailabilityStatus([]ProductWindow{productWindow([]int{1}, "12:10", "13:00")}, ref))
	assert.Equal(t, "Available Wednesday", AvailabilityStatus([]ProductWindow{productWindow([]int{3}, "09:00", "10:00")}, ref))
	assert.Equal(t, StatusNotAvailable, AvailabilityStatus([]ProductWindow{productWindow(nil, "09:00", "10:00")}, ref))
}

func TestEvaluateProductUsesSingleReference(t *testing.T) {
	windows := []ProductWindow{productWindow([]int{1}, "09:00", "17:00")}
	verdict := EvaluateProduct(windows, utc(t, "2025-06-02T12:00:00Z"))
	assert.True(t, verdict.Available)
	require.NotNil(t, verdict.NextAvailable)
	assert.Equal(t, StatusAvailableNow, verdict.Status)
}

func TestParseRecurrence(t *testing.T) {
	rec, err := ParseRecurrence("")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = ParseRecurrence("RRULE:FREQ=DAILY")
	require.NoError(t, err)
	assert.True(t, rec.Matches(utc(t, "2025-06-05T00:00:00Z")))

	rec, err = ParseRecurrence("Weekdays")
	require.NoError(t, err)
	assert.True(t, rec.Matches(utc(t, "2025-06-05T00:00:00Z")))
	assert.False(t, rec.Matches(utc(t, "2025-06-07T00:00:00Z")))

	for _, rule := range []string{"FREQ=WEEKLY", "FREQ=MONTHLY", "FREQ=YEARLY", "FREQ=WEEKLY;INTERVAL=2"} {
		rec, err = ParseRecurrence(rule)
		require.NoError(t, err)
		matches := 0
		for day := 2; day <= 8; day++ {
			if rec.Matches(time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)) {
				matches++
			}
		}
		assert.LessOrEqual(t, matches, 1, rule)
	}

	rec, err = ParseRecurrence("FREQ=WEEKLY")
	require.NoError(t, err)
	assert.True(t, rec.Matches(utc(t, "2025-06-08T00:00:00Z")), "anchored on the epoch Sunday")
	assert.False(t, rec.Matches(utc(t, "2025-06-09T00:00:00Z")))

	_, err = ParseRecurrence("FREQ=SOMETIMES")
	assert.Error(t, err)

	var custom Recurrence = RecurrenceFunc(func(date time.Time) bool { return date.Day() == 1 })
	assert.True(t, custom.Matches(utc(t, "2025-07-01T00:00:00Z")))
}

package availability

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(day int, open, close string) WeeklyWindow {
	return WeeklyWindow{DayOfWeek: day, OpenTime: open, CloseTime: close, IsOpen: true}
}

func everyDay(open, close string, nextDay bool) []WeeklyWindow {
	out := make([]WeeklyWindow, 0, 7)
	for d := 0; d < 7; d++ {
		w := window(d, open, close)
		w.ClosesNextDay = nextDay
		out = append(out, w)
	}
	return out
}

func TestIsStoreOpenBusinessDay(t *testing.T) {
	store := Store{Timezone: "UTC", OperatingHours: []WeeklyWindow{window(1, "09:00", "17:00")}}

	verdict := IsStoreOpen(store, utc(t, "2025-06-02T12:00:00Z"), "")
	assert.True(t, verdict.IsOpen)
	require.NotNil(t, verdict.NextOpen)
	assert.Equal(t, utc(t, "2025-06-09T09:00:00Z"), verdict.NextOpen.UTC())

	verdict = IsStoreOpen(store, utc(t, "2025-06-02T17:00:00Z"), "")
	assert.False(t, verdict.IsOpen, "close instant is exclusive")

	verdict = IsStoreOpen(store, utc(t, "2025-06-02T09:00:00Z"), "")
	assert.True(t, verdict.IsOpen, "open instant is inclusive")

	verdict = IsStoreOpen(store, utc(t, "2025-06-02T07:00:00Z"), "")
	assert.False(t, verdict.IsOpen)
	require.NotNil(t, verdict.NextOpen)
	assert.Equal(t, utc(t, "2025-06-02T09:00:00Z"), verdict.NextOpen.UTC())
	assert.Empty(t, verdict.DSTWarnings)
}

func TestIsStoreOpenOvernightSpill(t *testing.T) {
	store := Store{Timezone: "UTC", OperatingHours: everyDay("22:00", "02:00", true)}

	verdict := IsStoreOpen(store, utc(t, "2025-06-03T01:00:00Z"), "")
	assert.True(t, verdict.IsOpen)

	verdict = IsStoreOpen(store, utc(t, "2025-06-02T23:00:00Z"), "")
	assert.True(t, verdict.IsOpen)
	require.NotNil(t, verdict.NextOpen)
	assert.Equal(t, utc(t, "2025-06-03T22:00:00Z"), verdict.NextOpen.UTC(), "midnight continuation is not an opening")

	verdict = IsStoreOpen(store, utc(t, "2025-06-03T02:00:00Z"), "")
	assert.False(t, verdict.IsOpen)
}

func TestIsStoreOpenMergesOverlaps(t *testing.T) {
	store := Store{Timezone: "UTC", OperatingHours: []WeeklyWindow{
		window(1, "08:00", "12:00"),
		window(1, "11:00", "14:00"),
	}}

	verdict := IsStoreOpen(store, utc(t, "2025-06-02T07:00:00Z"), "")
	require.GreaterOrEqual(t, len(verdict.ClosedOn), 2)
	assert.Equal(t, Interval{Start: utc(t, "2025-06-02T00:00:00Z"), End: utc(t, "2025-06-02T08:00:00Z")}, utcInterval(verdict.ClosedOn[0]))
	assert.Equal(t, Interval{Start: utc(t, "2025-06-02T14:00:00Z"), End: utc(t, "2025-06-03T00:00:00Z")}, utcInterval(verdict.ClosedOn[1]))

	for _, gap := range verdict.ClosedOn {
		assert.False(t, gap.Contains(utc(t, "2025-06-02T11:30:00Z")))
	}
	assert.True(t, IsStoreOpen(store, utc(t, "2025-06-02T11:30:00Z"), "").IsOpen)
	assert.True(t, IsStoreOpen(store, utc(t, "2025-06-02T13:59:00Z"), "").IsOpen)
}

func TestIsStoreOpenZeroLengthWindow(t *testing.T) {
	store := Store{Timezone: "UTC", OperatingHours: []WeeklyWindow{window(1, "09:00", "09:00")}}

	verdict := IsStoreOpen(store, utc(t, "2025-06-02T09:00:00Z"), "")
	assert.False(t, verdict.IsOpen)
	assert.Nil(t, verdict.NextOpen)
	assert.Len(t, verdict.ClosedOn, StoreHorizonDays)
}

func TestIsStoreOpenAllDayWindowLeavesLastMinute(t *testing.T) {
	store := Store{Timezone: "UTC", OperatingHours: everyDay("00:00", "23:59", false)}

	assert.True(t, IsStoreOpen(store, utc(t, "2025-06-02T23:58:59Z"), "").IsOpen)
	verdict := IsStoreOpen(store, utc(t, "2025-06-02T23:59:30Z"), "")
	assert.False(t, verdict.IsOpen)
	require.NotNil(t, verdict.NextOpen)
	assert.Equal(t, utc(t, "2025-06-03T00:00:00Z"), verdict.NextOpen.UTC())
	require.NotEmpty(t, verdict.ClosedOn)
	assert.Equal(t, time.Minute, verdict.ClosedOn[0].Duration())
}

func TestIsStoreOpenSpringForward(t *testing.T) {
	store := Store{Timezone: "America/New_York", OperatingHours: []WeeklyWindow{window(0, "02:00", "10:00")}}

	verdict := IsStoreOpen(store, utc(t, "2025-03-09T12:00:00Z"), "")
	assert.True(t, verdict.IsOpen)
	require.NotEmpty(t, verdict.DSTWarnings)
	assert.True(t, containsSubstring(verdict.DSTWarnings, "spring forward"))

	verdict = IsStoreOpen(store, utc(t, "2025-03-09T06:30:00Z"), "")
	assert.False(t, verdict.IsOpen, "01:30 EST precedes the shifted opening")
	require.NotNil(t, verdict.NextOpen)
	assert.Equal(t, utc(t, "2025-03-09T07:00:00Z"), verdict.NextOpen.UTC())
}

func TestIsStoreOpenFallBack(t *testing.T) {
	store := Store{Timezone: "America/New_York", OperatingHours: []WeeklyWindow{window(0, "01:30", "05:00")}}

	verdict := IsStoreOpen(store, utc(t, "2025-11-02T05:45:00Z"), "")
	assert.True(t, verdict.IsOpen)
	assert.True(t, containsSubstring(verdict.DSTWarnings, "fall back"))

	verdict = IsStoreOpen(store, utc(t, "2025-11-02T05:15:00Z"), "")
	assert.False(t, verdict.IsOpen)
	require.NotNil(t, verdict.NextOpen)
	assert.Equal(t, utc(t, "2025-11-02T05:30:00Z"), verdict.NextOpen.UTC())
}

func TestIsStoreOpenInvalidTimezone(t *testing.T) {
	store := Store{Timezone: "Nowhere/Special", OperatingHours: everyDay("00:00", "23:00", false)}

	verdict := IsStoreOpen(store, utc(t, "2025-06-02T12:00:00Z"), "")
	assert.False(t, verdict.IsOpen)
	assert.Nil(t, verdict.NextOpen)
	require.Len(t, verdict.ClosedOn, StoreHorizonDays)
	assert.Equal(t, utc(t, "2025-06-02T00:00:00Z"), verdict.ClosedOn[0].Start)
}

func TestIsStoreOpenTimezoneNotice(t *testing.T) {
	store := Store{Timezone: "UTC", OperatingHours: []WeeklyWindow{window(1, "09:00", "17:00")}}

	verdict := IsStoreOpen(store, utc(t, "2025-06-02T12:00:00Z"), "Asia/Tokyo")
	require.Len(t, verdict.DSTWarnings, 1)
	assert.Equal(t, "Store timezone UTC (12:00) differs from your timezone Asia/Tokyo (21:00)", verdict.DSTWarnings[0])

	assert.Empty(t, IsStoreOpen(store, utc(t, "2025-06-02T12:00:00Z"), "UTC").DSTWarnings)
	assert.Empty(t, IsStoreOpen(store, utc(t, "2025-06-02T12:00:00Z"), "Not/AZone").DSTWarnings)
}

func TestIsStoreOpenClosedRangesTileHorizon(t *testing.T) {
	stores := []Store{
		{Timezone: "UTC", OperatingHours: []WeeklyWindow{
			window(1, "08:00", "12:00"),
			window(1, "11:00", "14:00"),
			window(3, "20:00", "03:00"),
			window(5, "00:00", "23:59"),
		}},
		{Timezone: "America/New_York", OperatingHours: append(everyDay("22:00", "02:00", true), window(0, "02:00", "04:00"))},
	}
	refs := []time.Time{utc(t, "2025-06-02T10:00:00Z"), utc(t, "2025-03-05T10:00:00Z")}

	for _, store := range stores {
		for _, ref := range refs {
			verdict := IsStoreOpen(store, ref, "")
			closed := verdict.ClosedOn
			for i, gap := range closed {
				require.True(t, gap.End.After(gap.Start), "gap %d is empty", i)
				if i > 0 {
					require.False(t, gap.Start.Before(closed[i-1].End), "gap %d overlaps its predecessor", i)
				}
			}

			loc := mustLoad(t, store.Timezone)
			horizonStart := startOfDay(ref, loc, 0)
			horizonEnd := startOfDay(ref, loc, StoreHorizonDays)
			for probe := horizonStart; probe.Before(horizonEnd); probe = probe.Add(30 * time.Minute) {
				inGap := false
				for _, gap := range closed {
					if gap.Contains(probe) {
						inGap = true
						break
					}
				}
				open := IsStoreOpen(store, probe, "").IsOpen
				require.NotEqual(t, inGap, open, "probe %s in %s", probe.UTC(), store.Timezone)
			}
		}
	}
}

func utcInterval(iv Interval) Interval {
	return Interval{Start: iv.Start.UTC(), End: iv.End.UTC()}
}

func containsSubstring(items []string, needle string) bool {
	for _, item := range items {
		if strings.Contains(item, needle) {
			return true
		}
	}
	return false
}

package braindump

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mondayNoon is Monday 2026-10-19 10:00 UTC.
var mondayNoon = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

// calendarDays counts whole calendar days from a to b, ignoring DST shifts.
func calendarDays(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func TestResolveDates_FromMonday(t *testing.T) {
	table := ResolveDates(mondayNoon)

	tests := []struct {
		phrase string
		want   string
	}{
		{"today", "2026-10-19"},
		{"tomorrow", "2026-10-20"},
		{"this_monday", "2026-10-26"},
		{"this_tuesday", "2026-10-20"},
		{"this_wednesday", "2026-10-21"},
		{"this_friday", "2026-10-23"},
		{"this_sunday", "2026-10-25"},
		{"next_monday", "2026-11-02"},
		{"next_wednesday", "2026-10-28"},
		{"next_friday", "2026-10-30"},
		{"next_sunday", "2026-11-01"},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			d, ok := table.Get(tt.phrase)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.String())
			assert.Equal(t, tt.phrase, d.Phrase)
		})
	}
}

func TestResolveDates_YearBoundary(t *testing.T) {
	// Thursday 2026-12-31.
	table := ResolveDates(time.Date(2026, 12, 31, 23, 30, 0, 0, time.UTC))

	assert.Equal(t, "2027-01-01", table.must("tomorrow").String())
	assert.Equal(t, "2027-01-01", table.must("this_friday").String())
	assert.Equal(t, "2027-01-07", table.must("this_thursday").String())
	assert.Equal(t, "2027-01-08", table.must("next_friday").String())
}

func TestResolveDates_TableIsComplete(t *testing.T) {
	table := ResolveDates(mondayNoon)

	entries := table.Entries()
	require.Len(t, entries, 16)
	assert.Equal(t, "today", entries[0].Phrase)
	assert.Equal(t, "tomorrow", entries[1].Phrase)
	assert.Len(t, table.Map(), 16)

	for i := range Weekdays {
		_, ok := table.Get(ThisPhrase(i))
		assert.True(t, ok, ThisPhrase(i))
		_, ok = table.Get(NextPhrase(i))
		assert.True(t, ok, NextPhrase(i))
	}
}

func TestResolveDates_Properties(t *testing.T) {
	locations := []*time.Location{time.UTC}
	if ny, err := time.LoadLocation("America/New_York"); err == nil {
		locations = append(locations, ny)
	}

	for _, loc := range locations {
		// Four weeks across the end of daylight saving time, at varied hours.
		start := time.Date(2026, 10, 15, 0, 5, 0, 0, loc)
		for i := 0; i < 28; i++ {
			now := start.AddDate(0, 0, i).Add(time.Duration(i%24) * time.Hour)
			table := ResolveDates(now)
			again := ResolveDates(now)

			for w := range Weekdays {
				this := table.must(ThisPhrase(w))
				next := table.must(NextPhrase(w))

				gap := calendarDays(now, this.Date)
				assert.GreaterOrEqual(t, gap, 1, "%s from %s", this.Phrase, now)
				assert.LessOrEqual(t, gap, 7, "%s from %s", this.Phrase, now)
				assert.Equal(t, w, WeekdayIndex(this.Date))
				assert.Equal(t, w, WeekdayIndex(next.Date))

				assert.Equal(t, 7, calendarDays(this.Date, next.Date), "%s vs %s from %s", next.Phrase, this.Phrase, now)
				assert.True(t, next.Date.After(this.Date))

				assert.True(t, this.Date.Equal(again.must(ThisPhrase(w)).Date))
				assert.True(t, next.Date.Equal(again.must(NextPhrase(w)).Date))
			}
		}
	}
}

func TestResolveDates_TodayWeekdayRollsForward(t *testing.T) {
	table := ResolveDates(mondayNoon)
	today := table.must("today")

	this := table.must("this_monday")
	assert.NotEqual(t, today.String(), this.String())
	assert.Equal(t, 7, calendarDays(today.Date, this.Date))
	assert.Equal(t, 14, calendarDays(today.Date, table.must("next_monday").Date))
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(mondayNoon))
	assert.Equal(t, 6, WeekdayIndex(mondayNoon.AddDate(0, 0, 6)))
	assert.Equal(t, 2, WeekdayIndex(mondayNoon.AddDate(0, 0, 2)))
}

func TestDateTable_Lookup(t *testing.T) {
	table := ResolveDates(mondayNoon)

	tests := []struct {
		phrase string
		want   string
		ok     bool
	}{
		{"Next Friday", "2026-10-30", true},
		{"wednesday", "2026-10-21", true},
		{"this wednesday", "2026-10-21", true},
		{"tomorrow", "2026-10-20", true},
		{"  today ", "2026-10-19", true},
		{"last friday", "", false},
		{"someday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			d, ok := table.Lookup(tt.phrase)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, d.String())
			}
		})
	}
}

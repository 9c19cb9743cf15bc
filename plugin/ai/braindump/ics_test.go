package braindump

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportICS(t *testing.T) {
	events := []NormalizedEvent{
		{ID: "ai_1_0", Title: "Report Due", Description: "Quarterly report", Date: "2026-10-30", Time: strPtr("5:00 PM"), Priority: PriorityHigh},
		{ID: "ai_1_1", Title: "Call mom", Date: "2026-10-20", Priority: PriorityLow},
		{ID: "ai_1_2", Title: "Broken", Date: "not-a-date", Priority: PriorityMedium},
	}

	out := ExportICS(events, time.UTC, mondayNoon)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	parsed := cal.Events()
	require.Len(t, parsed, 2, "events with unparseable dates are skipped")

	timed := parsed[0]
	assert.Equal(t, "ai_1_0@espresso", timed.Id())
	assert.Equal(t, "Report Due", timed.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "1", timed.GetProperty(ical.ComponentPropertyPriority).Value)
	start, err := timed.GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 30, 17, 0, 0, 0, time.UTC), start)
	end, err := timed.GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))

	allDay := parsed[1]
	assert.Equal(t, "9", allDay.GetProperty(ical.ComponentPropertyPriority).Value)
	assert.Nil(t, allDay.GetProperty(ical.ComponentPropertyDescription))
	assert.Equal(t, "20261020", allDay.GetProperty(ical.ComponentPropertyDtStart).Value)
}

func TestExportICS_Empty(t *testing.T) {
	out := ExportICS(nil, nil, mondayNoon)
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, cal.Events())
}

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/christianacho/espresso/plugin/ai/braindump"
)

var mondayNoon = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func sampleEvents() []braindump.NormalizedEvent {
	six := "6:00 PM"
	return []braindump.NormalizedEvent{
		{ID: "ai_1_0", Title: "Practice", Date: "2026-10-28", Time: &six, Priority: braindump.PriorityMedium},
		{ID: "ai_1_1", Title: "Call mom", Date: "2026-10-20", Priority: braindump.PriorityLow},
	}
}

func TestWriteEvents(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEvents(&buf, formatJSON, sampleEvents(), mondayNoon))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "6:00 PM", got[0]["time"])
		assert.Nil(t, got[1]["time"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEvents(&buf, formatYAML, sampleEvents(), mondayNoon))
		var got []braindump.NormalizedEvent
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, sampleEvents(), got)
	})

	t.Run("ics", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEvents(&buf, formatICS, sampleEvents(), mondayNoon))
		assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
		assert.Equal(t, 2, strings.Count(buf.String(), "BEGIN:VEVENT"))
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEvents(&buf, formatText, sampleEvents(), mondayNoon))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "6:00 PM")
		assert.Contains(t, lines[2], "unspecified")
		assert.Contains(t, lines[2], "Call mom")
	})

	assert.Error(t, writeEvents(&bytes.Buffer{}, "xml", nil, mondayNoon))
}

func TestWriteDates(t *testing.T) {
	table := braindump.ResolveDates(mondayNoon)

	var buf bytes.Buffer
	require.NoError(t, writeDates(&buf, formatJSON, table))
	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 16)
	assert.Equal(t, "2026-10-28", got["next_wednesday"])

	buf.Reset()
	require.NoError(t, writeDates(&buf, formatText, table))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 16)
	assert.True(t, strings.HasPrefix(lines[0], "today"))
}

func TestReadInput(t *testing.T) {
	got, err := readInput([]string{"gym", "tomorrow"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "gym tomorrow", got)

	got, err = readInput(nil, strings.NewReader("call mom\n"))
	require.NoError(t, err)
	assert.Equal(t, "call mom\n", got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Nil(t, splitList(""))
}

package braindump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDeadline(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"report due by next friday", true},
		{"Project Due thursday", true},
		{"DEADLINE for taxes", true},
		{"submit by monday: essay", true},
		{"finish by tonight", true},
		{"assignment due wednesday", true},
		{"practice next wednesday", false},
		{"gym tomorrow", false},
		{"dentist appointment friday", false},
		{"the bill is due", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDeadline(tt.input))
		})
	}
}

func TestPreparationSubject(t *testing.T) {
	tests := []struct {
		title   string
		subject string
		ok      bool
	}{
		{"Work on Report", "report", true},
		{"Work on: Report", "report", true},
		{"Prep for exam", "exam", true},
		{"Preparation for quarterly review", "quarterly review", true},
		{"Prepare slides for class", "slides for class", true},
		{"Prepaid phone bill", "", false},
		{"Gym", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			subject, ok := preparationSubject(tt.title)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.subject, subject)
		})
	}
}

func TestEnforceClassification_NonDeadline(t *testing.T) {
	t.Run("keeps tasks that only look like preparation", func(t *testing.T) {
		proposed := []CandidateEvent{
			{Title: "Prepare slides for class", Date: "2026-10-23"},
			{Title: "Work on garden", Date: "2026-10-24"},
			{Title: "Gym", Date: "2026-10-20"},
		}
		got := enforceClassification("prepare slides for class friday, work on garden saturday, gym tomorrow", proposed, mondayNoon)
		assert.Equal(t, proposed, got)
	})

	t.Run("drops a companion of another event", func(t *testing.T) {
		proposed := []CandidateEvent{
			{Title: "Work on Practice", Date: "2026-10-20"},
			{Title: "Practice", Date: "2026-10-21"},
			{Title: "Prep for: meeting", Date: "2026-10-21"},
			{Title: "Meeting", Date: "2026-10-22"},
		}
		got := enforceClassification("practice wednesday, meeting thursday", proposed, mondayNoon)
		assert.Equal(t, []CandidateEvent{proposed[1], proposed[3]}, got)
	})

	t.Run("lone preparation title survives", func(t *testing.T) {
		only := []CandidateEvent{{Title: "Work on stuff"}}
		assert.Equal(t, only, enforceClassification("stuff", only, mondayNoon))
	})
}

func TestEnforceClassification_Deadline(t *testing.T) {
	t.Run("synthesizes missing preparation", func(t *testing.T) {
		got := enforceClassification("report due by next friday", []CandidateEvent{
			{Title: "Report", Date: "2026-10-30", Priority: "low"},
		}, mondayNoon)
		require.Len(t, got, 2)

		assert.Equal(t, "Work on Report", got[0].Title)
		assert.Equal(t, "2026-10-29", got[0].Date)
		assert.Equal(t, "high", got[0].Priority)
		assert.Equal(t, "Report", got[1].Title)
		assert.Equal(t, "2026-10-30", got[1].Date)
		assert.Equal(t, "high", got[1].Priority)
	})

	t.Run("fixes an existing preparation", func(t *testing.T) {
		got := enforceClassification("project due thursday", []CandidateEvent{
			{Title: "Work on project", Date: "2026-10-19", Priority: "medium"},
			{Title: "Project due", Date: "2026-10-22", Priority: "medium"},
		}, mondayNoon)
		require.Len(t, got, 2)
		assert.Equal(t, "2026-10-21", got[0].Date)
		assert.Equal(t, "high", got[0].Priority)
		assert.Equal(t, "high", got[1].Priority)
	})

	t.Run("preparation clamps to today", func(t *testing.T) {
		got := enforceClassification("assignment due today", []CandidateEvent{
			{Title: "Assignment due", Date: "2026-10-19"},
		}, mondayNoon)
		require.Len(t, got, 2)
		assert.Equal(t, "2026-10-19", got[0].Date)
		assert.Equal(t, "2026-10-19", got[1].Date)
	})

	t.Run("other tasks untouched", func(t *testing.T) {
		got := enforceClassification("report due by friday, gym tomorrow", []CandidateEvent{
			{Title: "Report due", Date: "2026-10-23"},
			{Title: "Gym", Date: "2026-10-20", Priority: "medium"},
		}, mondayNoon)
		require.Len(t, got, 3)
		assert.Equal(t, "Work on Report due", got[0].Title)
		assert.Equal(t, "2026-10-22", got[0].Date)
		assert.Equal(t, CandidateEvent{Title: "Gym", Date: "2026-10-20", Priority: "medium"}, got[2])
	})
}

// Package braindump turns free-text task lists into calendar events.
//
// Relative date phrases are resolved locally into a fixed table before the
// LLM sees the text, so the model only ever copies dates, never computes
// them. Whatever the model answers, the result is repaired or replaced so
// callers always receive a non-empty list of events dated today or later.
package braindump

import "time"

const (
	// DateLayout is the wire format of every event date.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24-hour format the oracle is asked to use.
	TimeLayout = "15:04"
	// DisplayTimeLayout is the 12-hour format returned to callers.
	DisplayTimeLayout = "3:04 PM"
)

// Priority tags an event's urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// CandidateEvent is an untrusted event proposed by the oracle.
// Missing JSON fields decode to empty strings.
type CandidateEvent struct {
	Title       string
	Description string
	Date        string
	Time        string
	Priority    string
}

// NormalizedEvent is a validated event ready to be returned or stored.
type NormalizedEvent struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Date        string   `json:"date" yaml:"date"`
	Time        *string  `json:"time" yaml:"time"`
	Priority    Priority `json:"priority" yaml:"priority"`
}

// DisplayTime returns the event time or "unspecified" when there is none.
func (e NormalizedEvent) DisplayTime() string {
	if e.Time == nil {
		return "unspecified"
	}
	return *e.Time
}

// Day parses the event date in loc.
func (e NormalizedEvent) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, e.Date, loc)
}

// Clock parses the event time of day, if any, and returns hour and minute.
func (e NormalizedEvent) Clock() (hour, minute int, ok bool) {
	if e.Time == nil {
		return 0, 0, false
	}
	t, err := time.Parse(DisplayTimeLayout, *e.Time)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// dayOf truncates t to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package braindump

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultTitle    = "Untitled Event"
	defaultPriority = PriorityMedium
)

// acceptedTimeLayouts are tried in order when reading an oracle time.
var acceptedTimeLayouts = []string{TimeLayout, "15:04:05", DisplayTimeLayout, "3:04PM", "3PM", "3 PM"}

// NormalizeEvents validates candidates against now and assigns ids.
//
// Oracle order is preserved. Dates that are unparsable or before today are
// moved to tomorrow rather than dropped.
func NormalizeEvents(candidates []CandidateEvent, now time.Time) []NormalizedEvent {
	return normalizeWithPrefix(candidates, now, "ai")
}

func normalizeWithPrefix(candidates []CandidateEvent, now time.Time, prefix string) []NormalizedEvent {
	batch := now.UnixMilli()
	today := dayOf(now)

	events := make([]NormalizedEvent, 0, len(candidates))
	for i, c := range candidates {
		events = append(events, NormalizedEvent{
			ID:          fmt.Sprintf("%s_%d_%d", prefix, batch, i),
			Title:       orDefault(c.Title, defaultTitle),
			Description: strings.TrimSpace(c.Description),
			Date:        repairDate(c.Date, today),
			Time:        displayTime(c.Time),
			Priority:    normalizePriority(c.Priority),
		})
	}
	return events
}

// repairDate returns raw when it is a valid date on or after today,
// otherwise tomorrow.
func repairDate(raw string, today time.Time) string {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), today.Location())
	if err != nil || d.Before(today) {
		return today.AddDate(0, 0, 1).Format(DateLayout)
	}
	return d.Format(DateLayout)
}

// displayTime converts an oracle time to 12-hour display form.
// Anything unreadable becomes nil.
func displayTime(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return nil
	}
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(raw)); err == nil {
			s := t.Format(DisplayTimeLayout)
			return &s
		}
	}
	return nil
}

func normalizePriority(raw string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p.Valid() {
		return p
	}
	return defaultPriority
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

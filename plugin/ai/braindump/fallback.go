package braindump

import (
	"fmt"
	"strings"
	"time"
)

// Fixed fallback times, in display form.
const (
	fallbackEventTime = "10:00 AM"
	fallbackPrepTime  = "2:00 PM"
	fallbackDueTime   = "5:00 PM"

	titleCap        = 40
	deadlinePrefix  = 25
	reviewPrefixLen = 30
	ellipsis        = "..."
)

// Fallback builds a deterministic event list for text without calling the
// oracle. It always returns at least one event.
//
// An unavailable oracle yields a single high-priority review event for
// today, since the text was never analyzed. Every other reason branches on
// deadline keywords.
func Fallback(text string, now time.Time, reason FailureReason) []NormalizedEvent {
	today := dayOf(now)
	batch := now.UnixMilli()
	text = collapseSpace(text)
	subject := orDefault(text, defaultTitle)

	if reason == ReasonOracleUnavailable {
		return []NormalizedEvent{{
			ID:          fmt.Sprintf("error_fallback_%d", batch),
			Title:       "Review: " + prefix(subject, reviewPrefixLen) + ellipsis,
			Description: "AI processing failed. Original: " + text,
			Date:        today.Format(DateLayout),
			Time:        strPtr(fallbackEventTime),
			Priority:    PriorityHigh,
		}}
	}

	if IsDeadline(text) {
		return []NormalizedEvent{
			{
				ID:          fmt.Sprintf("fallback_prep_%d", batch),
				Title:       "Work on: " + prefix(subject, deadlinePrefix),
				Description: "Preparation for: " + text,
				Date:        today.AddDate(0, 0, 1).Format(DateLayout),
				Time:        strPtr(fallbackPrepTime),
				Priority:    PriorityHigh,
			},
			{
				ID:          fmt.Sprintf("fallback_due_%d", batch),
				Title:       "Due: " + prefix(subject, deadlinePrefix),
				Description: "Deadline: " + text,
				Date:        today.AddDate(0, 0, 2).Format(DateLayout),
				Time:        strPtr(fallbackDueTime),
				Priority:    PriorityHigh,
			},
		}
	}

	return []NormalizedEvent{{
		ID:          fmt.Sprintf("fallback_%d", batch),
		Title:       capTitle(subject),
		Description: "Event: " + text,
		Date:        today.AddDate(0, 0, 1).Format(DateLayout),
		Time:        strPtr(fallbackEventTime),
		Priority:    PriorityMedium,
	}}
}

// capTitle keeps titles within titleCap runes, marking truncation.
func capTitle(s string) string {
	if len([]rune(s)) <= titleCap {
		return s
	}
	return prefix(s, titleCap-len(ellipsis)) + ellipsis
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func strPtr(s string) *string {
	return &s
}

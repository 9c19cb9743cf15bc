package braindump

import (
	"strings"
	"time"
	"unicode"
)

// DeadlineKeywords mark a task that needs a preparation event.
var DeadlineKeywords = []string{
	"due by",
	"deadline",
	"submit by",
	"finish by",
	"assignment due",
	"project due",
	"report due",
}

// NoPrepActivities never get a preparation event, whatever the wording.
var NoPrepActivities = []string{
	"practice", "rehearsal", "training", "workout", "gym",
	"church", "service", "worship", "meeting",
	"appointments", "calls", "social events",
	"shopping", "errands", "personal tasks",
}

// preparationPrefixes start the titles of preparation events, longest first.
var preparationPrefixes = []string{"preparation for", "prepare for", "prep for", "work on", "prepare", "prep"}

// prepTime is the oracle-format time given to synthesized preparation events.
const prepTime = "14:00"

// IsDeadline reports whether text contains any deadline keyword.
func IsDeadline(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range DeadlineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// preparationSubject returns what a preparation title is about, with ok
// false when the title does not start with a preparation prefix.
// "Work on: Report" yields "report".
func preparationSubject(title string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, p := range preparationPrefixes {
		rest, found := strings.CutPrefix(lower, p)
		if !found {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != ':' {
			continue
		}
		return strings.TrimSpace(strings.TrimLeft(rest, ": ")), true
	}
	return "", false
}

// enforceClassification applies the preparation rules to oracle candidates
// regardless of what the oracle proposed.
//
// Without a deadline keyword, only companion events titled exactly
// "<prefix> <title of another event in the batch>" are removed, so no task
// the user wrote is lost. With one, every deadline event is high priority
// and has a high-priority preparation event the day before, clamped to
// today; a missing one is synthesized.
func enforceClassification(text string, candidates []CandidateEvent, now time.Time) []CandidateEvent {
	if IsDeadline(text) {
		return enforceDeadlinePairs(candidates, dayOf(now))
	}
	return dropCompanions(candidates)
}

func dropCompanions(candidates []CandidateEvent) []CandidateEvent {
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = strings.ToLower(strings.TrimSpace(c.Title))
	}

	dropped := make([]bool, len(candidates))
	for i, c := range candidates {
		subject, ok := preparationSubject(c.Title)
		if !ok || subject == "" {
			continue
		}
		for j, t := range titles {
			if j != i && !dropped[j] && t == subject {
				dropped[i] = true
				break
			}
		}
	}

	kept := make([]CandidateEvent, 0, len(candidates))
	for i, c := range candidates {
		if !dropped[i] {
			kept = append(kept, c)
		}
	}
	return kept
}

func enforceDeadlinePairs(candidates []CandidateEvent, today time.Time) []CandidateEvent {
	events := make([]CandidateEvent, len(candidates))
	copy(events, candidates)

	var preps, primaries, deadlines []int
	for i, c := range events {
		if _, ok := preparationSubject(c.Title); ok {
			preps = append(preps, i)
			continue
		}
		primaries = append(primaries, i)
		if mentionsDeadline(c) {
			deadlines = append(deadlines, i)
		}
	}
	// A lone task in deadline text is the deadline, however it is titled.
	if len(deadlines) == 0 && len(primaries) == 1 {
		deadlines = primaries
	}

	used := make(map[int]bool, len(preps))
	synthesized := make(map[int]CandidateEvent)
	for _, d := range deadlines {
		due := candidateDay(events[d].Date, today)
		want := due.AddDate(0, 0, -1)
		if want.Before(today) {
			want = today
		}
		events[d].Date = due.Format(DateLayout)
		events[d].Priority = string(PriorityHigh)

		p, ok := pickPreparation(events, preps, used, d, want, today)
		if !ok {
			synthesized[d] = preparationFor(events[d], want)
			continue
		}
		used[p] = true
		events[p].Date = want.Format(DateLayout)
		events[p].Priority = string(PriorityHigh)
	}

	out := make([]CandidateEvent, 0, len(events)+len(synthesized))
	for i, c := range events {
		if prep, ok := synthesized[i]; ok {
			out = append(out, prep)
		}
		out = append(out, c)
	}
	return out
}

// pickPreparation finds an unused preparation candidate for deadline d:
// one that names it, then one already on the wanted day. Other preparation
// titled tasks are left as the user wrote them.
func pickPreparation(events []CandidateEvent, preps []int, used map[int]bool, d int, want, today time.Time) (int, bool) {
	title := strings.ToLower(strings.TrimSpace(events[d].Title))
	for _, p := range preps {
		subject, _ := preparationSubject(events[p].Title)
		if !used[p] && subject != "" && title != "" && (strings.Contains(title, subject) || strings.Contains(subject, title)) {
			return p, true
		}
	}
	for _, p := range preps {
		if !used[p] && candidateDay(events[p].Date, today).Equal(want) {
			return p, true
		}
	}
	return 0, false
}

func preparationFor(deadline CandidateEvent, day time.Time) CandidateEvent {
	title := strings.TrimSpace(deadline.Title)
	if title == "" {
		title = defaultTitle
	}
	return CandidateEvent{
		Title:       "Work on " + title,
		Description: "Preparation for " + title,
		Date:        day.Format(DateLayout),
		Time:        prepTime,
		Priority:    string(PriorityHigh),
	}
}

func mentionsDeadline(c CandidateEvent) bool {
	text := c.Title + " " + c.Description
	if IsDeadline(text) {
		return true
	}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if w == "due" || w == "deadline" {
			return true
		}
	}
	return false
}

// candidateDay is the day an oracle date resolves to after repair.
func candidateDay(raw string, today time.Time) time.Time {
	d, _ := time.ParseInLocation(DateLayout, repairDate(raw, today), today.Location())
	return d
}

package braindump

import (
	"fmt"
	"strings"
	"time"
)

// Weekdays lists weekday names in table order, Monday=0 through Sunday=6.
var Weekdays = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

const (
	PhraseToday    = "today"
	PhraseTomorrow = "tomorrow"
)

// ResolvedDate is an absolute date tagged with the phrase it resolves.
type ResolvedDate struct {
	Phrase string
	Date   time.Time
}

// String returns the date in DateLayout.
func (d ResolvedDate) String() string {
	return d.Date.Format(DateLayout)
}

// DateTable is the complete set of phrase dates for one reference instant.
type DateTable struct {
	now     time.Time
	order   []string
	entries map[string]ResolvedDate
}

// WeekdayIndex returns t's weekday with Monday=0 through Sunday=6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ThisPhrase returns the table key for a plain weekday name.
func ThisPhrase(weekday int) string {
	return "this_" + Weekdays[weekday]
}

// NextPhrase returns the table key for "next <weekday>".
func NextPhrase(weekday int) string {
	return "next_" + Weekdays[weekday]
}

// ResolveDates computes every phrase date from now. now is read exactly once.
//
// A plain weekday never resolves to today: when today is that weekday it
// rolls forward a full week. "next <weekday>" is always seven days after
// the plain weekday.
func ResolveDates(now time.Time) DateTable {
	today := dayOf(now)
	table := DateTable{
		now:     now,
		order:   make([]string, 0, 16),
		entries: make(map[string]ResolvedDate, 16),
	}

	table.add(PhraseToday, today)
	table.add(PhraseTomorrow, today.AddDate(0, 0, 1))

	current := WeekdayIndex(now)
	for i := range Weekdays {
		table.add(ThisPhrase(i), today.AddDate(0, 0, daysUntil(current, i)))
	}
	for i := range Weekdays {
		table.add(NextPhrase(i), today.AddDate(0, 0, daysUntil(current, i)+7))
	}

	return table
}

// daysUntil is the distance to the next occurrence of target, in 1..7.
func daysUntil(current, target int) int {
	d := ((target-current)%7 + 7) % 7
	if d == 0 {
		d = 7
	}
	return d
}

func (t *DateTable) add(phrase string, date time.Time) {
	t.order = append(t.order, phrase)
	t.entries[phrase] = ResolvedDate{Phrase: phrase, Date: date}
}

// Now returns the reference instant the table was computed from.
func (t DateTable) Now() time.Time {
	return t.now
}

// Get looks up a phrase key such as "next_friday".
func (t DateTable) Get(phrase string) (ResolvedDate, bool) {
	d, ok := t.entries[phrase]
	return d, ok
}

// Lookup resolves a human phrase such as "next Friday" or "wednesday".
func (t DateTable) Lookup(phrase string) (ResolvedDate, bool) {
	words := strings.Fields(strings.ToLower(phrase))
	switch len(words) {
	case 1:
		if d, ok := t.entries[words[0]]; ok {
			return d, true
		}
		return t.Get("this_" + words[0])
	case 2:
		if words[0] == "next" || words[0] == "this" {
			return t.Get(words[0] + "_" + words[1])
		}
	}
	return ResolvedDate{}, false
}

// Entries returns every resolved date in table order.
func (t DateTable) Entries() []ResolvedDate {
	out := make([]ResolvedDate, 0, len(t.order))
	for _, phrase := range t.order {
		out = append(out, t.entries[phrase])
	}
	return out
}

// Map returns the table as phrase key to ISO date.
func (t DateTable) Map() map[string]string {
	out := make(map[string]string, len(t.entries))
	for phrase, d := range t.entries {
		out[phrase] = d.String()
	}
	return out
}

// must returns the date for a key that ResolveDates always fills.
func (t DateTable) must(phrase string) ResolvedDate {
	d, ok := t.entries[phrase]
	if !ok {
		panic(fmt.Sprintf("braindump: phrase %q missing from date table", phrase))
	}
	return d
}

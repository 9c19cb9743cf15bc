package braindump

import (
	"fmt"
	"strings"

	"github.com/christianacho/espresso/plugin/ai"
)

const systemPrompt = `You are a calendar assistant that uses PRE-CALCULATED dates provided in the prompt. ` +
	`Do NOT calculate dates yourself - use ONLY the exact dates given in the prompt. ` +
	`Always return valid JSON arrays. Process ALL tasks mentioned in the input.`

// BuildRequest assembles the oracle request for text using the resolved table.
func BuildRequest(text string, table DateTable, temperature float32, maxTokens int) *ai.ChatRequest {
	return &ai.ChatRequest{
		Messages: []ai.Message{
			ai.SystemPrompt(systemPrompt),
			ai.UserMessage(buildUserPrompt(text, table)),
		},
		Temperature: &temperature,
		MaxTokens:   maxTokens,
	}
}

func buildUserPrompt(text string, table DateTable) string {
	now := table.Now()
	current := WeekdayIndex(now)

	var b strings.Builder
	b.WriteString("You are a smart calendar assistant. Parse this text and create appropriate calendar events.\n\n")
	fmt.Fprintf(&b, "Current date: %s (%s)\n", now.Format(DateLayout), now.Format("Monday"))
	fmt.Fprintf(&b, "Current time: %s\n\n", now.Format(TimeLayout))
	fmt.Fprintf(&b, "Text to parse: %q\n\n", text)

	b.WriteString("STEP 1: Break down the input into individual tasks/events\n")
	b.WriteString("STEP 2: For each task, determine if it needs preparation or not\n")
	b.WriteString("STEP 3: Use the PRE-CALCULATED dates below (DO NOT calculate dates yourself)\n\n")

	b.WriteString("HOW THE DATES WERE CALCULATED:\n")
	fmt.Fprintf(&b, "- Weekdays are numbered Monday=0 through Sunday=6. Today is index %d.\n", current)
	b.WriteString("- A weekday without \"next\" is the first occurrence AFTER today: days_until = (weekday - today) mod 7, and 0 becomes 7.\n")
	b.WriteString("- \"next <weekday>\" is always 7 days after the weekday without \"next\".\n\n")

	b.WriteString("USE THESE EXACT DATES - DO NOT CALCULATE:\n")
	fmt.Fprintf(&b, "- \"today\" = %s\n", table.must(PhraseToday))
	fmt.Fprintf(&b, "- \"tomorrow\" = %s\n", table.must(PhraseTomorrow))
	for i, name := range Weekdays {
		fmt.Fprintf(&b, "- \"next %s\" = %s\n", name, table.must(NextPhrase(i)))
	}
	for i, name := range Weekdays {
		fmt.Fprintf(&b, "- \"%s\" (without next) = %s\n", name, table.must(ThisPhrase(i)))
	}

	b.WriteString("\nCRITICAL RULES:\n\n")
	b.WriteString("1. Process ALL parts of the input. Every distinct task becomes its own event(s); never drop or merge tasks.\n\n")
	fmt.Fprintf(&b, "2. ONLY create preparation events for WORK/ACADEMIC DEADLINES.\n   - Words that need preparation: %s\n", quoteList(DeadlineKeywords))
	b.WriteString("   - Create TWO events: a preparation event the day BEFORE the deadline date, and the deadline event ON the deadline date\n")
	b.WriteString("   - Both get \"high\" priority\n\n")
	fmt.Fprintf(&b, "3. NEVER create preparation events for: %s.\n   - These get ONE event only on the specified day\n\n", strings.Join(NoPrepActivities, ", "))
	b.WriteString("4. When the input gives a count (\"3 projects due friday\"), create that many distinct tasks, each classified by rule 2, with ordinal titles (\"Project 1\", \"Project 2\", ...).\n\n")
	b.WriteString("5. Return events in chronological order.\n\n")

	wed := ThisPhrase(2)
	nextWed := NextPhrase(2)
	nextFri := table.must(NextPhrase(4))
	b.WriteString("EXAMPLES:\n\n")
	b.WriteString("Input: \"practice next wednesday\"\nOutput:\n")
	fmt.Fprintf(&b, `[{"title": "Practice", "description": "Regular practice session", "date": "%s", "time": "18:00", "priority": "medium"}]`+"\n\n", table.must(nextWed))
	b.WriteString("Input: \"practice wednesday\" (without \"next\")\nOutput:\n")
	fmt.Fprintf(&b, `[{"title": "Practice", "description": "Regular practice session", "date": "%s", "time": "18:00", "priority": "medium"}]`+"\n\n", table.must(wed))
	b.WriteString("Input: \"assignment due next friday\"\nOutput:\n")
	fmt.Fprintf(&b, `[{"title": "Work on Assignment", "description": "Preparation for assignment", "date": "%s", "time": "14:00", "priority": "high"}, `, nextFri.Date.AddDate(0, 0, -1).Format(DateLayout))
	fmt.Fprintf(&b, `{"title": "Assignment Due", "description": "Assignment deadline", "date": "%s", "time": "17:00", "priority": "high"}]`+"\n\n", nextFri)

	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("Return ONLY a JSON array of objects with exactly these keys: title, description, date, time, priority.\n")
	b.WriteString("- date: YYYY-MM-DD taken from the list above\n")
	b.WriteString("- time: 24-hour HH:MM, or null when no time applies\n")
	b.WriteString("- priority: \"high\", \"medium\" or \"low\"\n")
	b.WriteString("No prose, no explanations, nothing outside the array.\n")

	return b.String()
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

package braindump

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//espresso//brain dump//EN"

// ExportICS renders events as an iCalendar document.
// Events without a time become all-day events; timed events last one hour.
func ExportICS(events []NormalizedEvent, loc *time.Location, stamp time.Time) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, ev := range events {
		day, err := ev.Day(loc)
		if err != nil {
			continue
		}

		vevent := cal.AddEvent(ev.ID + "@espresso")
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		vevent.SetPriority(icsPriority(ev.Priority))

		if hour, minute, ok := ev.Clock(); ok {
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
			vevent.SetStartAt(start)
			vevent.SetEndAt(start.Add(time.Hour))
		} else {
			vevent.SetAllDayStartAt(day)
			vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}

	return cal.Serialize()
}

// icsPriority maps to RFC 5545 PRIORITY values.
func icsPriority(p Priority) int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 9
	default:
		return 5
	}
}

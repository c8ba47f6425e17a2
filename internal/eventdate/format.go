// Package eventdate turns raw event fields into the display string for an
// event's date: a single day, a day with a time or time span, a multi-day
// span, or the first-to-last span of a recurring event.
package eventdate

import (
	"eventdate/internal/field"
	appLog "eventdate/internal/log"
)

const (
	// RecurringMarker is the only is_recurring_event value that selects
	// recurring display.
	RecurringMarker = "Yes"

	// InvalidDate is returned when a required date does not parse.
	InvalidDate = "Invalid date"
)

// Output layouts.
const (
	dateLayout     = "January 2, 2006"
	timeLayout     = "3:04 pm"
	clockLayout    = "3:04"
	monthDayLayout = "January 2"
	dayYearLayout  = "2, 2006"
)

// SingleEvent is one occurrence with an optional end.
type SingleEvent struct {
	Start Moment
	End   *Moment
}

// Format renders the event. All-day events never show a time of day.
func (e SingleEvent) Format(allDay bool) string {
	start := e.Start.Time
	if e.End == nil {
		if allDay {
			return start.Format(dateLayout)
		}
		return start.Format(dateLayout) + " at " + start.Format(timeLayout)
	}

	end := e.End.Time
	if allDay {
		if e.Start.SameDay(*e.End) {
			return start.Format(dateLayout)
		}
		return start.Format(dateLayout) + " - " + end.Format(dateLayout)
	}

	switch {
	case e.Start.Equal(*e.End):
		return start.Format(dateLayout) + " at " + start.Format(timeLayout)
	case e.Start.SameDay(*e.End):
		// June 1, 2024 from 2:00-4:00 pm
		return start.Format(dateLayout) + " from " + start.Format(clockLayout) + "-" + end.Format(timeLayout)
	default:
		return start.Format(dateLayout+" "+timeLayout) + " to " + end.Format(dateLayout+" "+timeLayout)
	}
}

// RecurringRange bounds a recurring event by its first and last occurrence.
type RecurringRange struct {
	First Moment
	Last  Moment
}

// Format renders the range as dates only.
func (r RecurringRange) Format() string {
	return FormatDateRange(r.First, r.Last)
}

// FormatDateRange renders a span without times, collapsing the parts both
// ends share:
//
//	March 3, 2024
//	March 3-7, 2024
//	March 3 - April 7, 2024
//	December 30, 2024 - January 2, 2025
func FormatDateRange(first, last Moment) string {
	a, b := first.Time, last.Time
	switch {
	case first.SameDay(last):
		return a.Format(dateLayout)
	case first.sameMonth(last):
		return a.Format(monthDayLayout) + "-" + b.Format(dayYearLayout)
	case first.sameYear(last):
		return a.Format(monthDayLayout) + " - " + b.Format(dateLayout)
	default:
		return a.Format(dateLayout) + " - " + b.Format(dateLayout)
	}
}

// Record is the raw field data of one event as read from a field store.
type Record struct {
	IsRecurring field.Value
	AllDay      field.Value
	Recurring   field.Value
	Start       field.Value
	End         field.Value
}

// Load reads the fields of eventID from store.
func Load(store field.Store, eventID string) Record {
	return Record{
		IsRecurring: store.Field(field.IsRecurringEvent, eventID),
		AllDay:      store.Field(field.AllDayEvent, eventID),
		Recurring:   store.Field(field.RecurringEvent, eventID),
		Start:       store.Field(field.EventStartDate, eventID),
		End:         store.Field(field.EventEndDate, eventID),
	}
}

// FormatEvent is the entry point used by rendering sinks: it loads the
// event's fields and formats them.
func FormatEvent(store field.Store, eventID string) string {
	out := FormatRecord(Load(store, eventID))
	if out == InvalidDate {
		appLog.Debug("event date did not parse", "event_id", eventID)
	}
	return out
}

// FormatRecord selects the display for rec. It always returns a string:
// "" when there is nothing to show and InvalidDate when a required date
// does not parse.
func FormatRecord(rec Record) string {
	allDay := NormalizeAllDay(rec.AllDay)

	if IsRecurring(rec.IsRecurring) {
		return formatRecurring(rec.Recurring)
	}
	return formatSingle(rec.Start, rec.End, allDay)
}

// formatRecurring ignores the all-day flag: recurring events always show
// a date span.
func formatRecurring(raw field.Value) string {
	firstText, okFirst := raw.Get(field.FirstDate)
	lastText, okLast := raw.Get(field.LastDate)
	if !okFirst || !okLast {
		return ""
	}

	first, st := ParseMoment(firstText)
	if st != Parsed {
		return InvalidDate
	}
	last, st := ParseMoment(lastText)
	if st != Parsed {
		return InvalidDate
	}
	return RecurringRange{First: first, Last: last}.Format()
}

func formatSingle(rawStart, rawEnd field.Value, allDay bool) string {
	startText := text(rawStart)
	// A start of "0" counts as no start.
	if startText == "0" {
		return ""
	}
	start, st := ParseMoment(startText)
	switch st {
	case Absent:
		return ""
	case Unparseable:
		return InvalidDate
	}

	ev := SingleEvent{Start: start}
	// An end that is missing or does not parse is treated as no end.
	if end, st := ParseMoment(text(rawEnd)); st == Parsed {
		ev.End = &end
	}
	return ev.Format(allDay)
}

// text returns the string form of a date field; other shapes count as
// not provided.
func text(v field.Value) string {
	s, _ := v.AsString()
	return s
}

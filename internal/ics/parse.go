// Package ics turns calendar feeds into per-event raw fields, so events from
// an iCalendar subscription are formatted the same way as hand-entered ones.
package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventdate/internal/eventdate"
	"eventdate/internal/field"
	appLog "eventdate/internal/log"
)

// FeedEvent is a VEVENT reduced to what the date fields need.
type FeedEvent struct {
	Source Source
	UID    string

	Summary string

	Start  time.Time
	End    time.Time // zero when the VEVENT has no DTEND
	AllDay bool

	RawRRule string
	ExDates  []time.Time
}

// ID is the store id of the event: "<source id>/<UID>".
func (ev FeedEvent) ID() string {
	return ev.Source.ID + "/" + ev.UID
}

// ParseFeed parses an iCalendar payload. VEVENTs that fail to parse are
// logged and skipped, as are RECURRENCE-ID overrides: the master event
// already covers the recurring span.
func ParseFeed(src Source, body []byte) ([]FeedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]FeedEvent, 0)
	for _, ve := range cal.Events() {
		if ve.GetProperty("RECURRENCE-ID") != nil {
			appLog.Debug("skipping recurrence override", "id", src.ID)
			continue
		}
		ev, err := parseVEvent(src, ve)
		if err != nil {
			appLog.Error("vevent parse failed", err, "id", src.ID)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("feed parsed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (FeedEvent, error) {
	out := FeedEvent{Source: src}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		if start, err = parseICSTime(dtStart.Value); err != nil {
			return out, err
		}
	}
	out.Start = start
	out.AllDay = isDateValue(dtStart)

	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			end, err = parseICSTime(dtEnd.Value)
		}
		if err == nil {
			out.End = end
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTimeIn(part, start.Location()); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// isDateValue reports an all-day DTSTART: VALUE=DATE or a value with no
// time part.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses a basic DATE or DATE-TIME value. Floating values are
// read as UTC wall-clock times; no zone conversion happens downstream.
func parseICSTime(v string) (time.Time, error) {
	return parseICSTimeIn(v, time.UTC)
}

// parseICSTimeIn is parseICSTime with floating values placed in loc, so
// EXDATEs line up with the wall clock of their DTSTART.
func parseICSTimeIn(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

// Fields renders ev as raw fields in the accepted text formats. An all-day
// DTEND is exclusive and is moved back one day; horizon bounds open-ended
// recurrence rules.
func (ev FeedEvent) Fields(horizon time.Time) field.Fields {
	precision := eventdate.DateTime
	if ev.AllDay {
		precision = eventdate.DateOnly
	}

	out := field.Fields{
		field.AllDayEvent:      field.Bool(ev.AllDay),
		field.EventStartDate:   field.String(eventdate.Text(ev.Start, precision)),
		field.IsRecurringEvent: field.String("No"),
	}

	if end := ev.displayEnd(); !end.IsZero() {
		out[field.EventEndDate] = field.String(eventdate.Text(end, precision))
	}

	if ev.RawRRule != "" {
		out[field.IsRecurringEvent] = field.String(eventdate.RecurringMarker)
		first, last, err := Bounds(ev, horizon)
		if err != nil {
			appLog.Error("recurrence bounds failed", err, "event_id", ev.ID(), "rrule", ev.RawRRule)
			return out
		}
		out[field.RecurringEvent] = field.Record(map[string]string{
			field.FirstDate: eventdate.Text(first, precision),
			field.LastDate:  eventdate.Text(last, precision),
		})
	}
	return out
}

func (ev FeedEvent) displayEnd() time.Time {
	if ev.End.IsZero() {
		return time.Time{}
	}
	end := ev.End
	if ev.AllDay {
		end = end.AddDate(0, 0, -1)
	}
	if end.Before(ev.Start) {
		return time.Time{}
	}
	return end
}

// FieldsByID renders events keyed by store id.
func FieldsByID(events []FeedEvent, horizon time.Time) map[string]field.Fields {
	out := make(map[string]field.Fields, len(events))
	for _, ev := range events {
		out[ev.ID()] = ev.Fields(horizon)
	}
	return out
}

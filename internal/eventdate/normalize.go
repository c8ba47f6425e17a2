package eventdate

import (
	"strings"

	"eventdate/internal/field"
)

// Checkbox fields return the selected labels; any of these marks the event
// as all-day.
var allDayLabels = map[string]bool{
	"yes":     true,
	"true":    true,
	"all day": true,
}

// A single-string flag is all-day only for one of these.
var allDayStrings = map[string]bool{
	"yes":  true,
	"true": true,
	"1":    true,
}

// NormalizeAllDay resolves the all_day_event field to a bool. It is total:
// null, records and any other shape are false.
func NormalizeAllDay(raw field.Value) bool {
	switch raw.Kind() {
	case field.KindBool:
		b, _ := raw.AsBool()
		return b
	case field.KindList:
		items, _ := raw.AsList()
		for _, item := range items {
			if allDayLabels[strings.ToLower(item)] {
				return true
			}
		}
		return false
	case field.KindString:
		s, _ := raw.AsString()
		return allDayStrings[strings.ToLower(strings.TrimSpace(s))]
	default:
		return false
	}
}

// IsRecurring reports whether the is_recurring_event field carries the
// exact marker "Yes". Other spellings, booleans and lists do not count.
func IsRecurring(raw field.Value) bool {
	s, ok := raw.AsString()
	return ok && s == RecurringMarker
}

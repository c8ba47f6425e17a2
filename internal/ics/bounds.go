package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "eventdate/internal/log"
)

// maxOccurrences caps how many occurrences Bounds walks for one rule.
const maxOccurrences = 5000

// Bounds returns the first and last occurrence of ev's recurrence rule,
// with EXDATEs removed. Rules with COUNT or UNTIL are walked to their end;
// open-ended rules stop at horizon.
func Bounds(ev FeedEvent, horizon time.Time) (first, last time.Time, err error) {
	if ev.RawRRule == "" {
		return time.Time{}, time.Time{}, errors.New("event has no RRULE")
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex)
	}

	bounded := r.OrigOptions.Count > 0 || !r.OrigOptions.Until.IsZero()

	next := set.Iterator()
	n := 0
	for ; n < maxOccurrences; n++ {
		occ, ok := next()
		if !ok {
			break
		}
		if !bounded && occ.After(horizon) {
			break
		}
		if first.IsZero() {
			first = occ
		}
		last = occ
	}
	if n == maxOccurrences {
		appLog.Error("recurrence truncated", errors.New("max occurrences reached"),
			"event_id", ev.ID(), "cap", maxOccurrences)
	}

	if first.IsZero() {
		return time.Time{}, time.Time{}, errors.New("rule yields no occurrences")
	}
	return first, last, nil
}

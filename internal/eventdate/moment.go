package eventdate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Precision records which accepted format a moment was parsed from.
// Display never depends on it; the all-day flag decides whether a time
// of day is shown.
type Precision int

const (
	DateOnly Precision = iota
	DateTime
)

func (p Precision) String() string {
	if p == DateTime {
		return "date-time"
	}
	return "date"
}

// Status is the outcome of ParseMoment.
type Status int

const (
	// Absent means no text was provided.
	Absent Status = iota
	Parsed
	Unparseable
)

func (s Status) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Unparseable:
		return "unparseable"
	default:
		return "absent"
	}
}

// Moment is a parsed event date, with a time of day when the source text
// had one. Date-only moments sit at 00:00.
type Moment struct {
	Time      time.Time
	Precision Precision
}

// SameDay reports whether both moments fall on the same calendar day.
func (m Moment) SameDay(o Moment) bool {
	ay, am, ad := m.Time.Date()
	by, bm, bd := o.Time.Date()
	return ay == by && am == bm && ad == bd
}

func (m Moment) sameMonth(o Moment) bool {
	return m.Time.Year() == o.Time.Year() && m.Time.Month() == o.Time.Month()
}

func (m Moment) sameYear(o Moment) bool {
	return m.Time.Year() == o.Time.Year()
}

// Equal reports whether both moments are the same date and time.
func (m Moment) Equal(o Moment) bool {
	return m.Time.Equal(o.Time)
}

// blank matches the separators of the accepted formats: any run of spaces,
// tabs or no-break spaces, including none.
const blank = `[ \t\x{a0}\x{202f}]*`

// momentPattern accepts "Month Day, Year" with an optional
// "Hour:Minute am/pm". The year must be set off from the time by at least
// one blank so the digits are not split between them.
var momentPattern = regexp.MustCompile(`^([a-z]+)` + blank + `([0-9]{1,2}),` + blank + `([0-9]{4})` +
	`(?:[ \t\x{a0}\x{202f}]` + blank + `([0-9]{1,2}):([0-9]{2})` + blank + `(am|pm))?$`)

// months maps full and three-letter month names.
var months = func() map[string]time.Month {
	m := make(map[string]time.Month, 24)
	for mo := time.January; mo <= time.December; mo++ {
		name := strings.ToLower(mo.String())
		m[name] = mo
		m[name[:3]] = mo
	}
	return m
}()

// Layouts used to render a moment back into accepted text.
const (
	dateTimeTextLayout = "January 2, 2006 3:04 pm"
	dateTextLayout     = "January 2, 2006"
)

// ParseMoment parses text as "Month Day, Year" or "Month Day, Year
// Hour:Minute am/pm". Empty text is Absent; text matching neither is
// Unparseable. It never returns an error.
//
// Separators may be any amount of blank space, including none. A day past
// the end of the month rolls into the next one ("February 30, 2024" is
// March 1, 2024). Hours run 1-12 and minutes 00-59.
func ParseMoment(text string) (Moment, Status) {
	if text == "" {
		return Moment{}, Absent
	}

	m := momentPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return Moment{}, Unparseable
	}
	month, ok := months[m[1]]
	if !ok {
		return Moment{}, Unparseable
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if m[4] == "" {
		return Moment{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Precision: DateOnly}, Parsed
	}

	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	if hour < 1 || hour > 12 || minute > 59 {
		return Moment{}, Unparseable
	}
	hour %= 12
	if m[6] == "pm" {
		hour += 12
	}
	return Moment{Time: time.Date(year, month, day, hour, minute, 0, 0, time.UTC), Precision: DateTime}, Parsed
}

// Text renders t in the accepted input format for the given precision, so
// that ParseMoment(Text(t, p)) yields t truncated to the minute.
func Text(t time.Time, p Precision) string {
	if p == DateTime {
		return t.Format(dateTimeTextLayout)
	}
	return t.Format(dateTextLayout)
}

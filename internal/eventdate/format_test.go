package eventdate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdate/internal/eventdate"
	"eventdate/internal/field"
)

func single(start, end string, allDay field.Value) field.MapStore {
	m := field.MapStore{field.AllDayEvent: allDay}
	if start != "" {
		m[field.EventStartDate] = field.String(start)
	}
	if end != "" {
		m[field.EventEndDate] = field.String(end)
	}
	return m
}

func recurring(first, last string) field.MapStore {
	return field.MapStore{
		field.IsRecurringEvent: field.String("Yes"),
		field.RecurringEvent: field.Record(map[string]string{
			field.FirstDate: first,
			field.LastDate:  last,
		}),
	}
}

func TestFormatEventSingle(t *testing.T) {
	tests := []struct {
		name  string
		store field.MapStore
		want  string
	}{
		{
			name:  "timed same day span",
			store: single("June 1, 2024 2:00 pm", "June 1, 2024 4:00 pm", field.Bool(false)),
			want:  "June 1, 2024 from 2:00-4:00 pm",
		},
		{
			name:  "timed span across noon",
			store: single("June 1, 2024 11:30 am", "June 1, 2024 1:00 pm", field.Null()),
			want:  "June 1, 2024 from 11:30-1:00 pm",
		},
		{
			name:  "all-day multi day",
			store: single("June 1, 2024", "June 3, 2024", field.Bool(true)),
			want:  "June 1, 2024 - June 3, 2024",
		},
		{
			name:  "all-day same day ignores times",
			store: single("June 1, 2024 9:00 am", "June 1, 2024 5:00 pm", field.List("Yes")),
			want:  "June 1, 2024",
		},
		{
			name:  "all-day without end",
			store: single("June 1, 2024 2:00 pm", "", field.String("yes")),
			want:  "June 1, 2024",
		},
		{
			name:  "timed without end",
			store: single("June 1, 2024 2:00 pm", "", field.Bool(false)),
			want:  "June 1, 2024 at 2:00 pm",
		},
		{
			name:  "timed date-only start without end",
			store: single("June 1, 2024", "", field.Null()),
			want:  "June 1, 2024 at 12:00 am",
		},
		{
			name:  "timed equal start and end",
			store: single("June 1, 2024 2:00 pm", "June 1, 2024 2:00 pm", field.Bool(false)),
			want:  "June 1, 2024 at 2:00 pm",
		},
		{
			name:  "timed multi day",
			store: single("June 1, 2024 2:00 pm", "June 2, 2024 10:15 am", field.Bool(false)),
			want:  "June 1, 2024 2:00 pm to June 2, 2024 10:15 am",
		},
		{
			name:  "unparseable end is no end",
			store: single("June 1, 2024 2:00 pm", "sometime", field.Bool(false)),
			want:  "June 1, 2024 at 2:00 pm",
		},
		{
			name:  "unparseable start",
			store: single("not a date", "", field.Null()),
			want:  "Invalid date",
		},
		{
			name:  "missing start",
			store: single("", "June 3, 2024", field.Bool(true)),
			want:  "",
		},
		{
			name:  "zero start counts as missing",
			store: single("0", "June 3, 2024", field.Bool(true)),
			want:  "",
		},
		{
			name:  "overflowing day rolls into next month",
			store: single("February 30, 2024", "", field.Bool(true)),
			want:  "March 1, 2024",
		},
		{
			name:  "missing blanks",
			store: single("June 1,2024", "", field.Bool(true)),
			want:  "June 1, 2024",
		},
		{
			name:  "meridiem without blank",
			store: single("June 1, 2024 2:00pm", "", field.Bool(false)),
			want:  "June 1, 2024 at 2:00 pm",
		},
		{
			name:  "non-string start counts as missing",
			store: field.MapStore{field.EventStartDate: field.Bool(false)},
			want:  "",
		},
		{
			name: "recurring marker in other case is single",
			store: field.MapStore{
				field.IsRecurringEvent: field.String("yes"),
				field.EventStartDate:   field.String("June 1, 2024"),
				field.AllDayEvent:      field.Bool(true),
			},
			want: "June 1, 2024",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventdate.FormatEvent(tt.store, "evt"))
		})
	}
}

func TestFormatEventRecurring(t *testing.T) {
	tests := []struct {
		name  string
		store field.MapStore
		want  string
	}{
		{"same month", recurring("March 3, 2024", "March 7, 2024"), "March 3-7, 2024"},
		{"same day", recurring("March 3, 2024", "March 3, 2024 6:00 pm"), "March 3, 2024"},
		{"same year", recurring("March 3, 2024", "April 7, 2024"), "March 3 - April 7, 2024"},
		{"different years", recurring("December 30, 2024", "January 2, 2025"), "December 30, 2024 - January 2, 2025"},
		{"times are dropped", recurring("March 3, 2024 9:00 am", "March 7, 2024 5:00 pm"), "March 3-7, 2024"},
		{"bad first", recurring("soon", "March 7, 2024"), "Invalid date"},
		{"bad last", recurring("March 3, 2024", "later"), "Invalid date"},
		{"empty bound is invalid", recurring("", "March 7, 2024"), "Invalid date"},
		{
			name: "missing last",
			store: field.MapStore{
				field.IsRecurringEvent: field.String("Yes"),
				field.RecurringEvent:   field.Record(map[string]string{field.FirstDate: "March 3, 2024"}),
			},
			want: "",
		},
		{
			name: "missing range ignores single fields",
			store: field.MapStore{
				field.IsRecurringEvent: field.String("Yes"),
				field.EventStartDate:   field.String("June 1, 2024"),
			},
			want: "",
		},
		{
			name: "range that is not a record",
			store: field.MapStore{
				field.IsRecurringEvent: field.String("Yes"),
				field.RecurringEvent:   field.String("March 3, 2024"),
			},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventdate.FormatEvent(tt.store, "evt"))
		})
	}
}

func TestRecurringIgnoresAllDay(t *testing.T) {
	for _, allDay := range []field.Value{field.Bool(true), field.Bool(false), field.Null()} {
		s := recurring("March 3, 2024 9:00 am", "March 7, 2024 5:00 pm")
		s[field.AllDayEvent] = allDay
		assert.Equal(t, "March 3-7, 2024", eventdate.FormatEvent(s, "evt"))
	}
}

func TestAllDaySameDayIgnoresEndTime(t *testing.T) {
	start, st := eventdate.ParseMoment("October 12, 2025 8:00 am")
	require.Equal(t, eventdate.Parsed, st)

	for _, endText := range []string{"October 12, 2025", "October 12, 2025 8:00 am", "October 12, 2025 11:59 pm"} {
		end, st := eventdate.ParseMoment(endText)
		require.Equal(t, eventdate.Parsed, st)
		got := eventdate.SingleEvent{Start: start, End: &end}.Format(true)
		assert.Equal(t, "October 12, 2025", got, "end %q", endText)
	}
}

func TestFormatDateRangeSameMoment(t *testing.T) {
	for _, text := range []string{"January 1, 2024", "February 29, 2024 11:45 pm", "Jul 4, 1999"} {
		m, st := eventdate.ParseMoment(text)
		require.Equal(t, eventdate.Parsed, st)
		assert.Equal(t, m.Time.Format("January 2, 2006"), eventdate.FormatDateRange(m, m))
	}
}

func TestFormatRecordDirect(t *testing.T) {
	rec := eventdate.Record{
		AllDay: field.String("1"),
		Start:  field.String("June 1, 2024"),
		End:    field.String("June 3, 2024"),
	}
	assert.Equal(t, "June 1, 2024 - June 3, 2024", eventdate.FormatRecord(rec))
	assert.Equal(t, "", eventdate.FormatRecord(eventdate.Record{}))
}

func TestLoadReadsAllFields(t *testing.T) {
	store := field.NewMemoryStore()
	store.Put("test", "evt", field.Fields{
		field.IsRecurringEvent: field.String("Yes"),
		field.AllDayEvent:      field.Bool(true),
		field.RecurringEvent:   field.Record(map[string]string{field.FirstDate: "March 3, 2024"}),
		field.EventStartDate:   field.String("June 1, 2024"),
		field.EventEndDate:     field.String("June 2, 2024"),
	})

	rec := eventdate.Load(store, "evt")
	assert.Equal(t, field.String("Yes"), rec.IsRecurring)
	assert.Equal(t, field.Bool(true), rec.AllDay)
	assert.Equal(t, field.KindRecord, rec.Recurring.Kind())
	assert.Equal(t, field.String("June 1, 2024"), rec.Start)
	assert.Equal(t, field.String("June 2, 2024"), rec.End)

	assert.Equal(t, eventdate.Record{}, eventdate.Load(store, "missing"))
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"eventdate/internal/eventdate"
	"eventdate/internal/field"
)

func newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format a date from ad-hoc field values",
		Example: `  eventdate format --start "June 1, 2024 2:00 pm" --end "June 1, 2024 4:00 pm"
  eventdate format --start "June 1, 2024" --end "June 3, 2024" --all-day yes
  eventdate format --recurring Yes --first "March 3, 2024" --last "March 7, 2024"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := formatFields(cmd.Flags())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), eventdate.FormatEvent(field.MapStore(fields), ""))
			return err
		},
	}

	f := cmd.Flags()
	f.String("start", "", `Event start, e.g. "June 1, 2024 2:00 pm"`)
	f.String("end", "", "Event end")
	f.String("all-day", "", "All-day flag as entered (yes, true, 1)")
	f.String("recurring", "", "Recurring marker (Yes)")
	f.String("first", "", "First occurrence of a recurring event")
	f.String("last", "", "Last occurrence of a recurring event")
	return cmd
}

// formatFields maps the flags that were set on the command line to raw
// field values. Unset flags stay missing rather than empty.
func formatFields(flags *pflag.FlagSet) field.Fields {
	fields := field.Fields{}
	value := func(flag string) string {
		v, _ := flags.GetString(flag)
		return v
	}

	for flag, name := range map[string]string{
		"start":     field.EventStartDate,
		"end":       field.EventEndDate,
		"all-day":   field.AllDayEvent,
		"recurring": field.IsRecurringEvent,
	} {
		if flags.Changed(flag) {
			fields[name] = field.String(value(flag))
		}
	}

	if flags.Changed("first") || flags.Changed("last") {
		rec := map[string]string{}
		if flags.Changed("first") {
			rec[field.FirstDate] = value("first")
		}
		if flags.Changed("last") {
			rec[field.LastDate] = value("last")
		}
		fields[field.RecurringEvent] = field.Record(rec)
	}
	return fields
}

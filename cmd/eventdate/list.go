package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventdate/internal/eventdate"
)

func newListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the formatted date of every known event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, _, err := buildStore(cmd.Context(), cfg, *configPath)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, id := range store.IDs() {
				fmt.Fprintf(tw, "%s\t%s\n", id, eventdate.FormatEvent(store, id))
			}
			return tw.Flush()
		},
	}
}

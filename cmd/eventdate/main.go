package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "eventdate",
		Short: "Format human-readable dates for calendar events",
		Long: `eventdate renders event dates ("June 1, 2024 from 2:00-4:00 pm",
"March 3-7, 2024") from loosely-typed event fields kept in a YAML fields
file or pulled from iCalendar feeds.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "eventdate.yaml", "Path to config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newFormatCmd())
	root.AddCommand(newListCmd(&configPath))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

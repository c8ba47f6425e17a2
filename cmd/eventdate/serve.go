package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "eventdate/internal/log"
	"eventdate/internal/web"
)

func newServeCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve formatted event dates over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, *configPath, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath, listen string) error {
	appLog.Info("eventdate starting", "version", version)

	cfg, err := loadConfig(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}

	appLog.Info("effective config",
		"listen", cfg.Listen,
		"log_level", cfg.LogLevel,
		"fields_file", cfg.FieldsFile,
		"refresh", cfg.RefreshCron,
		"horizon_days", cfg.HorizonDays,
		"ics_count", len(cfg.ICS),
	)

	// Root context canceled on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, refresher, err := buildStore(ctx, cfg, configPath)
	if err != nil {
		appLog.Error("failed to load events", err)
		return err
	}

	if len(cfg.ICS) > 0 {
		if err := refresher.Start(ctx, cfg.RefreshCron); err != nil {
			return err
		}
		defer refresher.Stop()
	}

	err = web.NewServer(cfg, store).Run(ctx)
	appLog.Info("eventdate exiting")
	return err
}

package main

import (
	"context"
	"path/filepath"
	"strings"

	"eventdate/internal/config"
	"eventdate/internal/field"
	"eventdate/internal/ics"
	appLog "eventdate/internal/log"
)

// loadConfig reads the config file and applies its log level.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// buildStore fills a store from the fields file and one pass over the
// configured feeds. Feed errors are logged, not returned: a feed that is
// down must not keep the fields file from being served.
func buildStore(ctx context.Context, cfg *config.Config, cfgPath string) (*field.MemoryStore, *ics.Refresher, error) {
	store := field.NewMemoryStore()

	base := filepath.Dir(cfgPath)

	if cfg.FieldsFile != "" {
		path := relativeTo(base, cfg.FieldsFile)
		n, err := field.LoadFile(store, path)
		if err != nil {
			return nil, nil, err
		}
		appLog.Info("fields file loaded", "path", path, "events", n)
	}

	sources := make([]ics.Source, 0, len(cfg.ICS))
	for _, feed := range cfg.ICS {
		if feed.URL == "" {
			continue
		}
		url := feed.URL
		if !strings.Contains(url, "://") {
			url = relativeTo(base, url)
		}
		sources = append(sources, ics.Source{ID: feed.ID, URL: url})
	}

	refresher := ics.NewRefresher(ics.NewFetcher(relativeTo(base, cfg.CacheDir), nil), store, sources, cfg.HorizonDays)
	if len(sources) > 0 {
		if _, err := refresher.RefreshNow(ctx); err != nil {
			appLog.Error("initial feed refresh had errors", err)
		}
	}
	return store, refresher, nil
}

// relativeTo resolves a relative path from the config file's directory.
func relativeTo(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

package ics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"eventdate/internal/field"
	appLog "eventdate/internal/log"
)

// Refresher re-reads calendar feeds and swaps their events into a
// MemoryStore. Each feed owns the ids it produced; a feed that fails keeps
// its previous events.
type Refresher struct {
	fetcher     *Fetcher
	store       *field.MemoryStore
	sources     []Source
	horizonDays int
	now         func() time.Time

	mu   sync.Mutex // serializes refresh runs
	cron *cron.Cron
}

func NewRefresher(fetcher *Fetcher, store *field.MemoryStore, sources []Source, horizonDays int) *Refresher {
	return &Refresher{
		fetcher:     fetcher,
		store:       store,
		sources:     sources,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// Owner is the store owner name used for a feed's events.
func Owner(src Source) string {
	return "ics:" + src.ID
}

// RefreshNow fetches and parses every feed once. It returns the number of
// events stored and the joined per-feed errors.
func (r *Refresher) RefreshNow(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, errs := r.fetcher.FetchAll(ctx, r.sources)
	horizon := r.now().AddDate(0, 0, r.horizonDays)

	total := 0
	for _, res := range results {
		events, err := ParseFeed(res.Source, res.Body)
		if err != nil {
			appLog.Error("feed parse failed", err, "id", res.Source.ID)
			errs = append(errs, err)
			continue
		}
		fields := FieldsByID(events, horizon)
		removed := r.store.Replace(Owner(res.Source), fields)
		appLog.Info("feed refreshed", "id", res.Source.ID, "events", len(fields), "replaced", removed, "from_cache", res.FromCache)
		total += len(fields)
	}
	return total, errors.Join(errs...)
}

// Start schedules RefreshNow on spec (standard 5-field cron) until Stop is
// called or ctx is done.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := r.RefreshNow(ctx); err != nil {
			appLog.Error("scheduled feed refresh had errors", err)
		}
	}); err != nil {
		return err
	}

	r.cron = c
	c.Start()
	appLog.Info("feed refresh scheduled", "cron", spec, "feeds", len(r.sources))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

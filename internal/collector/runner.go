// Package collector orchestrates the per-source fetchers: parallel fetch
// with retries, then a single merge, dedupe and store pass.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

// Config tunes a collection run.
type Config struct {
	// Timeout bounds the whole run. Zero means unbounded.
	Timeout time.Duration
	// Retry applies to each source fetch.
	Retry service.RetryOptions
}

// Runner executes one collection pass across the enabled collectors.
// A source failing is part of a normal run and lands in the run results;
// Run itself only fails on storage trouble.
type Runner struct {
	store      service.Store
	collectors []service.Collector
	cfg        Config
}

// NewRunner creates a runner over the given collectors.
func NewRunner(store service.Store, collectors []service.Collector, cfg Config) *Runner {
	return &Runner{
		store:      store,
		collectors: collectors,
		cfg:        cfg,
	}
}

// Run fetches from every collector in parallel, merges the results,
// drops duplicates, stores what is new and records the run.
func (r *Runner) Run(ctx context.Context, since time.Time) (*model.CollectionRun, error) {
	if len(r.collectors) == 0 {
		return nil, fmt.Errorf("%w: no sources enabled", common.ErrInvalidConfig)
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	run := &model.CollectionRun{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Since:     since,
	}

	slog.Info("Collection started",
		"run_id", run.ID,
		"since", since.Format("2006-01-02"),
		"collectors", len(r.collectors))

	outcomes := make([]fetchOutcome, len(r.collectors))

	var g errgroup.Group
	for i, col := range r.collectors {
		g.Go(func() error {
			err := common.WithRetry(ctx, func() error {
				records, fetchErr := col.Fetch(ctx, since)
				if fetchErr != nil {
					return fetchErr
				}
				outcomes[i].records = records
				return nil
			}, r.cfg.Retry)
			if err != nil {
				outcomes[i].err = err
				slog.Error("Source fetch failed", "source", col.Source(), "error", err)
			}
			return nil
		})
	}
	// Goroutines never return errors; failures live in outcomes.
	_ = g.Wait()

	results, err := r.merge(ctx, outcomes)
	if err != nil {
		return nil, err
	}

	run.Results = results
	run.FinishedAt = time.Now().UTC()
	if err := r.store.SaveCollectionRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record collection run: %w", err)
	}

	slog.Info("Collection finished",
		"run_id", run.ID,
		"stored", run.TotalStored(),
		"duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return run, nil
}

type fetchOutcome struct {
	err     error
	records []model.Record
}

// merge folds per-collector outcomes into per-source results. A source can
// be served by several collectors (news has feeds and a scraper); it only
// counts as failed when every one of them failed.
func (r *Runner) merge(ctx context.Context, outcomes []fetchOutcome) ([]model.SourceResult, error) {
	collectedAt := time.Now().UTC()
	seen := make(map[string]bool)

	bySource := make(map[model.Source]*model.SourceResult)
	succeeded := make(map[model.Source]bool)
	failures := make(map[model.Source][]string)
	var order []model.Source

	for i, col := range r.collectors {
		src := col.Source()
		res, ok := bySource[src]
		if !ok {
			res = &model.SourceResult{Source: src}
			bySource[src] = res
			order = append(order, src)
		}

		if outcomes[i].err != nil {
			failures[src] = append(failures[src], outcomes[i].err.Error())
			continue
		}
		succeeded[src] = true

		res.Fetched += len(outcomes[i].records)
		normalized := Normalize(outcomes[i].records, collectedAt)
		deduped, inRunDupes := dedupe(normalized, seen)
		res.Duplicate += inRunDupes

		if len(deduped) == 0 {
			continue
		}
		inserted, err := r.store.SaveRecords(ctx, deduped)
		if err != nil {
			return nil, fmt.Errorf("failed to store %s records: %w", src, err)
		}
		res.Stored += inserted
		res.Duplicate += len(deduped) - inserted
	}

	results := make([]model.SourceResult, 0, len(order))
	for _, src := range order {
		res := bySource[src]
		if !succeeded[src] && len(failures[src]) > 0 {
			res.Err = strings.Join(failures[src], "; ")
		}
		results = append(results, *res)
	}
	return results, nil
}

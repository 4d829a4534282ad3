// Package scheduler fires the daily dispatch run and the token purge.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

// Runner executes a dispatch run for a date.
type Runner interface {
	RunOnce(ctx context.Context, date time.Time) (model.DispatchRunSummary, error)
}

// Purger deletes tokens that stopped being usable before a cutoff.
type Purger interface {
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// Options configure Daily.
type Options struct {
	// At is the local time of day of the run, "15:04".
	At            string
	Location      *time.Location
	SlotTTL       time.Duration
	PurgeInterval time.Duration
	// TokenRetention is how long unusable tokens are kept before purging.
	TokenRetention time.Duration
}

// Daily triggers one run per calendar day in Location.
type Daily struct {
	runner Runner
	purger Purger
	guard  model.SlotGuard
	hour   int
	minute int
	opts   Options
	now    func() time.Time
	after  func(d time.Duration) <-chan time.Time
	logger *logger.Logger
}

func NewDaily(runner Runner, purger Purger, guard model.SlotGuard, opts Options, logger *logger.Logger) (*Daily, error) {
	at, err := time.Parse("15:04", opts.At)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: %w", opts.At, err)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SlotTTL <= 0 {
		opts.SlotTTL = 36 * time.Hour
	}
	return &Daily{
		runner: runner,
		purger: purger,
		guard:  guard,
		hour:   at.Hour(),
		minute: at.Minute(),
		opts:   opts,
		now:    time.Now,
		after:  time.After,
		logger: logger,
	}, nil
}

// Next returns the first fire time strictly after t.
func (d *Daily) Next(t time.Time) time.Time {
	local := t.In(d.opts.Location)
	y, m, day := local.Date()
	next := time.Date(y, m, day, d.hour, d.minute, 0, 0, d.opts.Location)
	if !next.After(local) {
		next = time.Date(y, m, day+1, d.hour, d.minute, 0, 0, d.opts.Location)
	}
	return next
}

// Run blocks until ctx is done.
func (d *Daily) Run(ctx context.Context) error {
	var purge <-chan time.Time
	if d.purger != nil && d.opts.PurgeInterval > 0 {
		ticker := time.NewTicker(d.opts.PurgeInterval)
		defer ticker.Stop()
		purge = ticker.C
	}

	for {
		next := d.Next(d.now())
		d.logger.Info("Scheduler: next run scheduled", "at", next)

		fire := d.after(next.Sub(d.now()))
	wait:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-purge:
				d.Purge(ctx)
			case <-fire:
				break wait
			}
		}

		if _, err := d.Fire(ctx, next); err != nil {
			d.logger.Error("Scheduler: run failed",
				"date", next.Format(time.DateOnly),
				"error", err.Error())
		}
	}
}

// Fire runs the dispatch of date unless another trigger already owns its slot.
// It reports whether a run was started.
func (d *Daily) Fire(ctx context.Context, date time.Time) (bool, error) {
	local := date.In(d.opts.Location)
	slot := local.Format(time.DateOnly)

	if d.guard != nil {
		ok, err := d.guard.Acquire(ctx, slot, d.opts.SlotTTL)
		if err != nil {
			return false, fmt.Errorf("failed to acquire slot: %w", err)
		}
		if !ok {
			d.logger.Info("Scheduler: slot already taken", "slot", slot)
			return false, nil
		}
	}

	summary, err := d.runner.RunOnce(ctx, local)
	if err != nil {
		return true, err
	}
	d.logger.Info("Scheduler: run finished",
		"slot", slot,
		"run_id", summary.RunID,
		"sent", summary.TotalSent,
		"failed", summary.TotalFailed)
	return true, nil
}

// Purge removes tokens unusable for longer than the retention period.
func (d *Daily) Purge(ctx context.Context) {
	cutoff := d.now().Add(-d.opts.TokenRetention)
	n, err := d.purger.Purge(ctx, cutoff)
	if err != nil {
		d.logger.Error("Scheduler: token purge failed", "error", err.Error())
		return
	}
	d.logger.Info("Scheduler: tokens purged", "count", n, "cutoff", cutoff)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/model"
)

// RunReport combines a stored run with the counts derived from its attempts.
type RunReport struct {
	Run    model.DispatchRun
	Counts model.DeliveryCounts
}

// Reports exposes raw counters over runs and the delivery log.
type Reports struct {
	runs     model.DispatchRunStore
	log      model.DeliveryLog
	location *time.Location
}

func NewReports(runs model.DispatchRunStore, log model.DeliveryLog, location *time.Location) *Reports {
	if location == nil {
		location = time.UTC
	}
	return &Reports{runs: runs, log: log, location: location}
}

func (r *Reports) Run(ctx context.Context, runID uuid.UUID) (RunReport, error) {
	run, err := r.runs.GetByID(ctx, runID)
	if err != nil {
		return RunReport{}, err
	}
	counts, err := r.log.Summarize(ctx, runID)
	if err != nil {
		return RunReport{}, fmt.Errorf("failed to summarize run: %w", err)
	}
	return RunReport{Run: run, Counts: counts}, nil
}

func (r *Reports) Attempts(ctx context.Context, runID uuid.UUID, userID int64) ([]model.DeliveryAttempt, error) {
	if _, err := r.runs.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	return r.log.AttemptsFor(ctx, runID, userID)
}

// DailyStats counts the attempts made during date in the configured location.
func (r *Reports) DailyStats(ctx context.Context, date time.Time) (model.DailyStats, error) {
	y, m, d := date.In(r.location).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, r.location)
	return r.log.DailyStats(ctx, from, from.AddDate(0, 0, 1))
}

// Today is the current date in the configured location.
func (r *Reports) Today() time.Time {
	y, m, d := time.Now().In(r.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.location)
}

// ParseDate reads a YYYY-MM-DD date as midnight in the configured location.
func (r *Reports) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, s, r.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

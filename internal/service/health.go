package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/dailyphrase/internal/model"
)

// HealthStatus describes the state of the most recent run.
type HealthStatus struct {
	Serving   bool
	Reason    string
	LatestRun *model.DispatchRun
}

// Health treats a run without completedAt as failed once it is older than
// staleAfter.
type Health struct {
	runs        model.DispatchRunStore
	staleAfter  time.Duration
	expectDaily bool
	now         func() time.Time
}

func NewHealth(runs model.DispatchRunStore, staleAfter time.Duration, expectDaily bool) *Health {
	return &Health{runs: runs, staleAfter: staleAfter, expectDaily: expectDaily, now: time.Now}
}

func (h *Health) Check(ctx context.Context) (HealthStatus, error) {
	run, err := h.runs.Latest(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return HealthStatus{Serving: true, Reason: "no runs yet"}, nil
		}
		return HealthStatus{}, fmt.Errorf("failed to get latest run: %w", err)
	}

	status := HealthStatus{Serving: true, LatestRun: &run}
	age := h.now().Sub(run.StartedAt)

	switch {
	case run.Abandoned():
		status.Serving = false
		status.Reason = "latest run was abandoned: " + run.AbandonReason
	case !run.Completed() && age > h.staleAfter:
		status.Serving = false
		status.Reason = "latest run is incomplete"
	case !run.Completed():
		status.Reason = "run in progress"
	case h.expectDaily && age > 24*time.Hour+h.staleAfter:
		status.Serving = false
		status.Reason = "no run in the last day"
	default:
		status.Reason = "latest run completed"
	}
	return status, nil
}

package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DispatchRunStore persists dispatch runs.
type DispatchRunStore interface {
	Create(ctx context.Context, run DispatchRun) error
	Complete(ctx context.Context, run DispatchRun) error
	// Abandon marks an unfinished run as given up. ErrNotFound when no
	// incomplete run has id.
	Abandon(ctx context.Context, id uuid.UUID, at time.Time, reason string) error
	GetByID(ctx context.Context, id uuid.UUID) (DispatchRun, error)
	// Latest returns the most recently started run or ErrNotFound.
	Latest(ctx context.Context) (DispatchRun, error)
}

// DispatchRun is one execution of the daily send pipeline.
type DispatchRun struct {
	ID           uuid.UUID
	ScheduledFor time.Time
	StartedAt    time.Time
	// CompletedAt stays nil for runs that were abandoned.
	CompletedAt     *time.Time
	AbandonedAt     *time.Time
	AbandonReason   string
	TotalRecipients int
	TotalSent       int
	TotalFailed     int
}

// Completed reports whether the run finished.
func (r DispatchRun) Completed() bool {
	return r.CompletedAt != nil
}

// Abandoned reports whether the run was given up before completing.
func (r DispatchRun) Abandoned() bool {
	return r.AbandonedAt != nil && r.CompletedAt == nil
}

// DispatchRunSummary is returned to the caller of a run.
type DispatchRunSummary struct {
	RunID                 uuid.UUID
	ScheduledFor          time.Time
	TotalRecipients       int
	TotalSent             int
	TotalFailed           int
	PermanentlyFailedUIDs []int64
}

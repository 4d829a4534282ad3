package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.DispatchRunStore = (*DispatchRunRepository)(nil)

type DispatchRunRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]model.DispatchRun
}

func NewDispatchRunRepository() *DispatchRunRepository {
	return &DispatchRunRepository{runs: make(map[uuid.UUID]model.DispatchRun)}
}

func (r *DispatchRunRepository) Create(ctx context.Context, run model.DispatchRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = run
	return nil
}

func (r *DispatchRunRepository) Complete(ctx context.Context, run model.DispatchRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.runs[run.ID]
	if !ok {
		return model.ErrNotFound
	}
	stored.CompletedAt = run.CompletedAt
	stored.TotalRecipients = run.TotalRecipients
	stored.TotalSent = run.TotalSent
	stored.TotalFailed = run.TotalFailed
	r.runs[run.ID] = stored
	return nil
}

func (r *DispatchRunRepository) Abandon(ctx context.Context, id uuid.UUID, at time.Time, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.runs[id]
	if !ok || stored.CompletedAt != nil {
		return model.ErrNotFound
	}
	stored.AbandonedAt = &at
	stored.AbandonReason = reason
	r.runs[id] = stored
	return nil
}

func (r *DispatchRunRepository) GetByID(ctx context.Context, id uuid.UUID) (model.DispatchRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return model.DispatchRun{}, model.ErrNotFound
	}
	return run, nil
}

func (r *DispatchRunRepository) Latest(ctx context.Context) (model.DispatchRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		latest model.DispatchRun
		found  bool
	)
	for _, run := range r.runs {
		if !found || run.StartedAt.After(latest.StartedAt) {
			latest, found = run, true
		}
	}
	if !found {
		return model.DispatchRun{}, model.ErrNotFound
	}
	return latest, nil
}

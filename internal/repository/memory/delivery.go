package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.DeliveryLog = (*DeliveryRepository)(nil)

type attemptKey struct {
	runID   uuid.UUID
	userID  int64
	attempt int
}

// DeliveryRepository keeps attempts in insertion order and never mutates them.
type DeliveryRepository struct {
	mu       sync.RWMutex
	attempts []model.DeliveryAttempt
	seen     map[attemptKey]struct{}
}

func NewDeliveryRepository() *DeliveryRepository {
	return &DeliveryRepository{seen: make(map[attemptKey]struct{})}
}

func (r *DeliveryRepository) Append(ctx context.Context, a model.DeliveryAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attemptKey{runID: a.DispatchRunID, userID: a.UserID, attempt: a.AttemptNumber}
	if _, dup := r.seen[key]; dup {
		return fmt.Errorf("failed to append delivery attempt: attempt %d for user %d already recorded", a.AttemptNumber, a.UserID)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.seen[key] = struct{}{}
	r.attempts = append(r.attempts, a)
	return nil
}

func (r *DeliveryRepository) AttemptsFor(ctx context.Context, runID uuid.UUID, userID int64) ([]model.DeliveryAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.DeliveryAttempt
	for _, a := range r.attempts {
		if a.DispatchRunID == runID && a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

// All returns every attempt of a run, for inspection.
func (r *DeliveryRepository) All(runID uuid.UUID) []model.DeliveryAttempt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.DeliveryAttempt
	for _, a := range r.attempts {
		if a.DispatchRunID == runID {
			out = append(out, a)
		}
	}
	return out
}

func (r *DeliveryRepository) Summarize(ctx context.Context, runID uuid.UUID) (model.DeliveryCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipients := make(map[int64]struct{})
	sent := make(map[int64]struct{})
	failed := make(map[int64]struct{})
	var c model.DeliveryCounts
	for _, a := range r.attempts {
		if a.DispatchRunID != runID {
			continue
		}
		c.Attempts++
		recipients[a.UserID] = struct{}{}
		switch a.Outcome {
		case model.OutcomeSent:
			sent[a.UserID] = struct{}{}
		case model.OutcomeFailedPermanent:
			failed[a.UserID] = struct{}{}
		case model.OutcomeFailedRetryable:
			c.Retryable++
		}
	}
	c.Recipients = len(recipients)
	c.Sent = len(sent)
	c.Failed = len(failed)
	return c, nil
}

func (r *DeliveryRepository) ExhaustedRecipients(ctx context.Context, runID uuid.UUID) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{})
	var out []int64
	for _, a := range r.attempts {
		if a.DispatchRunID != runID || a.Outcome != model.OutcomeFailedPermanent {
			continue
		}
		if a.ErrorKind == nil || *a.ErrorKind != model.ErrorKindExhausted {
			continue
		}
		if _, dup := seen[a.UserID]; dup {
			continue
		}
		seen[a.UserID] = struct{}{}
		out = append(out, a.UserID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *DeliveryRepository) DailyStats(ctx context.Context, from, to time.Time) (model.DailyStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := model.DailyStats{Date: from}
	for _, a := range r.attempts {
		if a.Timestamp.Before(from) || !a.Timestamp.Before(to) {
			continue
		}
		stats.Total++
		switch a.Outcome {
		case model.OutcomeSent:
			stats.Sent++
		case model.OutcomeFailedPermanent:
			stats.Failed++
		case model.OutcomeFailedRetryable:
			stats.Retrying++
		}
	}
	return stats, nil
}

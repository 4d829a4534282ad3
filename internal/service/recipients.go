package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

// EligibilityPolicy decides whether an active user receives the dispatch for date.
type EligibilityPolicy func(user model.User, date time.Time) bool

// DefaultEligibility accepts every active user on a known plan.
func DefaultEligibility(user model.User, _ time.Time) bool {
	return user.Tier.Valid()
}

// RecipientSelector computes the recipient pool of a run.
type RecipientSelector struct {
	users  model.UserStore
	policy EligibilityPolicy
	logger *logger.Logger
}

func NewRecipientSelector(users model.UserStore, policy EligibilityPolicy, logger *logger.Logger) *RecipientSelector {
	if policy == nil {
		policy = DefaultEligibility
	}
	return &RecipientSelector{users: users, policy: policy, logger: logger}
}

// SelectForRun returns eligible active users ordered by ascending id.
func (s *RecipientSelector) SelectForRun(ctx context.Context, date time.Time) ([]model.User, error) {
	users, err := s.users.ActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active users: %w", err)
	}

	pool := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.Status != model.StatusActive {
			continue
		}
		if !s.policy(u, date) {
			continue
		}
		pool = append(pool, u)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	s.logger.Debug("Recipient selector: pool selected",
		"date", date.Format(time.DateOnly),
		"active", len(users),
		"eligible", len(pool))

	return pool, nil
}

// SelectUsers narrows ids to users that are still active and eligible for
// date, ordered by ascending id. Users that no longer exist are skipped.
func (s *RecipientSelector) SelectUsers(ctx context.Context, date time.Time, ids []int64) ([]model.User, error) {
	pool := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load user %d: %w", id, err)
		}
		if u.Status != model.StatusActive || !s.policy(u, date) {
			continue
		}
		pool = append(pool, u)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	s.logger.Debug("Recipient selector: retry pool selected",
		"date", date.Format(time.DateOnly),
		"requested", len(ids),
		"eligible", len(pool))

	return pool, nil
}

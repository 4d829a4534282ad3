package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.ConfirmationTokenStore = (*TokenRepository)(nil)

type TokenRepository struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]model.ConfirmationToken
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{tokens: make(map[uuid.UUID]model.ConfirmationToken)}
}

func (r *TokenRepository) Replace(ctx context.Context, token model.ConfirmationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	for id, t := range r.tokens {
		if t.UserID == token.UserID && t.Purpose == token.Purpose && t.Usable(token.IssuedAt) {
			t.ExpiresAt = token.IssuedAt
			r.tokens[id] = t
		}
	}
	r.tokens[token.ID] = token
	return nil
}

func (r *TokenRepository) Consume(ctx context.Context, secretHash []byte, purpose model.TokenPurpose, now time.Time) (model.ConfirmationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tokens {
		if t.Purpose != purpose || !bytes.Equal(t.SecretHash, secretHash) {
			continue
		}
		if err := t.State(now); err != nil {
			return model.ConfirmationToken{}, err
		}
		consumed := now
		t.ConsumedAt = &consumed
		r.tokens[id] = t
		return t, nil
	}
	return model.ConfirmationToken{}, model.ErrTokenNotFound
}

func (r *TokenRepository) Release(ctx context.Context, id uuid.UUID, consumedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[id]
	if !ok || t.ConsumedAt == nil || !t.ConsumedAt.Equal(consumedAt) {
		return model.ErrTokenNotFound
	}
	t.ConsumedAt = nil
	r.tokens[id] = t
	return nil
}

func (r *TokenRepository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tokens {
		consumedBefore := t.ConsumedAt != nil && t.ConsumedAt.Before(olderThan)
		if consumedBefore || t.ExpiresAt.Before(olderThan) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConfirmationTokenStore persists single-use confirmation tokens.
type ConfirmationTokenStore interface {
	// Replace expires every outstanding token of token.UserID and
	// token.Purpose (expires_at = token.IssuedAt) and stores token, atomically.
	Replace(ctx context.Context, token ConfirmationToken) error
	// Consume sets consumed_at = now on the token matching secretHash and
	// purpose if it is unconsumed and unexpired. Exactly one concurrent
	// caller can succeed. On failure it returns ErrTokenNotFound,
	// ErrTokenExpired or ErrTokenAlreadyConsumed.
	Consume(ctx context.Context, secretHash []byte, purpose TokenPurpose, now time.Time) (ConfirmationToken, error)
	// Release clears consumed_at of token id if it still equals consumedAt,
	// undoing a Consume whose follow-up work failed. ErrTokenNotFound when
	// nothing matched.
	Release(ctx context.Context, id uuid.UUID, consumedAt time.Time) error
	// Purge deletes consumed or expired tokens that stopped being usable before olderThan.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// ConfirmationToken is a single-use secret proving control of an email address.
type ConfirmationToken struct {
	ID         uuid.UUID
	UserID     int64
	Purpose    TokenPurpose
	SecretHash []byte
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// TokenPurpose enumerates what a token may be used for.
type TokenPurpose string

const (
	PurposeSignupConfirmation TokenPurpose = "signup_confirmation"
	PurposePasswordReset      TokenPurpose = "password_reset"
)

// Valid reports whether p is a known purpose.
func (p TokenPurpose) Valid() bool {
	switch p {
	case PurposeSignupConfirmation, PurposePasswordReset:
		return true
	default:
		return false
	}
}

// Usable reports whether the token can still be consumed at now.
func (t ConfirmationToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}

// State classifies an unusable token: ErrTokenAlreadyConsumed when it was
// consumed, ErrTokenExpired when its TTL passed, nil when it is still usable.
func (t ConfirmationToken) State(now time.Time) error {
	if t.ConsumedAt != nil {
		return ErrTokenAlreadyConsumed
	}
	if !now.Before(t.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

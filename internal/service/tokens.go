package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

const secretBytes = 32

// TokenTTLs are the lifetimes of each token purpose.
type TokenTTLs struct {
	SignupConfirmation time.Duration
	PasswordReset      time.Duration
}

// IssuedToken carries the plain secret, which is never persisted.
type IssuedToken struct {
	Token  model.ConfirmationToken
	Secret string
}

// Tokens issues, validates and purges single-use confirmation tokens.
type Tokens struct {
	store  model.ConfirmationTokenStore
	ttls   TokenTTLs
	now    func() time.Time
	logger *logger.Logger
}

func NewTokens(store model.ConfirmationTokenStore, ttls TokenTTLs, logger *logger.Logger) *Tokens {
	return &Tokens{store: store, ttls: ttls, now: time.Now, logger: logger}
}

func (s *Tokens) ttl(purpose model.TokenPurpose) (time.Duration, error) {
	switch purpose {
	case model.PurposeSignupConfirmation:
		return s.ttls.SignupConfirmation, nil
	case model.PurposePasswordReset:
		return s.ttls.PasswordReset, nil
	default:
		return 0, fmt.Errorf("unknown token purpose %q", purpose)
	}
}

// Issue replaces any outstanding token of userID and purpose with a fresh one.
func (s *Tokens) Issue(ctx context.Context, userID int64, purpose model.TokenPurpose) (IssuedToken, error) {
	ttl, err := s.ttl(purpose)
	if err != nil {
		return IssuedToken{}, err
	}

	secret, err := generateSecret()
	if err != nil {
		return IssuedToken{}, fmt.Errorf("generate secret: %w", err)
	}

	now := s.now()
	token := model.ConfirmationToken{
		ID:         uuid.New(),
		UserID:     userID,
		Purpose:    purpose,
		SecretHash: hashSecret(secret),
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
	}

	if err := s.store.Replace(ctx, token); err != nil {
		s.logger.Error("Tokens: failed to persist token",
			"user_id", userID,
			"purpose", purpose,
			"error", err.Error())
		return IssuedToken{}, fmt.Errorf("persist token: %w", err)
	}

	s.logger.Debug("Tokens: token issued",
		"user_id", userID,
		"purpose", purpose,
		"expires_at", token.ExpiresAt)

	return IssuedToken{Token: token, Secret: secret}, nil
}

// Validate consumes the token and returns its owner. Token failures are
// model.ErrTokenNotFound, model.ErrTokenExpired or model.ErrTokenAlreadyConsumed.
func (s *Tokens) Validate(ctx context.Context, secret string, purpose model.TokenPurpose) (int64, error) {
	token, err := s.Redeem(ctx, secret, purpose)
	if err != nil {
		return 0, err
	}
	return token.UserID, nil
}

// Redeem consumes the token and returns it, so a caller whose follow-up work
// fails can hand it back to Release.
func (s *Tokens) Redeem(ctx context.Context, secret string, purpose model.TokenPurpose) (model.ConfirmationToken, error) {
	if secret == "" {
		return model.ConfirmationToken{}, model.ErrTokenNotFound
	}

	token, err := s.store.Consume(ctx, hashSecret(secret), purpose, s.now())
	if err != nil {
		if isTokenError(err) {
			s.logger.Info("Tokens: token rejected",
				"purpose", purpose,
				"reason", err.Error())
			return model.ConfirmationToken{}, err
		}
		return model.ConfirmationToken{}, fmt.Errorf("consume token: %w", err)
	}

	return token, nil
}

// Release makes a redeemed token usable again.
func (s *Tokens) Release(ctx context.Context, token model.ConfirmationToken) error {
	if token.ConsumedAt == nil {
		return nil
	}
	if err := s.store.Release(ctx, token.ID, *token.ConsumedAt); err != nil {
		return fmt.Errorf("release token: %w", err)
	}
	s.logger.Info("Tokens: token released",
		"user_id", token.UserID,
		"purpose", token.Purpose)
	return nil
}

// Purge deletes tokens that stopped being usable before olderThan.
func (s *Tokens) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	n, err := s.store.Purge(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge tokens: %w", err)
	}
	s.logger.Info("Tokens: purged stale tokens",
		"count", n,
		"older_than", olderThan)
	return n, nil
}

func isTokenError(err error) bool {
	return errors.Is(err, model.ErrTokenNotFound) ||
		errors.Is(err, model.ErrTokenExpired) ||
		errors.Is(err, model.ErrTokenAlreadyConsumed)
}

func generateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashSecret(secret string) []byte {
	h := sha256.Sum256([]byte(secret))
	return h[:]
}

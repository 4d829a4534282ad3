package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

// ConfirmationStatus is the user-facing outcome of a confirmation attempt.
type ConfirmationStatus int

const (
	ConfirmationConfirmed ConfirmationStatus = iota
	ConfirmationNotFound
	ConfirmationExpired
	ConfirmationAlreadyConsumed
)

func (s ConfirmationStatus) String() string {
	switch s {
	case ConfirmationConfirmed:
		return "confirmed"
	case ConfirmationNotFound:
		return "not_found"
	case ConfirmationExpired:
		return "expired"
	case ConfirmationAlreadyConsumed:
		return "already_consumed"
	default:
		return "unknown"
	}
}

// ConfirmationResult is returned by Confirm. UserID is set only when confirmed.
type ConfirmationResult struct {
	Status ConfirmationStatus
	UserID int64
}

// AccountConfirmedPayload is the payload of the account.confirmed event.
type AccountConfirmedPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Tier   string `json:"tier"`
}

// Confirmation moves accounts from pending_confirmation to active. It is the
// only code path that activates a user.
type Confirmation struct {
	users    model.UserStore
	tokens   *Tokens
	notifier model.ConfirmationNotifier
	events   model.EventPublisher
	now      func() time.Time
	logger   *logger.Logger
}

func NewConfirmation(
	users model.UserStore,
	tokens *Tokens,
	notifier model.ConfirmationNotifier,
	events model.EventPublisher,
	logger *logger.Logger,
) *Confirmation {
	return &Confirmation{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		events:   events,
		now:      time.Now,
		logger:   logger,
	}
}

// RequestConfirmation issues a signup token and hands the secret to the notifier.
func (c *Confirmation) RequestConfirmation(ctx context.Context, userID int64) error {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.Status != model.StatusPendingConfirmation {
		c.logger.Info("Confirmation service: user is not pending",
			"user_id", userID,
			"status", user.Status)
		return model.ErrUserNotPending
	}

	issued, err := c.tokens.Issue(ctx, userID, model.PurposeSignupConfirmation)
	if err != nil {
		return fmt.Errorf("failed to issue confirmation token: %w", err)
	}

	if err := c.notifier.SendConfirmation(ctx, user, issued.Secret); err != nil {
		c.logger.Error("Confirmation service: failed to deliver confirmation link",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to deliver confirmation: %w", err)
	}

	c.logger.Info("Confirmation service: confirmation requested",
		"user_id", userID)
	return nil
}

// Confirm consumes a signup token. Token failures are reported in the result
// with a nil error and never touch the user. When the user store fails the
// token is released so the same link can be retried.
func (c *Confirmation) Confirm(ctx context.Context, secret string) (ConfirmationResult, error) {
	token, err := c.tokens.Redeem(ctx, secret, model.PurposeSignupConfirmation)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrTokenNotFound):
		return ConfirmationResult{Status: ConfirmationNotFound}, nil
	case errors.Is(err, model.ErrTokenExpired):
		return ConfirmationResult{Status: ConfirmationExpired}, nil
	case errors.Is(err, model.ErrTokenAlreadyConsumed):
		return ConfirmationResult{Status: ConfirmationAlreadyConsumed}, nil
	default:
		return ConfirmationResult{}, err
	}

	userID := token.UserID

	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		c.release(ctx, token)
		return ConfirmationResult{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := user.Status.CheckTransition(model.StatusActive); err != nil {
		c.logger.Warn("Confirmation service: user cannot be activated",
			"user_id", userID,
			"status", user.Status)
		return ConfirmationResult{}, err
	}

	if err := c.users.SetStatus(ctx, userID, model.StatusActive); err != nil {
		c.logger.Error("Confirmation service: failed to activate user",
			"user_id", userID,
			"error", err.Error())
		c.release(ctx, token)
		return ConfirmationResult{}, fmt.Errorf("failed to activate user: %w", err)
	}
	user.Status = model.StatusActive

	c.logger.Info("Confirmation service: user confirmed",
		"user_id", userID)

	if err := c.notifier.NotifyAdminConfirmed(ctx, user); err != nil && !errors.Is(err, model.ErrNotConfigured) {
		c.logger.Warn("Confirmation service: failed to notify admin",
			"user_id", userID,
			"error", err.Error())
	}

	event := model.Event{
		Type:       model.EventAccountConfirmed,
		OccurredAt: c.now(),
		Payload:    AccountConfirmedPayload{UserID: user.ID, Email: user.Email, Tier: string(user.Tier)},
	}
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.Warn("Confirmation service: failed to publish event",
			"user_id", userID,
			"error", err.Error())
	}

	return ConfirmationResult{Status: ConfirmationConfirmed, UserID: userID}, nil
}

func (c *Confirmation) release(ctx context.Context, token model.ConfirmationToken) {
	if err := c.tokens.Release(context.WithoutCancel(ctx), token); err != nil {
		c.logger.Error("Confirmation service: failed to release token",
			"user_id", token.UserID,
			"error", err.Error())
	}
}

// RequestPasswordReset sends a reset link. Unknown addresses are ignored so
// callers cannot tell which emails are registered.
func (c *Confirmation) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := c.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.logger.Info("Confirmation service: password reset for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user.Status == model.StatusDisabled {
		c.logger.Info("Confirmation service: password reset for disabled user",
			"user_id", user.ID)
		return nil
	}

	issued, err := c.tokens.Issue(ctx, user.ID, model.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("failed to issue password reset token: %w", err)
	}

	if err := c.notifier.SendPasswordReset(ctx, user, issued.Secret); err != nil {
		return fmt.Errorf("failed to deliver password reset: %w", err)
	}
	return nil
}

// ConsumePasswordReset validates a reset secret and returns its owner. The
// password change itself belongs to the user store.
func (c *Confirmation) ConsumePasswordReset(ctx context.Context, secret string) (int64, error) {
	return c.tokens.Validate(ctx, secret, model.PurposePasswordReset)
}

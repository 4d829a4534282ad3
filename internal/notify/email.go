// Package notify delivers confirmation links and operator notices by email.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/dailyphrase/internal/content"
	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.ConfirmationNotifier = (*EmailNotifier)(nil)

// ErrAdminNotConfigured is returned when no operator address is set.
var ErrAdminNotConfigured = fmt.Errorf("admin address: %w", model.ErrNotConfigured)

type EmailNotifier struct {
	sender           model.Sender
	renderer         *content.Renderer
	adminAddress     string
	confirmationTTL  time.Duration
	passwordResetTTL time.Duration
	logger           *logger.Logger
}

func NewEmailNotifier(
	sender model.Sender,
	renderer *content.Renderer,
	adminAddress string,
	confirmationTTL, passwordResetTTL time.Duration,
	logger *logger.Logger,
) *EmailNotifier {
	return &EmailNotifier{
		sender:           sender,
		renderer:         renderer,
		adminAddress:     adminAddress,
		confirmationTTL:  confirmationTTL,
		passwordResetTTL: passwordResetTTL,
		logger:           logger,
	}
}

func (n *EmailNotifier) SendConfirmation(ctx context.Context, user model.User, secret string) error {
	msg, err := n.renderer.Confirmation(user, secret, n.confirmationTTL)
	if err != nil {
		return err
	}
	return n.deliver(ctx, msg, "confirmation")
}

func (n *EmailNotifier) SendPasswordReset(ctx context.Context, user model.User, secret string) error {
	msg, err := n.renderer.PasswordReset(user, secret, n.passwordResetTTL)
	if err != nil {
		return err
	}
	return n.deliver(ctx, msg, "password reset")
}

func (n *EmailNotifier) NotifyAdminConfirmed(ctx context.Context, user model.User) error {
	if n.adminAddress == "" {
		return ErrAdminNotConfigured
	}
	return n.deliver(ctx, n.renderer.AdminConfirmed(n.adminAddress, user), "admin notice")
}

func (n *EmailNotifier) deliver(ctx context.Context, msg model.Message, kind string) error {
	res := n.sender.Send(ctx, msg)
	if res.Status == model.SendSent {
		n.logger.Debug("Notifier: email sent",
			"kind", kind,
			"to", msg.To)
		return nil
	}

	n.logger.Error("Notifier: email not sent",
		"kind", kind,
		"to", msg.To,
		"status", res.Status.String(),
		"reason", res.Reason)
	return fmt.Errorf("failed to send %s email: %s: %s", kind, res.Status, res.Reason)
}

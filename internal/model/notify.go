package model

import "context"

// ConfirmationNotifier delivers token links and operator notices.
type ConfirmationNotifier interface {
	SendConfirmation(ctx context.Context, user User, secret string) error
	SendPasswordReset(ctx context.Context, user User, secret string) error
	NotifyAdminConfirmed(ctx context.Context, user User) error
}

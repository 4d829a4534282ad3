package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserStatus_CheckTransition(t *testing.T) {
	tests := map[string]struct {
		from    UserStatus
		to      UserStatus
		allowed bool
	}{
		"pending to active":     {StatusPendingConfirmation, StatusActive, true},
		"pending to disabled":   {StatusPendingConfirmation, StatusDisabled, true},
		"active to disabled":    {StatusActive, StatusDisabled, true},
		"disabled to pending":   {StatusDisabled, StatusPendingConfirmation, true},
		"pending to pending":    {StatusPendingConfirmation, StatusPendingConfirmation, false},
		"active to active":      {StatusActive, StatusActive, false},
		"active to pending":     {StatusActive, StatusPendingConfirmation, false},
		"disabled to active":    {StatusDisabled, StatusActive, false},
		"unknown target":        {StatusActive, UserStatus("banned"), false},
		"unknown current state": {UserStatus("banned"), StatusActive, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.from.CheckTransition(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, TierPremium.Valid())
	assert.False(t, SubscriptionTier("gold").Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
	assert.True(t, PurposePasswordReset.Valid())
	assert.False(t, TokenPurpose("login").Valid())
}

func TestLockedFields(t *testing.T) {
	l := NewLockedFields("tier", "role")

	assert.True(t, l.Locked("tier"))
	assert.False(t, l.Locked("name"))
	assert.False(t, LockedFields(nil).Locked("tier"))
}

func TestConfirmationToken_State(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	consumed := now.Add(-time.Minute)

	tests := map[string]struct {
		token  ConfirmationToken
		usable bool
		err    error
	}{
		"fresh": {
			token:  ConfirmationToken{ExpiresAt: now.Add(time.Hour)},
			usable: true,
		},
		"expires exactly now": {
			token: ConfirmationToken{ExpiresAt: now},
			err:   ErrTokenExpired,
		},
		"consumed wins over expired": {
			token: ConfirmationToken{ExpiresAt: now.Add(-time.Hour), ConsumedAt: &consumed},
			err:   ErrTokenAlreadyConsumed,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.usable, tt.token.Usable(now))
			assert.ErrorIs(t, tt.token.State(now), tt.err)
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.True(t, OutcomeSent.Terminal())
	assert.True(t, OutcomeFailedPermanent.Terminal())
	assert.False(t, OutcomeFailedRetryable.Terminal())
	assert.True(t, OutcomeFailedRetryable.Valid())
	assert.False(t, Outcome("bounced").Valid())
	assert.False(t, Outcome("bounced").Terminal())
}

func TestDailyStats_SuccessRate(t *testing.T) {
	assert.Zero(t, DailyStats{}.SuccessRate())
	assert.InDelta(t, 75.0, DailyStats{Total: 4, Sent: 3, Failed: 1}.SuccessRate(), 0.001)
}

func TestSendResult(t *testing.T) {
	assert.Equal(t, "sent", Sent().Status.String())
	assert.Equal(t, SendResult{Status: SendTransientFailure, Reason: "timeout"}, TransientFailure("timeout"))
	assert.Equal(t, "permanent_failure", PermanentFailure("bad").Status.String())
	assert.Equal(t, "unknown", SendStatus(42).String())
}

func TestDispatchRun_Completed(t *testing.T) {
	now := time.Now()
	assert.False(t, DispatchRun{}.Completed())
	assert.True(t, DispatchRun{CompletedAt: &now}.Completed())
}

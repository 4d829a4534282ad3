package model

import (
	"context"
	"fmt"
	"time"
)

// UserStore is the subset of the external user store the core relies on.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// ActiveUsers returns users with status=active ordered by id.
	ActiveUsers(ctx context.Context) ([]User, error)
	SetStatus(ctx context.Context, id int64, status UserStatus) error
}

// User is an account of the external user store.
type User struct {
	ID                int64
	Email             string
	Name              string
	Tier              SubscriptionTier
	Role              Role
	Status            UserStatus
	PreferredCategory string
	LockedFields      LockedFields
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SubscriptionTier enumerates subscription plans.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// Valid reports whether t is a known tier.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierPremium:
		return true
	default:
		return false
	}
}

// Role enumerates account roles.
type Role string

const (
	RolePending Role = "pending"
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RolePending, RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// UserStatus enumerates account lifecycle states.
type UserStatus string

const (
	StatusPendingConfirmation UserStatus = "pending_confirmation"
	StatusActive              UserStatus = "active"
	StatusDisabled            UserStatus = "disabled"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusPendingConfirmation, StatusActive, StatusDisabled:
		return true
	default:
		return false
	}
}

// CheckTransition returns ErrInvalidTransition unless moving from s to next is allowed.
//
// Activation is only reachable from pending_confirmation; the confirmation
// workflow is the single caller that requests it.
func (s UserStatus) CheckTransition(next UserStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	switch s {
	case StatusPendingConfirmation:
		switch next {
		case StatusActive, StatusDisabled:
			return nil
		case StatusPendingConfirmation:
		}
	case StatusActive:
		switch next {
		case StatusDisabled:
			return nil
		case StatusActive, StatusPendingConfirmation:
		}
	case StatusDisabled:
		switch next {
		case StatusPendingConfirmation:
			return nil
		case StatusActive, StatusDisabled:
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
}

// LockedFields is the set of profile fields a user cannot edit themselves.
type LockedFields map[string]struct{}

// NewLockedFields builds a set from field names.
func NewLockedFields(names ...string) LockedFields {
	set := make(LockedFields, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Locked reports whether field is protected.
func (l LockedFields) Locked(field string) bool {
	_, ok := l[field]
	return ok
}

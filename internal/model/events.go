package model

import (
	"context"
	"time"
)

// Event routing keys.
const (
	EventRunCompleted     = "dispatch.run.completed"
	EventAccountConfirmed = "account.confirmed"
)

// Event is a domain event published to the broker.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Package events holds broker-less publishers of domain events.
package events

import (
	"context"
	"encoding/json"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

var (
	_ model.EventPublisher = (*LogPublisher)(nil)
	_ model.EventPublisher = Nop{}
)

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *logger.Logger
}

func NewLogPublisher(logger *logger.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event model.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	p.logger.Info("Events: published",
		"type", event.Type,
		"occurred_at", event.OccurredAt,
		"payload", string(payload))
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) error { return nil }

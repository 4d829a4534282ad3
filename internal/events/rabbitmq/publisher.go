// Package rabbitmq publishes domain events to a durable topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ model.EventPublisher = (*Publisher)(nil)

// Publisher sends every event with its type as the routing key.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *logger.Logger
}

// Dial connects to url and declares exchange.
func Dial(url, exchange string, logger *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *logger.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger}, nil
}

func (p *Publisher) Publish(ctx context.Context, event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}

	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts.UTC(),
		Type:         event.Type,
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		p.logger.Error("RabbitMQ publisher: failed to publish",
			"type", event.Type,
			"error", err.Error())
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Package mailer wraps one outbound transport call with a uniform result.
package mailer

import (
	"context"
	"net/mail"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.Sender = (*Mailer)(nil)

// Options configure pacing and the per-send timeout.
type Options struct {
	Timeout        time.Duration
	SendsPerSecond float64
	Burst          int
}

// Mailer performs exactly one transport call per Send and never retries.
type Mailer struct {
	transport model.Transport
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    *logger.Logger
}

func New(transport model.Transport, opts Options, logger *logger.Logger) *Mailer {
	limit := rate.Inf
	if opts.SendsPerSecond > 0 {
		limit = rate.Limit(opts.SendsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Mailer{
		transport: transport,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   timeout,
		logger:    logger,
	}
}

func (m *Mailer) Send(ctx context.Context, msg model.Message) model.SendResult {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		m.logger.Warn("Mailer: invalid recipient address",
			"to", msg.To,
			"error", err.Error())
		return model.PermanentFailure("invalid recipient address: " + err.Error())
	}

	// Pacing waits on the caller's context; the timeout bounds the transport call only.
	if err := m.limiter.Wait(ctx); err != nil {
		return model.TransientFailure("send slot not acquired: " + err.Error())
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.transport.Send(sendCtx, msg)
	if err == nil && sendCtx.Err() != nil {
		err = sendCtx.Err()
	}
	result := Classify(err)

	switch result.Status {
	case model.SendSent:
		m.logger.Debug("Mailer: message sent",
			"transport", m.transport.Name(),
			"to", msg.To)
	case model.SendTransientFailure:
		m.logger.Warn("Mailer: transient send failure",
			"transport", m.transport.Name(),
			"to", msg.To,
			"reason", result.Reason)
	case model.SendPermanentFailure:
		m.logger.Warn("Mailer: permanent send failure",
			"transport", m.transport.Name(),
			"to", msg.To,
			"reason", result.Reason)
	}

	return result
}

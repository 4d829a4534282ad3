package mailer

import (
	"context"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.Transport = (*LogTransport)(nil)

// LogTransport logs emails instead of sending them. Useful for development.
type LogTransport struct {
	logger *logger.Logger
}

func NewLogTransport(logger *logger.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Name() string { return "log" }

func (t *LogTransport) Send(ctx context.Context, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.logger.Info("Log transport: email (dev mode, not sent)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text)
	return nil
}

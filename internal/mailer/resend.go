package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.Transport = (*ResendTransport)(nil)

type resendAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendTransport sends emails using the Resend API.
type ResendTransport struct {
	emails resendAPI
	from   string
}

func NewResendTransport(apiKey, from string) *ResendTransport {
	return &ResendTransport{
		emails: resend.NewClient(apiKey).Emails,
		from:   from,
	}
}

func (t *ResendTransport) Name() string { return "resend" }

func (t *ResendTransport) Send(ctx context.Context, msg model.Message) error {
	params := &resend.SendEmailRequest{
		From:    t.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := t.emails.SendWithContext(ctx, params); err != nil {
		return classifyResend(fmt.Errorf("resend: failed to send email: %w", err))
	}
	return nil
}

var resendTransientHints = []string{
	"rate limit",
	"too many requests",
	"429",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
}

var resendPermanentHints = []string{
	"validation",
	"invalid",
	"not verified",
	"unauthorized",
	"forbidden",
	"missing required",
}

// classifyResend tags API errors the generic classifier cannot recognise.
func classifyResend(err error) error {
	lower := strings.ToLower(err.Error())
	for _, hint := range resendTransientHints {
		if strings.Contains(lower, hint) {
			return &TransientError{Err: err}
		}
	}
	for _, hint := range resendPermanentHints {
		if strings.Contains(lower, hint) {
			return &PermanentError{Err: err}
		}
	}
	return err
}

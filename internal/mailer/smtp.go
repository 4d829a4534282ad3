package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.Transport = (*SMTPTransport)(nil)

// SMTPConfig holds the server address and credentials.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPTransport delivers one message per SMTP session.
type SMTPTransport struct {
	cfg    SMTPConfig
	dialer *net.Dialer
	// tlsConfig is used for STARTTLS when the server offers it.
	tlsConfig *tls.Config
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{
		cfg:       cfg,
		dialer:    &net.Dialer{Timeout: 8 * time.Second},
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
}

func (t *SMTPTransport) Name() string { return "smtp" }

func (t *SMTPTransport) Send(ctx context.Context, msg model.Message) error {
	body, err := t.buildMessage(msg)
	if err != nil {
		return &PermanentError{Err: fmt.Errorf("smtp: failed to build message: %w", err)}
	}

	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	conn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp: handshake: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(t.tlsConfig); err != nil {
			return fmt.Errorf("smtp: starttls: %w", err)
		}
	}

	if t.cfg.Username != "" {
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return authError(err)
		}
	}

	if err := c.Mail(t.cfg.From); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp: rcpt to: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: end data: %w", err)
	}

	return nil
}

// authError keeps 4xx replies transient; any other auth failure is a
// credentials problem that retrying cannot fix.
func authError(err error) error {
	wrapped := fmt.Errorf("smtp: auth: %w", err)
	if protoErr, ok := err.(*textproto.Error); ok && protoErr.Code >= 400 && protoErr.Code < 500 {
		return &TransientError{Err: wrapped}
	}
	return &PermanentError{Err: wrapped}
}

func (t *SMTPTransport) buildMessage(msg model.Message) ([]byte, error) {
	var buf bytes.Buffer

	from := t.cfg.From
	if t.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", t.cfg.FromName), t.cfg.From)
	}

	writeHeader := func(k, v string) {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	writeHeader("From", from)
	writeHeader("To", msg.To)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("Date", time.Now().Format(time.RFC1123Z))
	writeHeader("MIME-Version", "1.0")

	if msg.HTML == "" {
		writeHeader("Content-Type", `text/plain; charset="UTF-8"`)
		buf.WriteString("\r\n")
		buf.WriteString(msg.Text)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	writeHeader("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	parts := []struct {
		contentType string
		content     string
	}{
		{`text/plain; charset="UTF-8"`, msg.Text},
		{`text/html; charset="UTF-8"`, msg.HTML},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

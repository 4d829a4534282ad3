package mailer

import (
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"

	"github.com/dtroode/dailyphrase/internal/model"
)

// TransientError marks a transport error as worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a transport error as final.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// networkHints are fragments of messages produced by dropped or refused connections.
var networkHints = []string{
	"connection refused",
	"connection reset",
	"timed out",
	"timeout",
	"network is unreachable",
	"no route to host",
	"temporary failure",
	"broken pipe",
}

// Classify maps a transport error onto a send result. Unrecognised errors
// are permanent so they are never retried blindly.
func Classify(err error) model.SendResult {
	if err == nil {
		return model.Sent()
	}
	reason := err.Error()

	var transient *TransientError
	if errors.As(err, &transient) {
		return model.TransientFailure(reason)
	}
	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return model.PermanentFailure(reason)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.TransientFailure("send timed out: " + reason)
	}
	if errors.Is(err, context.Canceled) {
		return model.TransientFailure("send cancelled: " + reason)
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch {
		case protoErr.Code >= 400 && protoErr.Code < 500:
			return model.TransientFailure(reason)
		case protoErr.Code >= 500:
			return model.PermanentFailure(reason)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.TransientFailure(reason)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return model.TransientFailure(reason)
	}

	lower := strings.ToLower(reason)
	for _, hint := range networkHints {
		if strings.Contains(lower, hint) {
			return model.TransientFailure(reason)
		}
	}

	return model.PermanentFailure(reason)
}

package model

import "context"

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport performs exactly one outbound send.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// SendStatus enumerates send outcomes.
type SendStatus int

const (
	SendSent SendStatus = iota
	SendTransientFailure
	SendPermanentFailure
)

func (s SendStatus) String() string {
	switch s {
	case SendSent:
		return "sent"
	case SendTransientFailure:
		return "transient_failure"
	case SendPermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// SendResult is the uniform outcome of one send.
type SendResult struct {
	Status SendStatus
	Reason string
}

func Sent() SendResult { return SendResult{Status: SendSent} }

func TransientFailure(reason string) SendResult {
	return SendResult{Status: SendTransientFailure, Reason: reason}
}

func PermanentFailure(reason string) SendResult {
	return SendResult{Status: SendPermanentFailure, Reason: reason}
}

// Sender sends mail and classifies the outcome.
type Sender interface {
	Send(ctx context.Context, msg Message) SendResult
}

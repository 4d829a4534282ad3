package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DeliveryLog is the append-only record of send attempts.
type DeliveryLog interface {
	Append(ctx context.Context, attempt DeliveryAttempt) error
	// AttemptsFor returns attempts of one recipient ordered by attempt number.
	AttemptsFor(ctx context.Context, runID uuid.UUID, userID int64) ([]DeliveryAttempt, error)
	Summarize(ctx context.Context, runID uuid.UUID) (DeliveryCounts, error)
	// ExhaustedRecipients returns, ordered by id, the users of a run that
	// ended with ErrorKindExhausted.
	ExhaustedRecipients(ctx context.Context, runID uuid.UUID) ([]int64, error)
	// DailyStats aggregates attempts whose timestamp falls in [from, to).
	DailyStats(ctx context.Context, from, to time.Time) (DailyStats, error)
}

// Outcome is the result of one delivery attempt.
type Outcome string

const (
	OutcomeSent            Outcome = "sent"
	OutcomeFailedRetryable Outcome = "failed_retryable"
	OutcomeFailedPermanent Outcome = "failed_permanent"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSent, OutcomeFailedRetryable, OutcomeFailedPermanent:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further attempt follows o.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeSent, OutcomeFailedPermanent:
		return true
	case OutcomeFailedRetryable:
		return false
	default:
		return false
	}
}

// Error kinds recorded with failed attempts.
const (
	ErrorKindTransient      = "transient"
	ErrorKindPermanent      = "permanent"
	ErrorKindExhausted      = "retry_exhausted"
	ErrorKindNoPhrase       = "no_phrase_available"
	ErrorKindInvalidAddress = "invalid_address"
)

// DeliveryAttempt is one row of the delivery log.
type DeliveryAttempt struct {
	ID            uuid.UUID
	DispatchRunID uuid.UUID
	UserID        int64
	// PhraseID is nil when no phrase could be selected.
	PhraseID      *int64
	AttemptNumber int
	Outcome       Outcome
	ErrorKind     *string
	ErrorDetail   *string
	Timestamp     time.Time
}

// DeliveryCounts summarizes the attempts of one run.
type DeliveryCounts struct {
	Recipients int
	Sent       int
	Failed     int
	Attempts   int
	Retryable  int
}

// DailyStats are raw attempt counters for one day.
type DailyStats struct {
	Date     time.Time
	Total    int
	Sent     int
	Failed   int
	Retrying int
}

// SuccessRate is the percentage of sent attempts, 0 when nothing was attempted.
func (s DailyStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Sent) / float64(s.Total) * 100
}

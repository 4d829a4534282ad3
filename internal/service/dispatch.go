package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

const retryExhaustedDetail = "retry budget exhausted"

// MessageBuilder renders the daily email of a recipient.
type MessageBuilder interface {
	Phrase(user model.User, phrase model.Phrase, date time.Time) (model.Message, error)
}

// DispatchConfig bounds a run.
type DispatchConfig struct {
	MaxAttempts int
	Workers     int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// RunCompletedPayload is the payload of the dispatch.run.completed event.
type RunCompletedPayload struct {
	RunID                 uuid.UUID `json:"run_id"`
	ScheduledFor          string    `json:"scheduled_for"`
	TotalRecipients       int       `json:"total_recipients"`
	TotalSent             int       `json:"total_sent"`
	TotalFailed           int       `json:"total_failed"`
	PermanentlyFailedUIDs []int64   `json:"permanently_failed_user_ids"`
}

// Dispatch runs the daily send pipeline.
type Dispatch struct {
	recipients *RecipientSelector
	phrases    *PhraseSelector
	builder    MessageBuilder
	sender     model.Sender
	log        model.DeliveryLog
	runs       model.DispatchRunStore
	events     model.EventPublisher
	archive    model.Storage
	cfg        DispatchConfig
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *logger.Logger
}

func NewDispatch(
	recipients *RecipientSelector,
	phrases *PhraseSelector,
	builder MessageBuilder,
	sender model.Sender,
	log model.DeliveryLog,
	runs model.DispatchRunStore,
	events model.EventPublisher,
	cfg DispatchConfig,
	logger *logger.Logger,
) *Dispatch {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Dispatch{
		recipients: recipients,
		phrases:    phrases,
		builder:    builder,
		sender:     sender,
		log:        log,
		runs:       runs,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
		sleep:      sleepContext,
		logger:     logger,
	}
}

// WithArchive stores a JSON copy of every completed run summary.
func (d *Dispatch) WithArchive(storage model.Storage) *Dispatch {
	d.archive = storage
	return d
}

// recipientSource computes the recipient pool of a run for date.
type recipientSource func(ctx context.Context, date time.Time) ([]model.User, error)

type recipientOutcome struct {
	userID   int64
	terminal model.Outcome
}

// RunOnce executes one dispatch run for date. Every call creates a new run,
// even when date already has a completed one. If ctx is cancelled or the
// delivery log cannot be written, the run is left without completedAt and
// marked abandoned.
func (d *Dispatch) RunOnce(ctx context.Context, date time.Time) (model.DispatchRunSummary, error) {
	return d.execute(ctx, date, d.recipients.SelectForRun)
}

// RetryExhausted starts a new run for the date of runID whose pool is the
// recipients of runID that ran out of attempts and are still eligible.
func (d *Dispatch) RetryExhausted(ctx context.Context, runID uuid.UUID) (model.DispatchRunSummary, error) {
	prev, err := d.runs.GetByID(ctx, runID)
	if err != nil {
		return model.DispatchRunSummary{}, fmt.Errorf("failed to get dispatch run: %w", err)
	}
	if !prev.Completed() {
		return model.DispatchRunSummary{}, model.ErrRunIncomplete
	}

	ids, err := d.log.ExhaustedRecipients(ctx, runID)
	if err != nil {
		return model.DispatchRunSummary{}, fmt.Errorf("failed to get exhausted recipients: %w", err)
	}

	d.logger.Info("Dispatch: retrying exhausted recipients",
		"previous_run_id", runID,
		"recipients", len(ids))

	return d.execute(ctx, prev.ScheduledFor, func(ctx context.Context, date time.Time) ([]model.User, error) {
		return d.recipients.SelectUsers(ctx, date, ids)
	})
}

func (d *Dispatch) execute(ctx context.Context, date time.Time, selectRecipients recipientSource) (model.DispatchRunSummary, error) {
	summary, run, err := d.run(ctx, date, selectRecipients)
	if err != nil && run != nil {
		d.abandon(ctx, *run, err)
	}
	return summary, err
}

func (d *Dispatch) abandon(ctx context.Context, run model.DispatchRun, cause error) {
	if err := d.runs.Abandon(context.WithoutCancel(ctx), run.ID, d.now(), cause.Error()); err != nil {
		d.logger.Error("Dispatch: failed to mark run abandoned",
			"run_id", run.ID,
			"error", err.Error())
	}
}

// run returns the created run alongside any error so RunOnce can mark it.
func (d *Dispatch) run(ctx context.Context, date time.Time, selectRecipients recipientSource) (model.DispatchRunSummary, *model.DispatchRun, error) {
	y, m, day := date.Date()
	date = time.Date(y, m, day, 0, 0, 0, 0, date.Location())

	run := model.DispatchRun{
		ID:           uuid.New(),
		ScheduledFor: date,
		StartedAt:    d.now(),
	}
	summary := model.DispatchRunSummary{RunID: run.ID, ScheduledFor: date}

	if err := d.runs.Create(ctx, run); err != nil {
		return summary, nil, fmt.Errorf("failed to create dispatch run: %w", err)
	}

	d.logger.Info("Dispatch: run started",
		"run_id", run.ID,
		"scheduled_for", date.Format(time.DateOnly))

	recipients, err := selectRecipients(ctx, date)
	if err != nil {
		d.logger.Error("Dispatch: failed to select recipients",
			"run_id", run.ID,
			"error", err.Error())
		return summary, &run, fmt.Errorf("failed to select recipients: %w", err)
	}

	outcomes := make([]recipientOutcome, len(recipients))
	if len(recipients) > 0 {
		book, err := d.phrases.Load(ctx)
		if err != nil {
			d.logger.Error("Dispatch: failed to load phrases",
				"run_id", run.ID,
				"error", err.Error())
			return summary, &run, fmt.Errorf("failed to load phrases: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.cfg.Workers)
		for i, user := range recipients {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				out, err := d.deliver(gctx, run, book, user, date)
				outcomes[i] = out
				return err
			})
		}
		if err := g.Wait(); err != nil {
			d.logger.Error("Dispatch: run abandoned",
				"run_id", run.ID,
				"error", err.Error())
			return summary, &run, fmt.Errorf("dispatch run %s abandoned: %w", run.ID, err)
		}
		if err := ctx.Err(); err != nil {
			return summary, &run, fmt.Errorf("dispatch run %s abandoned: %w", run.ID, err)
		}
	}

	for _, out := range outcomes {
		switch out.terminal {
		case model.OutcomeSent:
			summary.TotalSent++
		case model.OutcomeFailedPermanent:
			summary.TotalFailed++
			summary.PermanentlyFailedUIDs = append(summary.PermanentlyFailedUIDs, out.userID)
		case model.OutcomeFailedRetryable:
			return summary, &run, fmt.Errorf("recipient %d has no terminal attempt", out.userID)
		}
	}
	sort.Slice(summary.PermanentlyFailedUIDs, func(i, j int) bool {
		return summary.PermanentlyFailedUIDs[i] < summary.PermanentlyFailedUIDs[j]
	})
	summary.TotalRecipients = len(recipients)

	completed := d.now()
	run.CompletedAt = &completed
	run.TotalRecipients = summary.TotalRecipients
	run.TotalSent = summary.TotalSent
	run.TotalFailed = summary.TotalFailed
	if err := d.runs.Complete(ctx, run); err != nil {
		return summary, &run, fmt.Errorf("failed to complete dispatch run: %w", err)
	}

	d.logger.Info("Dispatch: run completed",
		"run_id", run.ID,
		"recipients", summary.TotalRecipients,
		"sent", summary.TotalSent,
		"failed", summary.TotalFailed,
		"duration", completed.Sub(run.StartedAt))

	d.announce(ctx, summary)
	return summary, &run, nil
}

// deliver processes one recipient. It returns an error only when the run
// must be abandoned; recipient failures are recorded as attempts.
func (d *Dispatch) deliver(ctx context.Context, run model.DispatchRun, book *PhraseBook, user model.User, date time.Time) (recipientOutcome, error) {
	out := recipientOutcome{userID: user.ID}

	phrase, err := book.SelectFor(user, date)
	if err != nil {
		kind := model.ErrorKindNoPhrase
		if !errors.Is(err, model.ErrNoPhraseAvailable) {
			kind = model.ErrorKindPermanent
		}
		out.terminal = model.OutcomeFailedPermanent
		return out, d.record(ctx, run, user.ID, nil, 1, out.terminal, kind, err.Error())
	}
	phraseID := phrase.ID

	msg, err := d.builder.Phrase(user, phrase, date)
	if err != nil {
		out.terminal = model.OutcomeFailedPermanent
		return out, d.record(ctx, run, user.ID, &phraseID, 1, out.terminal, model.ErrorKindPermanent, err.Error())
	}

	backoff := d.newBackoff()
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		res := d.sender.Send(ctx, msg)
		if res.Status != model.SendSent && ctx.Err() != nil {
			// Interrupted, not a delivery verdict.
			return out, ctx.Err()
		}

		var (
			outcome model.Outcome
			kind    string
			detail  string
		)
		switch res.Status {
		case model.SendSent:
			outcome = model.OutcomeSent
		case model.SendPermanentFailure:
			outcome, kind, detail = model.OutcomeFailedPermanent, model.ErrorKindPermanent, res.Reason
		case model.SendTransientFailure:
			if attempt == d.cfg.MaxAttempts {
				outcome, kind, detail = model.OutcomeFailedPermanent, model.ErrorKindExhausted, retryExhaustedDetail+": "+res.Reason
			} else {
				outcome, kind, detail = model.OutcomeFailedRetryable, model.ErrorKindTransient, res.Reason
			}
		default:
			outcome, kind, detail = model.OutcomeFailedPermanent, model.ErrorKindPermanent, "unknown send status "+res.Status.String()
		}

		if err := d.record(ctx, run, user.ID, &phraseID, attempt, outcome, kind, detail); err != nil {
			return out, err
		}
		if outcome.Terminal() {
			out.terminal = outcome
			return out, nil
		}

		delay, _ := backoff.Next()
		d.logger.Debug("Dispatch: retrying recipient",
			"run_id", run.ID,
			"user_id", user.ID,
			"attempt", attempt,
			"delay", delay)
		if err := d.sleep(ctx, delay); err != nil {
			return out, err
		}
	}

	return out, fmt.Errorf("recipient %d: attempts exhausted without a terminal outcome", user.ID)
}

func (d *Dispatch) record(ctx context.Context, run model.DispatchRun, userID int64, phraseID *int64, attempt int, outcome model.Outcome, kind, detail string) error {
	a := model.DeliveryAttempt{
		ID:            uuid.New(),
		DispatchRunID: run.ID,
		UserID:        userID,
		PhraseID:      phraseID,
		AttemptNumber: attempt,
		Outcome:       outcome,
		Timestamp:     d.now(),
	}
	if kind != "" {
		a.ErrorKind = &kind
	}
	if detail != "" {
		a.ErrorDetail = &detail
	}

	if err := d.log.Append(ctx, a); err != nil {
		d.logger.Error("Dispatch: failed to record attempt",
			"run_id", run.ID,
			"user_id", userID,
			"attempt", attempt,
			"error", err.Error())
		return fmt.Errorf("failed to record attempt %d of user %d: %w", attempt, userID, err)
	}
	return nil
}

func (d *Dispatch) newBackoff() retry.Backoff {
	if d.cfg.BackoffBase <= 0 {
		return retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	b := retry.NewExponential(d.cfg.BackoffBase)
	if d.cfg.BackoffMax > 0 {
		b = retry.WithCappedDuration(d.cfg.BackoffMax, b)
	}
	return b
}

// announce publishes and archives a completed run. Both are best effort.
func (d *Dispatch) announce(ctx context.Context, summary model.DispatchRunSummary) {
	payload := RunCompletedPayload{
		RunID:                 summary.RunID,
		ScheduledFor:          summary.ScheduledFor.Format(time.DateOnly),
		TotalRecipients:       summary.TotalRecipients,
		TotalSent:             summary.TotalSent,
		TotalFailed:           summary.TotalFailed,
		PermanentlyFailedUIDs: summary.PermanentlyFailedUIDs,
	}
	if payload.PermanentlyFailedUIDs == nil {
		payload.PermanentlyFailedUIDs = []int64{}
	}

	if d.events != nil {
		event := model.Event{Type: model.EventRunCompleted, OccurredAt: d.now(), Payload: payload}
		if err := d.events.Publish(ctx, event); err != nil {
			d.logger.Warn("Dispatch: failed to publish run event",
				"run_id", summary.RunID,
				"error", err.Error())
		}
	}

	if d.archive != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			d.logger.Warn("Dispatch: failed to encode run summary", "error", err.Error())
			return
		}
		if err := d.archive.Upload(ctx, ArchiveKey(summary), bytes.NewReader(body)); err != nil {
			d.logger.Warn("Dispatch: failed to archive run summary",
				"run_id", summary.RunID,
				"error", err.Error())
		}
	}
}

// ArchiveKey is the object key of an archived run summary.
func ArchiveKey(summary model.DispatchRunSummary) string {
	return fmt.Sprintf("runs/%s/%s.json", summary.ScheduledFor.Format(time.DateOnly), summary.RunID)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

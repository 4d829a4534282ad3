package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.DeliveryLog = (*DeliveryRepository)(nil)

// DeliveryRepository is append-only: it never updates or deletes attempts.
type DeliveryRepository struct {
	db *Connection
}

func NewDeliveryRepository(db *Connection) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Append(ctx context.Context, a model.DeliveryAttempt) error {
	const query = `
        INSERT INTO delivery_attempts (
            id, dispatch_run_id, user_id, phrase_id, attempt_number, outcome, error_kind, error_detail, attempted_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		a.ID, a.DispatchRunID, a.UserID, a.PhraseID, a.AttemptNumber, a.Outcome,
		a.ErrorKind, a.ErrorDetail, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append delivery attempt: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) AttemptsFor(ctx context.Context, runID uuid.UUID, userID int64) ([]model.DeliveryAttempt, error) {
	const query = `
        SELECT id, dispatch_run_id, user_id, phrase_id, attempt_number, outcome, error_kind, error_detail, attempted_at
        FROM delivery_attempts
        WHERE dispatch_run_id = $1 AND user_id = $2
        ORDER BY attempt_number
    `
	rows, err := r.db.DB.QueryContext(ctx, query, runID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.DeliveryAttempt
	for rows.Next() {
		var a model.DeliveryAttempt
		err := rows.Scan(&a.ID, &a.DispatchRunID, &a.UserID, &a.PhraseID, &a.AttemptNumber,
			&a.Outcome, &a.ErrorKind, &a.ErrorDetail, &a.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delivery attempts: %w", err)
	}

	return attempts, nil
}

func (r *DeliveryRepository) Summarize(ctx context.Context, runID uuid.UUID) (model.DeliveryCounts, error) {
	const query = `
        SELECT
            COUNT(DISTINCT user_id),
            COUNT(DISTINCT user_id) FILTER (WHERE outcome = 'sent'),
            COUNT(DISTINCT user_id) FILTER (WHERE outcome = 'failed_permanent'),
            COUNT(*),
            COUNT(*) FILTER (WHERE outcome = 'failed_retryable')
        FROM delivery_attempts WHERE dispatch_run_id = $1
    `
	var c model.DeliveryCounts
	err := r.db.DB.QueryRowContext(ctx, query, runID).Scan(
		&c.Recipients, &c.Sent, &c.Failed, &c.Attempts, &c.Retryable,
	)
	if err != nil {
		return model.DeliveryCounts{}, fmt.Errorf("failed to summarize dispatch run: %w", err)
	}
	return c, nil
}

func (r *DeliveryRepository) ExhaustedRecipients(ctx context.Context, runID uuid.UUID) ([]int64, error) {
	const query = `
        SELECT DISTINCT user_id FROM delivery_attempts
        WHERE dispatch_run_id = $1 AND outcome = 'failed_permanent' AND error_kind = $2
        ORDER BY user_id
    `
	rows, err := r.db.DB.QueryContext(ctx, query, runID, model.ErrorKindExhausted)
	if err != nil {
		return nil, fmt.Errorf("failed to query exhausted recipients: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan exhausted recipient: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exhausted recipients: %w", err)
	}
	return ids, nil
}

func (r *DeliveryRepository) DailyStats(ctx context.Context, from, to time.Time) (model.DailyStats, error) {
	const query = `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE outcome = 'sent'),
            COUNT(*) FILTER (WHERE outcome = 'failed_permanent'),
            COUNT(*) FILTER (WHERE outcome = 'failed_retryable')
        FROM delivery_attempts WHERE attempted_at >= $1 AND attempted_at < $2
    `
	stats := model.DailyStats{Date: from}
	err := r.db.DB.QueryRowContext(ctx, query, from, to).Scan(
		&stats.Total, &stats.Sent, &stats.Failed, &stats.Retrying,
	)
	if err != nil {
		return model.DailyStats{}, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return stats, nil
}

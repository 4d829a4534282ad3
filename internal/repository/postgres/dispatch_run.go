package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.DispatchRunStore = (*DispatchRunRepository)(nil)

const runColumns = `id, scheduled_for, started_at, completed_at, total_recipients, total_sent, total_failed, abandoned_at, abandon_reason`

type DispatchRunRepository struct {
	db *Connection
}

func NewDispatchRunRepository(db *Connection) *DispatchRunRepository {
	return &DispatchRunRepository{db: db}
}

func (r *DispatchRunRepository) Create(ctx context.Context, run model.DispatchRun) error {
	const query = `
        INSERT INTO dispatch_runs (` + runColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `
	_, err := r.db.DB.ExecContext(ctx, query,
		run.ID, run.ScheduledFor, run.StartedAt, run.CompletedAt,
		run.TotalRecipients, run.TotalSent, run.TotalFailed,
		run.AbandonedAt, run.AbandonReason,
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatch run: %w", err)
	}
	return nil
}

func (r *DispatchRunRepository) Complete(ctx context.Context, run model.DispatchRun) error {
	const query = `
        UPDATE dispatch_runs
        SET completed_at = $2, total_recipients = $3, total_sent = $4, total_failed = $5
        WHERE id = $1
    `
	res, err := r.db.DB.ExecContext(ctx, query,
		run.ID, run.CompletedAt, run.TotalRecipients, run.TotalSent, run.TotalFailed,
	)
	if err != nil {
		return fmt.Errorf("failed to complete dispatch run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete dispatch run: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *DispatchRunRepository) Abandon(ctx context.Context, id uuid.UUID, at time.Time, reason string) error {
	const query = `
        UPDATE dispatch_runs SET abandoned_at = $2, abandon_reason = $3
        WHERE id = $1 AND completed_at IS NULL
    `
	res, err := r.db.DB.ExecContext(ctx, query, id, at, reason)
	if err != nil {
		return fmt.Errorf("failed to abandon dispatch run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to abandon dispatch run: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *DispatchRunRepository) GetByID(ctx context.Context, id uuid.UUID) (model.DispatchRun, error) {
	const query = `SELECT ` + runColumns + ` FROM dispatch_runs WHERE id = $1`

	run, err := scanRun(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DispatchRun{}, model.ErrNotFound
		}
		return model.DispatchRun{}, fmt.Errorf("failed to get dispatch run: %w", err)
	}
	return run, nil
}

func (r *DispatchRunRepository) Latest(ctx context.Context) (model.DispatchRun, error) {
	const query = `SELECT ` + runColumns + ` FROM dispatch_runs ORDER BY started_at DESC LIMIT 1`

	run, err := scanRun(r.db.DB.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DispatchRun{}, model.ErrNotFound
		}
		return model.DispatchRun{}, fmt.Errorf("failed to get latest dispatch run: %w", err)
	}
	return run, nil
}

func scanRun(row rowScanner) (model.DispatchRun, error) {
	var run model.DispatchRun
	err := row.Scan(&run.ID, &run.ScheduledFor, &run.StartedAt, &run.CompletedAt,
		&run.TotalRecipients, &run.TotalSent, &run.TotalFailed, &run.AbandonedAt, &run.AbandonReason)
	return run, err
}

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/dailyphrase/internal/model"
)

var runRowColumns = []string{"id", "scheduled_for", "started_at", "completed_at", "total_recipients", "total_sent", "total_failed", "abandoned_at", "abandon_reason"}

func TestDispatchRunRepository_CreateAndComplete(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewDispatchRunRepository(conn)
	now := time.Now()
	run := model.DispatchRun{ID: uuid.New(), ScheduledFor: now.Truncate(24 * time.Hour), StartedAt: now}

	mock.ExpectExec(`INSERT INTO dispatch_runs`).
		WithArgs(run.ID, run.ScheduledFor, run.StartedAt, nil, 0, 0, 0, nil, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), run))

	completed := now.Add(time.Minute)
	run.CompletedAt = &completed
	run.TotalRecipients, run.TotalSent, run.TotalFailed = 3, 2, 1

	mock.ExpectExec(`UPDATE dispatch_runs`).
		WithArgs(run.ID, completed, 3, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Complete(context.Background(), run))
}

func TestDispatchRunRepository_Complete_Missing(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewDispatchRunRepository(conn)
	now := time.Now()

	mock.ExpectExec(`UPDATE dispatch_runs`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Complete(context.Background(), model.DispatchRun{ID: uuid.New(), CompletedAt: &now})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDispatchRunRepository_Abandon(t *testing.T) {
	id := uuid.New()
	at := time.Now()

	t.Run("incomplete run", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewDispatchRunRepository(conn)

		mock.ExpectExec(`UPDATE dispatch_runs SET abandoned_at = \$2, abandon_reason = \$3`).
			WithArgs(id, at, "failed to select recipients").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Abandon(context.Background(), id, at, "failed to select recipients"))
	})

	t.Run("completed or missing", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewDispatchRunRepository(conn)

		mock.ExpectExec(`UPDATE dispatch_runs SET abandoned_at`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, repo.Abandon(context.Background(), id, at, "boom"), model.ErrNotFound)
	})
}

func TestDispatchRunRepository_Latest(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewDispatchRunRepository(conn)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM dispatch_runs ORDER BY started_at DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(runRowColumns).AddRow(id.String(), now, now, nil, 0, 0, 0, nil, ""))

	run, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.False(t, run.Completed())
	assert.False(t, run.Abandoned())
}

func TestDispatchRunRepository_GetByID_NotFound(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewDispatchRunRepository(conn)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM dispatch_runs WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	require.ErrorIs(t, err, model.ErrNotFound)
}

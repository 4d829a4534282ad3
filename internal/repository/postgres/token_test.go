package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/dailyphrase/internal/model"
)

var tokenRowColumns = []string{"id", "user_id", "purpose", "secret_hash", "issued_at", "expires_at", "consumed_at"}

func TestTokenRepository_Replace(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewTokenRepository(conn)
	now := time.Now()

	token := model.ConfirmationToken{
		ID:         uuid.New(),
		UserID:     9,
		Purpose:    model.PurposeSignupConfirmation,
		SecretHash: []byte("hash"),
		IssuedAt:   now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(tokenLockKey(9, model.PurposeSignupConfirmation)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE confirmation_tokens SET expires_at = \$3`).
		WithArgs(int64(9), "signup_confirmation", now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO confirmation_tokens`).
		WithArgs(token.ID, int64(9), "signup_confirmation", []byte("hash"), now, token.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Replace(context.Background(), token))
}

func TestTokenRepository_Replace_InsertFails(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewTokenRepository(conn)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE confirmation_tokens`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO confirmation_tokens`).WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), model.ConfirmationToken{
		UserID: 1, Purpose: model.PurposePasswordReset, SecretHash: []byte("h"),
		IssuedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestTokenRepository_Replace_LockFails(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewTokenRepository(conn)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), model.ConfirmationToken{
		UserID: 1, Purpose: model.PurposeSignupConfirmation, SecretHash: []byte("h"),
		IssuedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	require.ErrorContains(t, err, "lock timeout")
}

func TestTokenLockKey(t *testing.T) {
	assert.Equal(t, tokenLockKey(1, model.PurposeSignupConfirmation), tokenLockKey(1, model.PurposeSignupConfirmation))
	assert.NotEqual(t, tokenLockKey(1, model.PurposeSignupConfirmation), tokenLockKey(1, model.PurposePasswordReset))
	assert.NotEqual(t, tokenLockKey(1, model.PurposeSignupConfirmation), tokenLockKey(2, model.PurposeSignupConfirmation))
}

func TestTokenRepository_Consume(t *testing.T) {
	now := time.Now()
	id := uuid.New()
	hash := []byte("secret-hash")

	t.Run("wins the update", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewTokenRepository(conn)

		mock.ExpectQuery(`UPDATE confirmation_tokens SET consumed_at = \$3`).
			WithArgs(hash, "signup_confirmation", now).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).
				AddRow(id.String(), int64(5), "signup_confirmation", hash, now.Add(-time.Hour), now.Add(time.Hour), now))

		token, err := repo.Consume(context.Background(), hash, model.PurposeSignupConfirmation, now)
		require.NoError(t, err)
		assert.Equal(t, id, token.ID)
		assert.Equal(t, int64(5), token.UserID)
		require.NotNil(t, token.ConsumedAt)
	})

	t.Run("already consumed", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewTokenRepository(conn)
		consumed := now.Add(-time.Minute)

		mock.ExpectQuery(`UPDATE confirmation_tokens SET consumed_at`).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns))
		mock.ExpectQuery(`SELECT .+ FROM confirmation_tokens`).
			WithArgs(hash, "signup_confirmation").
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).
				AddRow(id.String(), int64(5), "signup_confirmation", hash, now.Add(-time.Hour), now.Add(time.Hour), consumed))

		_, err := repo.Consume(context.Background(), hash, model.PurposeSignupConfirmation, now)
		require.ErrorIs(t, err, model.ErrTokenAlreadyConsumed)
	})

	t.Run("expired", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewTokenRepository(conn)

		mock.ExpectQuery(`UPDATE confirmation_tokens SET consumed_at`).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns))
		mock.ExpectQuery(`SELECT .+ FROM confirmation_tokens`).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).
				AddRow(id.String(), int64(5), "signup_confirmation", hash, now.Add(-25*time.Hour), now.Add(-time.Hour), nil))

		_, err := repo.Consume(context.Background(), hash, model.PurposeSignupConfirmation, now)
		require.ErrorIs(t, err, model.ErrTokenExpired)
	})

	t.Run("unknown secret", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewTokenRepository(conn)

		mock.ExpectQuery(`UPDATE confirmation_tokens SET consumed_at`).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns))
		mock.ExpectQuery(`SELECT .+ FROM confirmation_tokens`).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns))

		_, err := repo.Consume(context.Background(), hash, model.PurposeSignupConfirmation, now)
		require.ErrorIs(t, err, model.ErrTokenNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewTokenRepository(conn)

		mock.ExpectQuery(`UPDATE confirmation_tokens SET consumed_at`).
			WillReturnError(errors.New("conn reset"))

		_, err := repo.Consume(context.Background(), hash, model.PurposeSignupConfirmation, now)
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrTokenNotFound)
	})
}

func TestTokenRepository_Release(t *testing.T) {
	id := uuid.New()
	consumedAt := time.Now()

	t.Run("released", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewTokenRepository(conn)

		mock.ExpectExec(`UPDATE confirmation_tokens SET consumed_at = NULL`).
			WithArgs(id, consumedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Release(context.Background(), id, consumedAt))
	})

	t.Run("no longer held", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		repo := NewTokenRepository(conn)

		mock.ExpectExec(`UPDATE confirmation_tokens SET consumed_at = NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, repo.Release(context.Background(), id, consumedAt), model.ErrTokenNotFound)
	})
}

func TestTokenRepository_Purge(t *testing.T) {
	conn, mock := newMockConnection(t)
	repo := NewTokenRepository(conn)
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	mock.ExpectExec(`DELETE FROM confirmation_tokens`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.Purge(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

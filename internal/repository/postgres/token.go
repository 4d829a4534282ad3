package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.ConfirmationTokenStore = (*TokenRepository)(nil)

const tokenColumns = `id, user_id, purpose, secret_hash, issued_at, expires_at, consumed_at`

type TokenRepository struct {
	db *Connection
}

func NewTokenRepository(db *Connection) *TokenRepository {
	return &TokenRepository{db: db}
}

// Replace serializes issuers of the same user and purpose on an advisory lock
// so the expire-then-insert never leaves two usable tokens.
func (r *TokenRepository) Replace(ctx context.Context, token model.ConfirmationToken) error {
	const lockQuery = `SELECT pg_advisory_xact_lock($1)`
	const expireQuery = `
        UPDATE confirmation_tokens SET expires_at = $3
        WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
    `
	const insertQuery = `
        INSERT INTO confirmation_tokens (id, user_id, purpose, secret_hash, issued_at, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6)
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, lockQuery, tokenLockKey(token.UserID, token.Purpose)); err != nil {
		return fmt.Errorf("failed to lock token issuance: %w", err)
	}

	if _, err := tx.ExecContext(ctx, expireQuery, token.UserID, token.Purpose, token.IssuedAt); err != nil {
		return fmt.Errorf("failed to expire outstanding tokens: %w", err)
	}

	_, err = tx.ExecContext(ctx, insertQuery,
		token.ID, token.UserID, token.Purpose, token.SecretHash, token.IssuedAt, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create confirmation token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token replacement: %w", err)
	}
	return nil
}

func (r *TokenRepository) Consume(ctx context.Context, secretHash []byte, purpose model.TokenPurpose, now time.Time) (model.ConfirmationToken, error) {
	const consumeQuery = `
        UPDATE confirmation_tokens SET consumed_at = $3
        WHERE secret_hash = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
        RETURNING ` + tokenColumns
	const lookupQuery = `
        SELECT ` + tokenColumns + ` FROM confirmation_tokens
        WHERE secret_hash = $1 AND purpose = $2
    `

	token, err := scanToken(r.db.DB.QueryRowContext(ctx, consumeQuery, secretHash, purpose, now))
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.ConfirmationToken{}, fmt.Errorf("failed to consume confirmation token: %w", err)
	}

	// Lost the update: find out why.
	token, err = scanToken(r.db.DB.QueryRowContext(ctx, lookupQuery, secretHash, purpose))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ConfirmationToken{}, model.ErrTokenNotFound
		}
		return model.ConfirmationToken{}, fmt.Errorf("failed to get confirmation token: %w", err)
	}
	if stateErr := token.State(now); stateErr != nil {
		return model.ConfirmationToken{}, stateErr
	}
	return model.ConfirmationToken{}, model.ErrTokenAlreadyConsumed
}

func (r *TokenRepository) Release(ctx context.Context, id uuid.UUID, consumedAt time.Time) error {
	const query = `
        UPDATE confirmation_tokens SET consumed_at = NULL
        WHERE id = $1 AND consumed_at = $2
    `
	res, err := r.db.DB.ExecContext(ctx, query, id, consumedAt)
	if err != nil {
		return fmt.Errorf("failed to release confirmation token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to release confirmation token: %w", err)
	}
	if n == 0 {
		return model.ErrTokenNotFound
	}
	return nil
}

func (r *TokenRepository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	const query = `
        DELETE FROM confirmation_tokens
        WHERE (consumed_at IS NOT NULL AND consumed_at < $1) OR expires_at < $1
    `
	res, err := r.db.DB.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge confirmation tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge confirmation tokens: %w", err)
	}
	return n, nil
}

func scanToken(row rowScanner) (model.ConfirmationToken, error) {
	var t model.ConfirmationToken
	err := row.Scan(&t.ID, &t.UserID, &t.Purpose, &t.SecretHash, &t.IssuedAt, &t.ExpiresAt, &t.ConsumedAt)
	return t, err
}

func tokenLockKey(userID int64, purpose model.TokenPurpose) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "confirmation_tokens:%d:%s", userID, purpose)
	return int64(h.Sum64())
}

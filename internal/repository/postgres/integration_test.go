//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/dailyphrase/internal/model"
	repo "github.com/dtroode/dailyphrase/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "dailyphrase_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/dailyphrase_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func seedUser(t *testing.T, conn *repo.Connection, email string, status model.UserStatus) int64 {
	t.Helper()
	var id int64
	err := conn.DB.QueryRowContext(context.Background(),
		`INSERT INTO users (email, name, status, role, locked_fields) VALUES ($1, $2, $3, 'user', '{email}') RETURNING id`,
		email, email, string(status),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestRepositories_Integration(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	users := repo.NewUserRepository(conn)
	tokens := repo.NewTokenRepository(conn)

	t.Run("user_repository", func(t *testing.T) {
		pending := seedUser(t, conn, "pending@example.com", model.StatusPendingConfirmation)
		active := seedUser(t, conn, "active@example.com", model.StatusActive)

		got, err := users.GetByEmail(ctx, "pending@example.com")
		require.NoError(t, err)
		assert.Equal(t, pending, got.ID)
		assert.True(t, got.LockedFields.Locked("email"))

		list, err := users.ActiveUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, active, list[0].ID)

		require.NoError(t, users.SetStatus(ctx, pending, model.StatusActive))
		list, err = users.ActiveUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("token_replace_and_consume", func(t *testing.T) {
		userID := seedUser(t, conn, "token@example.com", model.StatusPendingConfirmation)
		now := time.Now().UTC().Truncate(time.Microsecond)

		first := model.ConfirmationToken{
			ID: uuid.New(), UserID: userID, Purpose: model.PurposeSignupConfirmation,
			SecretHash: []byte("first"), IssuedAt: now, ExpiresAt: now.Add(24 * time.Hour),
		}
		require.NoError(t, tokens.Replace(ctx, first))

		second := first
		second.ID = uuid.New()
		second.SecretHash = []byte("second")
		second.IssuedAt = now.Add(time.Second)
		second.ExpiresAt = second.IssuedAt.Add(24 * time.Hour)
		require.NoError(t, tokens.Replace(ctx, second))

		_, err := tokens.Consume(ctx, []byte("first"), model.PurposeSignupConfirmation, now.Add(2*time.Second))
		require.ErrorIs(t, err, model.ErrTokenExpired)

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = tokens.Consume(ctx, []byte("second"), model.PurposeSignupConfirmation, now.Add(2*time.Second))
			}(i)
		}
		wg.Wait()

		var wins, consumed int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, model.ErrTokenAlreadyConsumed):
				consumed++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, consumed)

		_, err = tokens.Consume(ctx, []byte("missing"), model.PurposeSignupConfirmation, now)
		require.ErrorIs(t, err, model.ErrTokenNotFound)

		purged, err := tokens.Purge(ctx, now.Add(48*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), purged)
	})

	t.Run("token_concurrent_replace", func(t *testing.T) {
		userID := seedUser(t, conn, "race@example.com", model.StatusPendingConfirmation)
		now := time.Now().UTC().Truncate(time.Microsecond)

		const issuers = 8
		var wg sync.WaitGroup
		errs := make([]error, issuers)
		for i := 0; i < issuers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = tokens.Replace(ctx, model.ConfirmationToken{
					ID: uuid.New(), UserID: userID, Purpose: model.PurposePasswordReset,
					SecretHash: []byte(fmt.Sprintf("race-%d", i)), IssuedAt: now, ExpiresAt: now.Add(time.Hour),
				})
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}

		var usable int
		err := conn.DB.QueryRowContext(ctx,
			`SELECT count(*) FROM confirmation_tokens
			 WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3`,
			userID, string(model.PurposePasswordReset), now,
		).Scan(&usable)
		require.NoError(t, err)
		assert.Equal(t, 1, usable)
	})

	t.Run("token_release", func(t *testing.T) {
		userID := seedUser(t, conn, "release@example.com", model.StatusPendingConfirmation)
		now := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, tokens.Replace(ctx, model.ConfirmationToken{
			ID: uuid.New(), UserID: userID, Purpose: model.PurposeSignupConfirmation,
			SecretHash: []byte("release"), IssuedAt: now, ExpiresAt: now.Add(time.Hour),
		}))

		token, err := tokens.Consume(ctx, []byte("release"), model.PurposeSignupConfirmation, now.Add(time.Second))
		require.NoError(t, err)
		require.NotNil(t, token.ConsumedAt)
		require.NoError(t, tokens.Release(ctx, token.ID, *token.ConsumedAt))

		_, err = tokens.Consume(ctx, []byte("release"), model.PurposeSignupConfirmation, now.Add(2*time.Second))
		require.NoError(t, err)
	})

	t.Run("dispatch_and_delivery", func(t *testing.T) {
		runs := repo.NewDispatchRunRepository(conn)
		log := repo.NewDeliveryRepository(conn)
		phrases := repo.NewPhraseRepository(conn)

		_, err := conn.DB.ExecContext(ctx,
			`INSERT INTO phrases (text, meaning, example, category, active, day_of_year) VALUES
			 ('Break the ice', 'Start a conversation', 'A joke broke the ice.', 'idioms', TRUE, NULL),
			 ('Hidden', '', '', 'idioms', FALSE, NULL)`)
		require.NoError(t, err)
		active, err := phrases.ActivePhrases(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)

		now := time.Now().UTC().Truncate(time.Microsecond)
		run := model.DispatchRun{ID: uuid.New(), ScheduledFor: now, StartedAt: now}
		require.NoError(t, runs.Create(ctx, run))

		latest, err := runs.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, run.ID, latest.ID)
		assert.False(t, latest.Completed())

		phraseID := active[0].ID
		kind, detail := model.ErrorKindTransient, "timeout"
		require.NoError(t, log.Append(ctx, model.DeliveryAttempt{
			DispatchRunID: run.ID, UserID: 1, PhraseID: &phraseID, AttemptNumber: 1,
			Outcome: model.OutcomeFailedRetryable, ErrorKind: &kind, ErrorDetail: &detail, Timestamp: now,
		}))
		require.NoError(t, log.Append(ctx, model.DeliveryAttempt{
			DispatchRunID: run.ID, UserID: 1, PhraseID: &phraseID, AttemptNumber: 2,
			Outcome: model.OutcomeSent, Timestamp: now,
		}))
		require.Error(t, log.Append(ctx, model.DeliveryAttempt{
			DispatchRunID: run.ID, UserID: 1, PhraseID: &phraseID, AttemptNumber: 2,
			Outcome: model.OutcomeSent, Timestamp: now,
		}))

		attempts, err := log.AttemptsFor(ctx, run.ID, 1)
		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, model.OutcomeSent, attempts[1].Outcome)

		counts, err := log.Summarize(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.DeliveryCounts{Recipients: 1, Sent: 1, Failed: 0, Attempts: 2, Retryable: 1}, counts)

		stats, err := log.DailyStats(ctx, now.Add(-time.Hour), now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 1, stats.Sent)

		completed := now.Add(time.Minute)
		run.CompletedAt = &completed
		run.TotalRecipients, run.TotalSent = 1, 1
		require.NoError(t, runs.Complete(ctx, run))

		got, err := runs.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed())
		assert.Equal(t, 1, got.TotalSent)

		exhausted, permanent := model.ErrorKindExhausted, model.ErrorKindPermanent
		retry := model.DispatchRun{ID: uuid.New(), ScheduledFor: now, StartedAt: now}
		require.NoError(t, runs.Create(ctx, retry))
		for _, a := range []model.DeliveryAttempt{
			{DispatchRunID: retry.ID, UserID: 7, AttemptNumber: 1, Outcome: model.OutcomeFailedPermanent, ErrorKind: &exhausted, Timestamp: now},
			{DispatchRunID: retry.ID, UserID: 3, AttemptNumber: 1, Outcome: model.OutcomeFailedPermanent, ErrorKind: &exhausted, Timestamp: now},
			{DispatchRunID: retry.ID, UserID: 5, AttemptNumber: 1, Outcome: model.OutcomeFailedPermanent, ErrorKind: &permanent, Timestamp: now},
		} {
			require.NoError(t, log.Append(ctx, a))
		}
		ids, err := log.ExhaustedRecipients(ctx, retry.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 7}, ids)

		require.NoError(t, runs.Abandon(ctx, retry.ID, now.Add(time.Minute), "context canceled"))
		abandoned, err := runs.GetByID(ctx, retry.ID)
		require.NoError(t, err)
		assert.True(t, abandoned.Abandoned())
		assert.Equal(t, "context canceled", abandoned.AbandonReason)
		require.ErrorIs(t, runs.Abandon(ctx, run.ID, now, "late"), model.ErrNotFound)
	})
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/dailyphrase/internal/model"
)

func TestDeliveryRepository_AppendOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewDeliveryRepository()
	runID := uuid.New()
	now := time.Now()

	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 1, AttemptNumber: 2, Outcome: model.OutcomeSent, Timestamp: now}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 1, AttemptNumber: 1, Outcome: model.OutcomeFailedRetryable, Timestamp: now}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 2, AttemptNumber: 1, Outcome: model.OutcomeFailedPermanent, Timestamp: now}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: uuid.New(), UserID: 1, AttemptNumber: 1, Outcome: model.OutcomeSent, Timestamp: now}))

	err := repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 1, AttemptNumber: 2, Outcome: model.OutcomeSent, Timestamp: now})
	require.Error(t, err)

	attempts, err := repo.AttemptsFor(ctx, runID, 1)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 1, attempts[0].AttemptNumber)
	assert.Equal(t, 2, attempts[1].AttemptNumber)
	assert.NotEqual(t, uuid.Nil, attempts[0].ID)

	counts, err := repo.Summarize(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryCounts{Recipients: 2, Sent: 1, Failed: 1, Attempts: 3, Retryable: 1}, counts)
	assert.Len(t, repo.All(runID), 3)
}

func TestDeliveryRepository_DailyStats(t *testing.T) {
	ctx := context.Background()
	repo := NewDeliveryRepository()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	runID := uuid.New()

	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 1, AttemptNumber: 1, Outcome: model.OutcomeSent, Timestamp: day.Add(8 * time.Hour)}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 2, AttemptNumber: 1, Outcome: model.OutcomeFailedRetryable, Timestamp: day.Add(8 * time.Hour)}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 2, AttemptNumber: 2, Outcome: model.OutcomeFailedPermanent, Timestamp: day.Add(9 * time.Hour)}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 3, AttemptNumber: 1, Outcome: model.OutcomeSent, Timestamp: day.Add(24 * time.Hour)}))

	stats, err := repo.DailyStats(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Retrying)
}

func TestDeliveryRepository_ExhaustedRecipients(t *testing.T) {
	ctx := context.Background()
	repo := NewDeliveryRepository()
	runID := uuid.New()
	now := time.Now()
	exhausted, permanent := model.ErrorKindExhausted, model.ErrorKindPermanent

	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 7, AttemptNumber: 1, Outcome: model.OutcomeFailedRetryable, Timestamp: now}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 7, AttemptNumber: 2, Outcome: model.OutcomeFailedPermanent, ErrorKind: &exhausted, Timestamp: now}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 3, AttemptNumber: 1, Outcome: model.OutcomeFailedPermanent, ErrorKind: &exhausted, Timestamp: now}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: runID, UserID: 4, AttemptNumber: 1, Outcome: model.OutcomeFailedPermanent, ErrorKind: &permanent, Timestamp: now}))
	require.NoError(t, repo.Append(ctx, model.DeliveryAttempt{DispatchRunID: uuid.New(), UserID: 9, AttemptNumber: 1, Outcome: model.OutcomeFailedPermanent, ErrorKind: &exhausted, Timestamp: now}))

	ids, err := repo.ExhaustedRecipients(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, ids)
}

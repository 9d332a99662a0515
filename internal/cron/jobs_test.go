package cron

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AadiSharma49/Street-Food-Solution/internal/notifications"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/dbtest"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
)

type fakeExpirer struct {
	at time.Time
}

func (f *fakeExpirer) ExpireDue(_ context.Context, now time.Time) (int, error) {
	f.at = now
	return 2, nil
}

type fakeAlerter struct {
	at time.Time
}

func (f *fakeAlerter) EmitLowStockAlerts(_ context.Context, now time.Time) (int, error) {
	f.at = now
	return 5, nil
}

func TestMarketplaceJobsPassCurrentTime(t *testing.T) {
	now := time.Date(2026, 4, 2, 18, 30, 0, 0, time.FixedZone("IST", 19800))

	expirer := &fakeExpirer{}
	job, err := NewGroupOrderExpiryJob(expirer)
	require.NoError(t, err)
	job.(*groupOrderExpiryJob).now = func() time.Time { return now }
	n, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, now.UTC(), expirer.at)

	alerter := &fakeAlerter{}
	job, err = NewLowStockAlertJob(alerter)
	require.NoError(t, err)
	job.(*lowStockAlertJob).now = func() time.Time { return now }
	n, err = job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, now.UTC(), alerter.at)

	_, err = NewGroupOrderExpiryJob(nil)
	require.Error(t, err)
}

func TestNotificationRetentionDeletesOldRows(t *testing.T) {
	conn := dbtest.Open(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	account := uuid.New()
	for _, age := range []time.Duration{45 * 24 * time.Hour, 31 * 24 * time.Hour, 2 * 24 * time.Hour} {
		require.NoError(t, conn.Create(&models.Notification{
			AccountID: account,
			Type:      enums.NotificationTypeSystem,
			Title:     "t",
			Message:   "m",
			CreatedAt: now.Add(-age),
		}).Error)
	}

	job, err := NewNotificationRetentionJob(NotificationRetentionJobParams{
		Logger:     logger.Nop(),
		DB:         db.Wrap(conn),
		Repository: notifications.NewRepository(conn),
	})
	require.NoError(t, err)
	job.(*notificationRetentionJob).now = func() time.Time { return now }

	deleted, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, deleted)

	var left int64
	require.NoError(t, conn.Model(&models.Notification{}).Count(&left).Error)
	require.EqualValues(t, 1, left)
}

func TestOutboxRetentionKeepsUnpublishedRows(t *testing.T) {
	conn := dbtest.Open(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-10 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	payload := json.RawMessage(`{"version":1}`)

	for _, publishedAt := range []*time.Time{&old, &recent, nil} {
		require.NoError(t, conn.Create(&models.OutboxEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       payload,
			CreatedAt:     old,
			PublishedAt:   publishedAt,
		}).Error)
	}

	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.Nop(),
		Repository: outbox.NewRepository(conn),
	})
	require.NoError(t, err)
	job.(*outboxRetentionJob).now = func() time.Time { return now }

	deleted, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	var left int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&left).Error)
	require.EqualValues(t, 2, left)
}

func TestOutboxRetentionPrunesDeadLetters(t *testing.T) {
	conn := dbtest.Open(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	dlq := outbox.NewDLQRepository(conn)

	for _, failedAt := range []time.Time{now.Add(-45 * 24 * time.Hour), now.Add(-2 * 24 * time.Hour)} {
		require.NoError(t, conn.Create(&models.OutboxDLQ{
			EventID:       uuid.New(),
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"version":1}`),
			ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
			FailedAt:      failedAt,
		}).Error)
	}

	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.Nop(),
		Repository: outbox.NewRepository(conn),
		DLQ:        dlq,
	})
	require.NoError(t, err)
	job.(*outboxRetentionJob).now = func() time.Time { return now }

	deleted, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	var left int64
	require.NoError(t, conn.Model(&models.OutboxDLQ{}).Count(&left).Error)
	require.EqualValues(t, 1, left)
}

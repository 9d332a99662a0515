package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/dbtest"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

func insertDLQ(t *testing.T, conn *gorm.DB, repo *DLQRepository, eventType enums.OutboxEventType, reason enums.OutboxDLQErrorReason, failedAt time.Time) uuid.UUID {
	t.Helper()
	eventID := uuid.New()
	msg := "publish failed"
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return repo.InsertTx(tx, models.OutboxDLQ{
			EventID:       eventID,
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"version":1}`),
			ErrorReason:   reason,
			ErrorMessage:  &msg,
			FailedAt:      failedAt,
		})
	}))
	return eventID
}

func TestDLQRepositoryListFilters(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewDLQRepository(conn)
	now := time.Now().UTC()

	insertDLQ(t, conn, repo, enums.EventOrderPlaced, enums.OutboxDLQReasonMaxAttempts, now.Add(-time.Hour))
	latest := insertDLQ(t, conn, repo, enums.EventOrderPlaced, enums.OutboxDLQReasonNonRetryable, now)
	insertDLQ(t, conn, repo, enums.EventGroupOrderJoined, enums.OutboxDLQReasonMaxAttempts, now)

	rows, err := repo.List(context.Background(), DLQFilter{EventType: enums.EventOrderPlaced})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, latest, rows[0].EventID)

	rows, err = repo.List(context.Background(), DLQFilter{Reason: enums.OutboxDLQReasonMaxAttempts})
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestDLQRepositoryFindAndPrune(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewDLQRepository(conn)
	now := time.Now().UTC()

	old := insertDLQ(t, conn, repo, enums.EventOrderPlaced, enums.OutboxDLQReasonMaxAttempts, now.Add(-40*24*time.Hour))
	fresh := insertDLQ(t, conn, repo, enums.EventOrderPlaced, enums.OutboxDLQReasonMaxAttempts, now)

	deleted, err := repo.DeleteFailedBefore(context.Background(), now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	gone, err := repo.FindByEventID(context.Background(), old)
	require.NoError(t, err)
	require.Nil(t, gone)

	kept, err := repo.FindByEventID(context.Background(), fresh)
	require.NoError(t, err)
	require.NotNil(t, kept)
}

func TestTruncateUTF8KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", 1023) + "₹"
	got := truncateUTF8(s, maxDLQErrorLen)
	require.Equal(t, strings.Repeat("a", 1023), got)
	require.Equal(t, "short", truncateUTF8("short", maxDLQErrorLen))
}

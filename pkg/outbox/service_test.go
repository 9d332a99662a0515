package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/dbtest"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

func TestEmitWritesVersionedEnvelope(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), logger.Nop())
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	orderID := uuid.New()
	actor := &ActorRef{AccountID: uuid.New(), AccountType: enums.AccountTypeSupplier}

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventGroupOrderCompleted,
			AggregateType: enums.AggregateGroupOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          map[string]any{"group_order_id": orderID.String()},
		})
	}))

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	envelope, err := DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	require.Equal(t, 1, envelope.Version)
	require.True(t, envelope.OccurredAt.Equal(fixed))
	require.Equal(t, actor.AccountID, envelope.Actor.AccountID)
	_, err = uuid.Parse(envelope.EventID)
	require.NoError(t, err)
	require.JSONEq(t, `{"group_order_id":"`+orderID.String()+`"}`, string(envelope.Data))
}

func TestEmitOnceSkipsRepeatedTerminalEvents(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), logger.Nop())
	event := DomainEvent{
		EventType:     enums.EventGroupOrderCompleted,
		AggregateType: enums.AggregateGroupOrder,
		AggregateID:   uuid.New(),
		Data:          map[string]any{},
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
			return svc.EmitOnce(context.Background(), tx, event)
		}))
	}
	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEmitValidation(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), logger.Nop())
	ctx := context.Background()

	require.ErrorIs(t, svc.Emit(ctx, nil, DomainEvent{}), errNoTx)
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		require.Error(t, svc.Emit(ctx, tx, DomainEvent{EventType: "store.deleted", AggregateID: uuid.New()}))
		require.Error(t, svc.Emit(ctx, tx, DomainEvent{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder}))
		return nil
	}))
}

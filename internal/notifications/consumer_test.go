package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/idempotency"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/registry"
	redisclient "github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

func newTestConsumer(t *testing.T) (*Consumer, Service) {
	t.Helper()
	consumer, svc, _ := newTestConsumerWithTracker(t)
	return consumer, svc
}

func newTestConsumerWithTracker(t *testing.T) (*Consumer, Service, *idempotency.Manager) {
	t.Helper()
	svc, _, _ := newNotificationService(t)

	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	manager, err := idempotency.NewManager(redisclient.NewFromRaw(raw), time.Hour)
	require.NoError(t, err)

	events, err := registry.NewEventRegistry(config.PubSubConfig{DomainTopic: "domain"})
	require.NoError(t, err)

	consumer, err := NewConsumer(ConsumerParams{
		Notifications: svc,
		Decoders:      registry.NewDomainDecoders(events),
		Idempotency:   manager,
		Logger:        logger.Nop(),
	})
	require.NoError(t, err)
	return consumer, svc, manager
}

func envelopeFor(t *testing.T, eventID uuid.UUID, data any) []byte {
	t.Helper()
	rawData, err := json.Marshal(data)
	require.NoError(t, err)
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       rawData,
	})
	require.NoError(t, err)
	return raw
}

func attrs(eventType enums.OutboxEventType) map[string]string {
	return map[string]string{"event_type": string(eventType)}
}

func unread(t *testing.T, svc Service, accountID uuid.UUID) int64 {
	t.Helper()
	count, err := svc.UnreadCount(context.Background(), accountID)
	require.NoError(t, err)
	return count
}

func TestNewConsumerRequiresDependencies(t *testing.T) {
	_, err := NewConsumer(ConsumerParams{})
	require.Error(t, err)
}

func TestProcessOrderPlacedNotifiesSupplierOnce(t *testing.T) {
	consumer, svc := newTestConsumer(t)
	ctx := context.Background()
	supplier := uuid.New()
	eventID := uuid.New()
	data := envelopeFor(t, eventID, payloads.OrderPlacedEvent{
		OrderID:     uuid.New(),
		VendorID:    uuid.New(),
		SupplierID:  supplier,
		TotalAmount: decimal.RequireFromString("395"),
		ItemCount:   2,
	})

	require.True(t, consumer.Process(ctx, "m1", attrs(enums.EventOrderPlaced), data))
	require.True(t, consumer.Process(ctx, "m2", attrs(enums.EventOrderPlaced), data))
	require.EqualValues(t, 1, unread(t, svc, supplier))

	page, err := svc.List(ctx, ListParams{AccountID: supplier})
	require.NoError(t, err)
	require.Equal(t, enums.NotificationTypeOrderUpdate, page.Items[0].Type)
	require.Contains(t, page.Items[0].Message, "₹395.00")
}

func TestProcessStatusChangeNotifiesCounterparty(t *testing.T) {
	consumer, svc := newTestConsumer(t)
	ctx := context.Background()
	vendor, supplier := uuid.New(), uuid.New()

	data := envelopeFor(t, uuid.New(), payloads.OrderStatusChangedEvent{
		OrderID:    uuid.New(),
		VendorID:   vendor,
		SupplierID: supplier,
		From:       enums.OrderStatusPending,
		To:         enums.OrderStatusCancelled,
		ChangedBy:  vendor,
		Reason:     "stall closed today",
	})
	require.True(t, consumer.Process(ctx, "m1", attrs(enums.EventOrderStatusChanged), data))
	require.EqualValues(t, 1, unread(t, svc, supplier))
	require.Zero(t, unread(t, svc, vendor))
}

func TestProcessGroupOrderCompletedFansOut(t *testing.T) {
	consumer, svc := newTestConsumer(t)
	supplier := uuid.New()
	vendors := []uuid.UUID{uuid.New(), uuid.New()}

	data := envelopeFor(t, uuid.New(), payloads.GroupOrderCompletedEvent{
		GroupOrderID:   uuid.New(),
		SupplierID:     supplier,
		Title:          "Basmati bulk buy",
		FinalQuantity:  100,
		ParticipantIDs: vendors,
		CompletedAt:    time.Now().UTC(),
	})
	require.True(t, consumer.Process(context.Background(), "m1", attrs(enums.EventGroupOrderCompleted), data))
	require.EqualValues(t, 1, unread(t, svc, supplier))
	for _, v := range vendors {
		require.EqualValues(t, 1, unread(t, svc, v))
	}
}

func TestProcessLowStockUsesLowStockType(t *testing.T) {
	consumer, svc := newTestConsumer(t)
	ctx := context.Background()
	vendor := uuid.New()
	days := 1.5

	data := envelopeFor(t, uuid.New(), payloads.InventoryLowStockEvent{
		ItemID:       uuid.New(),
		VendorID:     vendor,
		ProductName:  "Onions",
		Unit:         "kg",
		Status:       enums.StockStatusLowStock,
		Severity:     enums.AlertSeverityHigh,
		CurrentStock: 3,
		DaysLeft:     &days,
	})
	require.True(t, consumer.Process(ctx, "m1", attrs(enums.EventInventoryLowStock), data))

	page, err := svc.List(ctx, ListParams{AccountID: vendor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, enums.NotificationTypeLowStock, page.Items[0].Type)
	require.Equal(t, "Low stock: Onions", page.Items[0].Title)
	require.Contains(t, page.Items[0].Message, "1.5 day")
}

func TestProcessAcksMalformedAndUnknownMessages(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	ctx := context.Background()

	require.True(t, consumer.Process(ctx, "m1", attrs(enums.EventOrderPlaced), []byte("not json")))
	require.True(t, consumer.Process(ctx, "m2", attrs("store.deleted"), envelopeFor(t, uuid.New(), map[string]any{})))

	bad, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: "nope", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	require.True(t, consumer.Process(ctx, "m3", attrs(enums.EventOrderPlaced), bad))
}

func TestProcessNacksWhenCreateFails(t *testing.T) {
	consumer, svc := newTestConsumer(t)
	ctx := context.Background()
	eventID := uuid.New()

	invalid := envelopeFor(t, eventID, payloads.NotificationRequestedEvent{
		AccountID: uuid.New(),
		Type:      "carrier_pigeon",
		Title:     "Hi",
		Message:   "there",
	})
	require.False(t, consumer.Process(ctx, "m1", attrs(enums.EventNotificationRequested), invalid))

	recipient := uuid.New()
	fixed := envelopeFor(t, eventID, payloads.NotificationRequestedEvent{
		AccountID: recipient,
		Type:      enums.NotificationTypeMessage,
		Title:     "New message",
		Message:   "Ramesh sent you a message",
	})
	require.True(t, consumer.Process(ctx, "m2", attrs(enums.EventNotificationRequested), fixed), "idempotency mark must be released after a failure")
	require.EqualValues(t, 1, unread(t, svc, recipient))
}

func TestProcessNacksWhileAnotherDeliveryHoldsTheClaim(t *testing.T) {
	consumer, svc, manager := newTestConsumerWithTracker(t)
	ctx := context.Background()
	eventID := uuid.New()
	recipient := uuid.New()

	state, err := manager.Claim(ctx, notificationConsumerName, eventID)
	require.NoError(t, err)
	require.Equal(t, idempotency.Claimed, state)

	body := envelopeFor(t, eventID, payloads.NotificationRequestedEvent{
		AccountID: recipient,
		Type:      enums.NotificationTypeMessage,
		Title:     "New message",
		Message:   "Sunita sent you a message",
	})
	require.False(t, consumer.Process(ctx, "m1", attrs(enums.EventNotificationRequested), body))
	require.EqualValues(t, 0, unread(t, svc, recipient))

	require.NoError(t, manager.Release(ctx, notificationConsumerName, eventID))
	require.True(t, consumer.Process(ctx, "m2", attrs(enums.EventNotificationRequested), body))
	require.True(t, consumer.Process(ctx, "m3", attrs(enums.EventNotificationRequested), body), "a completed event is acked")
	require.EqualValues(t, 1, unread(t, svc, recipient))
}

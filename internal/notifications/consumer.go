package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/idempotency"
)

const notificationConsumerName = "notifications"

type creator interface {
	Create(ctx context.Context, input CreateInput) (*NotificationDTO, error)
}

type payloadDecoder interface {
	Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (interface{}, error)
}

type processedTracker interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (idempotency.State, error)
	Complete(ctx context.Context, consumer string, eventID uuid.UUID) error
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer watches domain events and turns them into stored notifications.
type Consumer struct {
	notifications creator
	subscription  *pubsub.Subscriber
	decoders      payloadDecoder
	idempotency   processedTracker
	logg          *logger.Logger
}

// ConsumerParams names the consumer dependencies.
type ConsumerParams struct {
	Notifications creator
	Subscription  *pubsub.Subscriber
	Decoders      payloadDecoder
	Idempotency   processedTracker
	Logger        *logger.Logger
}

// NewConsumer builds the domain event notification consumer. Subscription
// may be nil when only Process is used.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if params.Decoders == nil {
		return nil, fmt.Errorf("payload decoders required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		notifications: params.Notifications,
		subscription:  params.Subscription,
		decoders:      params.Decoders,
		idempotency:   params.Idempotency,
		logg:          params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("domain subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.Process(ctx, msg.ID, msg.Attributes, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Process handles one delivered message and reports whether it should be
// acked. Malformed messages are acked so they are not redelivered forever.
func (c *Consumer) Process(ctx context.Context, messageID string, attributes map[string]string, data []byte) bool {
	eventType := enums.OutboxEventType(attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": string(eventType),
	})

	envelope, err := outbox.DecodeEnvelope(data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	payload, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Warn(logCtx, "skipping undecodable event: "+err.Error())
		return true
	}
	inputs := inputsForEvent(payload)
	if len(inputs) == 0 {
		c.logg.Debug(logCtx, "event produces no notifications")
		return true
	}

	state, err := c.idempotency.Claim(ctx, notificationConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	switch state {
	case idempotency.Done:
		c.logg.Info(logCtx, "event already processed")
		return true
	case idempotency.InFlight:
		c.logg.Info(logCtx, "event is being processed by another delivery")
		return false
	}

	for _, input := range inputs {
		if _, err := c.notifications.Create(ctx, input); err != nil {
			c.logg.Error(logCtx, "notification create failed", err)
			if relErr := c.idempotency.Release(ctx, notificationConsumerName, eventID); relErr != nil {
				c.logg.Error(logCtx, "idempotency release failed", relErr)
			}
			return false
		}
	}
	if err := c.idempotency.Complete(ctx, notificationConsumerName, eventID); err != nil {
		// notifications are stored; a redelivery after the claim expires would duplicate them
		c.logg.Error(logCtx, "idempotency complete failed", err)
	}
	c.logg.Info(c.logg.WithField(logCtx, "notifications", len(inputs)), "event notifications stored")
	return true
}

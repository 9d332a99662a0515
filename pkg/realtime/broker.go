package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	redisclient "github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

// Event types pushed to connected clients.
const (
	EventNotification     = "notification"
	EventMessage          = "message"
	EventGroupOrderUpdate = "group_order_update"
	EventOrderUpdate      = "order_update"
)

const defaultBuffer = 32

// Event is the frame delivered on an account channel.
type Event struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher pushes events to a single account. Services depend on this.
type Publisher interface {
	Publish(ctx context.Context, accountID uuid.UUID, eventType string, payload any) error
}

// Subscriber streams events addressed to an account.
type Subscriber interface {
	Subscribe(ctx context.Context, accountID uuid.UUID) (<-chan Event, func(), error)
}

type redisPubSub interface {
	Publish(ctx context.Context, channel string, payload any) (int64, error)
	Subscribe(ctx context.Context, channels ...string) (*redisclient.PubSub, error)
	RealtimeChannel(accountID string) string
}

// Broker fans events out through Redis Pub/Sub so every API instance sees them.
type Broker struct {
	redis  redisPubSub
	buffer int
	logg   *logger.Logger
	now    func() time.Time
}

// NewBroker builds a broker on top of the shared redis client.
func NewBroker(client redisPubSub, cfg config.RealtimeConfig, logg *logger.Logger) (*Broker, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	buffer := cfg.ChannelBuffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{
		redis:  client,
		buffer: buffer,
		logg:   logg,
		now:    time.Now,
	}, nil
}

// Publish encodes payload into an Event and sends it to the account channel.
// Having no live subscribers is not an error.
func (b *Broker) Publish(ctx context.Context, accountID uuid.UUID, eventType string, payload any) error {
	if accountID == uuid.Nil {
		return errors.New("account id required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode realtime payload: %w", err)
	}
	frame, err := json.Marshal(Event{
		Type:       eventType,
		Payload:    data,
		OccurredAt: b.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode realtime event: %w", err)
	}
	receivers, err := b.redis.Publish(ctx, b.redis.RealtimeChannel(accountID.String()), frame)
	if err != nil {
		return fmt.Errorf("publish realtime event: %w", err)
	}
	b.logg.Debug(b.logg.WithFields(ctx, map[string]any{
		"account_id": accountID.String(),
		"event_type": eventType,
		"receivers":  receivers,
	}), "realtime event published")
	return nil
}

// Subscribe returns a channel of events for accountID. The channel is closed
// when ctx ends or release is called. Frames that cannot be decoded are
// dropped, as are frames arriving while the buffer is full.
func (b *Broker) Subscribe(ctx context.Context, accountID uuid.UUID) (<-chan Event, func(), error) {
	if accountID == uuid.Nil {
		return nil, nil, errors.New("account id required")
	}
	sub, err := b.redis.Subscribe(ctx, b.redis.RealtimeChannel(accountID.String()))
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	ctx = b.logg.WithField(ctx, "account_id", accountID.String())
	out := make(chan Event, b.buffer)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.logg.Warn(ctx, "realtime frame dropped: "+err.Error())
					continue
				}
				select {
				case out <- evt:
				default:
					b.logg.Warn(b.logg.WithField(ctx, "event_type", evt.Type), "realtime buffer full, event dropped")
				}
			}
		}
	}()

	release := func() {
		cancel()
		<-done
	}
	return out, release, nil
}

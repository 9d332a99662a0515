package registry

import (
	"encoding/json"
	"testing"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventOrderStatusChanged, 1, func(payload json.RawMessage) (any, error) {
		var decoded payloads.OrderStatusChangedEvent
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"from":"pending","to":"confirmed"}`)
	output, err := reg.Decode(enums.EventOrderStatusChanged, 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, ok := output.(payloads.OrderStatusChangedEvent)
	if !ok || decoded.To != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected output %+v", output)
	}

	if _, err := reg.Decode(enums.EventOrderStatusChanged, 2, input); err == nil {
		t.Fatalf("expected error for unregistered version")
	}
}

func TestNewDomainDecodersCoversRegistry(t *testing.T) {
	events, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "domain"})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	decoders := NewDomainDecoders(events)

	out, err := decoders.Decode(enums.EventGroupOrderJoined, 1, json.RawMessage(`{"title":"Rice pool","quantity":4}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	joined, ok := out.(*payloads.GroupOrderJoinedEvent)
	if !ok || joined.Quantity != 4 || joined.Title != "Rice pool" {
		t.Fatalf("unexpected payload %+v", out)
	}

	if _, err := decoders.Decode(enums.EventInventoryLowStock, 1, json.RawMessage(`{`)); err == nil {
		t.Fatalf("expected malformed payload error")
	}
}

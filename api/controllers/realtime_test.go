package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/api/middleware"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
)

type stubSubscriber struct {
	events   chan realtime.Event
	released chan struct{}
	account  uuid.UUID
	err      error
}

func (s *stubSubscriber) Subscribe(_ context.Context, accountID uuid.UUID) (<-chan realtime.Event, func(), error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	s.account = accountID
	return s.events, func() { close(s.released) }, nil
}

func TestRealtimeStreamRelaysEvents(t *testing.T) {
	sub := &stubSubscriber{events: make(chan realtime.Event, 1), released: make(chan struct{})}
	accountID := uuid.New()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(middleware.WithAccount(r.Context(), accountID, enums.AccountTypeVendor))
		RealtimeStream(sub, time.Hour, testLogger())(w, r)
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	payload, _ := json.Marshal(map[string]string{"id": "n-1"})
	sub.events <- realtime.Event{Type: "notification.created", Payload: payload, OccurredAt: time.Now().UTC()}

	reader := bufio.NewReader(resp.Body)
	var eventLine, dataLine string
	deadline := time.After(5 * time.Second)
	for dataLine == "" {
		lineCh := make(chan string, 1)
		go func() {
			line, _ := reader.ReadString('\n')
			lineCh <- line
		}()
		select {
		case line := <-lineCh:
			switch {
			case strings.HasPrefix(line, "event: "):
				eventLine = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			case strings.HasPrefix(line, "data: "):
				dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}

	if eventLine != "notification.created" {
		t.Fatalf("unexpected event name %q", eventLine)
	}
	var evt realtime.Event
	if err := json.Unmarshal([]byte(dataLine), &evt); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if string(evt.Payload) != `{"id":"n-1"}` {
		t.Fatalf("unexpected payload %s", evt.Payload)
	}
	if sub.account != accountID {
		t.Fatalf("subscribed for %s, want %s", sub.account, accountID)
	}

	cancel()
	select {
	case <-sub.released:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription not released after disconnect")
	}
}

func TestRealtimeStreamSubscribeFailure(t *testing.T) {
	sub := &stubSubscriber{err: errors.New("redis down")}
	req := asAccount(newRequest(http.MethodGet, "/api/v1/realtime/stream", ""), uuid.New(), enums.AccountTypeSupplier)
	rec := httptest.NewRecorder()

	RealtimeStream(sub, time.Second, testLogger())(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
)

type fakeStore struct {
	mu        sync.Mutex
	data      map[string]string
	refreshes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) ExpireIfEqual(_ context.Context, key, owner string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[key] != owner {
		return false, nil
	}
	f.refreshes++
	return true, nil
}

func (f *fakeStore) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

// keyedRequest builds a POST carrying an Idempotency-Key. An empty key
// leaves the header off.
func keyedRequest(pattern, key, body string) *http.Request {
	req := requestWithPattern(http.MethodPost, pattern, pattern, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"checkout", http.MethodPost, "/api/v1/checkout", criticalIdempotencyTTL, true},
		{"group order join", http.MethodPost, "/api/v1/group-orders/{groupOrderID}/join", criticalIdempotencyTTL, true},
		{"group order cancel", http.MethodPost, "/api/v1/group-orders/{groupOrderID}/cancel", defaultIdempotencyTTL, true},
		{"order status", http.MethodPost, "/api/v1/orders/{orderID}/status", defaultIdempotencyTTL, true},
		{"restock", http.MethodPost, "/api/v1/inventory/{itemID}/restock", defaultIdempotencyTTL, true},
		{"inventory update", http.MethodPatch, "/api/v1/inventory/{itemID}", 0, false},
		{"non idempotent", http.MethodPost, "/api/v1/auth/login", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := keyedRequest("/api/v1/auth/register", "", `{"foo":"bar"}`)
	resp := serve(mw(handler), req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := keyedRequest("/api/v1/auth/register", "abc", `{"foo":"bar"}`)
	resp := serve(mw(handler), req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", resp.Code)
	}

	replay := keyedRequest("/api/v1/auth/register", "abc", `{"foo":"bar"}`)
	rec := serve(mw(handler), replay)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected replay status 202 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if rec.Header().Get(idempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header on second response")
	}
	if resp.Header().Get(idempotencyReplayHeader) != "" {
		t.Fatalf("first response must not be marked as replay")
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	var nested *httptest.ResponseRecorder
	var handler http.Handler
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// a duplicate arriving while the first request still holds the key
			dup := keyedRequest("/api/v1/checkout", "busy", `{}`)
			nested = serve(mw(handler), dup)
		}
		w.WriteHeader(http.StatusCreated)
	})

	req := keyedRequest("/api/v1/checkout", "busy", `{}`)
	resp := serve(mw(handler), req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if nested == nil || nested.Code != http.StatusConflict {
		t.Fatalf("expected in-flight duplicate to get 409")
	}
	if !strings.Contains(nested.Body.String(), "in progress") {
		t.Fatalf("unexpected conflict body %s", nested.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareReleasesKeyOnPanic(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	req := keyedRequest("/api/v1/checkout", "panicky", `{}`)
	func() {
		defer func() { _ = recover() }()
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}()
	if len(store.data) != 0 {
		t.Fatalf("expected key released after panic, got %v", store.data)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := keyedRequest("/api/v1/auth/register", "xyz", `{"foo":"bar"}`)
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := keyedRequest("/api/v1/auth/register", "xyz", `{"foo":"diff"}`)
	resp := serve(mw(handler), replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyMiddlewareSkipsServerErrors(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		req := keyedRequest("/api/v1/checkout", "retry-me", `{}`)
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected key released, got %v", store.data)
	}
}

func TestIdempotencyScopesKeysPerAccount(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for _, accountID := range []uuid.UUID{uuid.New(), uuid.New()} {
		req := keyedRequest("/api/v1/checkout", "same-key", `{}`)
		req = req.WithContext(WithAccount(req.Context(), accountID, enums.AccountTypeVendor))
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected one execution per account, got %d", calls)
	}
}

func TestIdempotencyMiddlewareKeepsSlowRequestsReserved(t *testing.T) {
	previous := pendingRefresh
	pendingRefresh = 5 * time.Millisecond
	t.Cleanup(func() { pendingRefresh = previous })

	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(60 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	})

	resp := serve(mw(handler), keyedRequest("/api/v1/checkout", "slow", `{}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	refreshed := store.refreshCount()
	if refreshed == 0 {
		t.Fatalf("expected the pending marker to be refreshed while the handler ran")
	}

	time.Sleep(20 * time.Millisecond)
	if got := store.refreshCount(); got != refreshed {
		t.Fatalf("marker refreshed after the handler returned: %d -> %d", refreshed, got)
	}
	for _, stored := range store.data {
		if strings.Contains(stored, `"pending":true`) {
			t.Fatalf("final record still pending: %s", stored)
		}
	}
}

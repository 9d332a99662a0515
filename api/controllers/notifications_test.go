package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/internal/notifications"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

type testNotificationsService struct {
	notifications.Service
	markReadFn func(ctx context.Context, accountID, notificationID uuid.UUID) error
	listParams notifications.ListParams
}

func (s *testNotificationsService) List(_ context.Context, params notifications.ListParams) (*pagination.Page[notifications.NotificationDTO], error) {
	s.listParams = params
	return &pagination.Page[notifications.NotificationDTO]{Items: []notifications.NotificationDTO{}}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, accountID, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, accountID, notificationID)
	}
	return nil
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	accountID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, aid, nid uuid.UUID) error {
			called = true
			if aid != accountID {
				t.Fatalf("unexpected account %s", aid)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := asAccount(newRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", ""), accountID, enums.AccountTypeVendor)
	req = withURLParams(req, "notificationID", notificationID.String())
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Data["read"] {
		t.Fatalf("expected read=true, got %v", envelope.Data)
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	svc := &testNotificationsService{
		markReadFn: func(context.Context, uuid.UUID, uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		},
	}
	req := asAccount(newRequest(http.MethodPost, "/", ""), uuid.New(), enums.AccountTypeSupplier)
	req = withURLParams(req, "notificationID", uuid.NewString())
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListNotificationsParsesFilters(t *testing.T) {
	svc := &testNotificationsService{}
	accountID := uuid.New()
	req := asAccount(newRequest(http.MethodGet, "/api/v1/notifications?unread_only=true&limit=10&cursor=abc", ""), accountID, enums.AccountTypeVendor)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	got := svc.listParams
	if got.AccountID != accountID || !got.UnreadOnly || got.Limit != 10 || got.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", got)
	}
}

func TestListNotificationsRejectsBadBool(t *testing.T) {
	svc := &testNotificationsService{}
	req := asAccount(newRequest(http.MethodGet, "/api/v1/notifications?unread_only=maybe", ""), uuid.New(), enums.AccountTypeVendor)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

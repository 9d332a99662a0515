package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/api/middleware"
	pkgauth "github.com/AadiSharma49/Street-Food-Solution/pkg/auth"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/auth/session"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asAccount(req *http.Request, id uuid.UUID, accountType enums.AccountType) *http.Request {
	return req.WithContext(middleware.WithAccount(req.Context(), id, accountType))
}

func withURLParams(req *http.Request, kv ...string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		routeCtx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return payload.Error.Code
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "streetfood-test", ExpirationMinutes: 60}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

func mintToken(t *testing.T, accountType enums.AccountType) (string, uuid.UUID) {
	t.Helper()
	accountID := uuid.New()
	token, err := pkgauth.MintAccessToken(testJWT, time.Now(), pkgauth.AccessTokenPayload{
		AccountID:   accountID,
		AccountType: accountType,
		JTI:         session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accountID
}

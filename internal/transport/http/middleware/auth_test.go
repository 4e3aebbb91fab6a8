package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"p9ify/internal/domain/auth"
	"p9ify/internal/requestctx"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	hash, err := auth.HashPassword("Secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return auth.NewService("test-secret", hash, time.Hour, nil, nil)
}

func TestAuthMiddlewareSetsSubject(t *testing.T) {
	svc := newAuthService(t)
	token, err := svc.Login(context.Background(), "Secret123", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	called := false
	handler := Auth(svc)(RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		subject, ok := requestctx.GetSubject(r.Context())
		if !ok || subject != auth.AdminSubject {
			t.Fatalf("unexpected subject %q", subject)
		}
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !called {
		t.Fatalf("expected handler call, got status %d", rec.Code)
	}
}

func TestRequireAuthRejectsMissingOrBadToken(t *testing.T) {
	svc := newAuthService(t)
	handler := Auth(svc)(RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})))

	for _, header := range []string{"", "Bearer nope", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestRequireAuthPassesWhenDisabled(t *testing.T) {
	svc := auth.NewService("", "", time.Hour, nil, nil)
	called := false
	handler := Auth(svc)(RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("expected handler call with auth disabled")
	}
}

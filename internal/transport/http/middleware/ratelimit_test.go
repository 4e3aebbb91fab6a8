package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitPerClient(t *testing.T) {
	limited := RateLimit(2)(noContent())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
		req.RemoteAddr = "203.0.113.10:4444"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Fatal("expected Retry-After on throttled response")
		}
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	other.RemoteAddr = "203.0.113.11:4444"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, other)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected other client to pass, got %d", rec.Code)
	}
}

func TestRateLimitUsesForwardedFor(t *testing.T) {
	limited := RateLimit(1)(noContent())
	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		if i == 1 {
			req.RemoteAddr = "10.0.0.2:1000"
		}
		req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestSensitiveRateLimitScopes(t *testing.T) {
	limited := SensitiveRateLimit(4)(noContent())

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "192.0.2.20:1111"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodPost, "/api/v1/auth/token"); code != http.StatusNoContent {
		t.Fatalf("expected first token request to pass, got %d", code)
	}
	if code := send(http.MethodPost, "/api/v1/auth/token"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second token request throttled, got %d", code)
	}
	for i := 0; i < 5; i++ {
		if code := send(http.MethodGet, "/api/v1/employees"); code != http.StatusNoContent {
			t.Fatalf("reads should not be limited here, got %d", code)
		}
	}
	if code := send(http.MethodPost, "/api/v1/data/import"); code != http.StatusNoContent {
		t.Fatalf("expected import to pass, got %d", code)
	}
	if code := send(http.MethodPost, "/api/v1/auth/mfa/enable"); code != http.StatusTooManyRequests {
		t.Fatalf("expected mfa codes to share the token budget, got %d", code)
	}
}

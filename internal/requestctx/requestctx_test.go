package requestctx

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestSubject(t *testing.T) {
	if _, ok := GetSubject(context.Background()); ok {
		t.Fatal("did not expect subject")
	}
	if _, ok := GetSubject(WithSubject(context.Background(), "")); ok {
		t.Fatal("empty subject should not count")
	}
	subject, ok := GetSubject(WithSubject(context.Background(), "admin"))
	if !ok || subject != "admin" {
		t.Fatalf("expected admin, got %q", subject)
	}
}

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	cryptoutil "p9ify/internal/platform/crypto"
	"p9ify/internal/platform/kv"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{Role: RoleAdmin}
	claims.Subject = AdminSubject

	token, err := GenerateToken(secret, claims, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.Subject != AdminSubject || parsed.Role != RoleAdmin {
		t.Fatalf("claims mismatch: %+v", parsed)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestServiceLoginAndVerify(t *testing.T) {
	hash, err := HashPassword("letmein")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	svc := NewService("secret", hash, time.Hour, nil, nil)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "nope", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	tok, err := svc.Login(ctx, "letmein", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.TokenType != "Bearer" || tok.AccessToken == "" {
		t.Fatalf("unexpected token %+v", tok)
	}
	if _, err := svc.Verify(tok.AccessToken); err != nil {
		t.Fatalf("verify: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.Login(ctx, "letmein", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Verify(expired.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewService("", "", time.Hour, nil, nil)
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if _, err := svc.Login(context.Background(), "x", ""); !errors.Is(err, ErrAuthDisabled) {
		t.Fatalf("expected auth disabled, got %v", err)
	}
}

func TestMFAFlow(t *testing.T) {
	hash, err := HashPassword("letmein")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	crypto, err := cryptoutil.New(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("crypto: %v", err)
	}
	store := kv.NewMemory()
	svc := NewService("secret", hash, time.Hour, store, crypto)
	ctx := context.Background()

	setup, err := svc.SetupMFA(ctx)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if setup.Secret == "" || !strings.HasPrefix(setup.OTPAuthURL, "otpauth://totp/") {
		t.Fatalf("unexpected setup %+v", setup)
	}
	raw, err := store.Get(ctx, MFAKey)
	if err != nil {
		t.Fatalf("expected stored mfa record, got %v", err)
	}
	if strings.Contains(string(raw), setup.Secret) {
		t.Fatal("expected mfa secret sealed at rest")
	}

	// Setup alone does not gate login.
	if _, err := svc.Login(ctx, "letmein", ""); err != nil {
		t.Fatalf("expected login before enable, got %v", err)
	}
	if err := svc.EnableMFA(ctx, "000000x"); !errors.Is(err, ErrInvalidMFACode) {
		t.Fatalf("expected invalid code, got %v", err)
	}
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := svc.EnableMFA(ctx, code); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if status, _ := svc.MFAStatus(ctx); !status.Enabled {
		t.Fatal("expected mfa enabled")
	}

	if _, err := svc.Login(ctx, "letmein", ""); !errors.Is(err, ErrMFARequired) {
		t.Fatalf("expected mfa required, got %v", err)
	}
	if _, err := svc.Login(ctx, "letmein", "123"); !errors.Is(err, ErrInvalidMFACode) {
		t.Fatalf("expected invalid code, got %v", err)
	}
	if _, err := svc.Login(ctx, "wrong", code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected password checked first, got %v", err)
	}
	if _, err := svc.Login(ctx, "letmein", code); err != nil {
		t.Fatalf("login with code: %v", err)
	}

	if err := svc.DisableMFA(ctx, code); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := svc.Login(ctx, "letmein", ""); err != nil {
		t.Fatalf("expected login without code after disable, got %v", err)
	}
}

func TestMFANeedsEncryptionKey(t *testing.T) {
	svc := NewService("secret", "", time.Hour, kv.NewMemory(), nil)
	if _, err := svc.SetupMFA(context.Background()); !errors.Is(err, ErrMFAUnavailable) {
		t.Fatalf("expected mfa unavailable, got %v", err)
	}
	if err := svc.EnableMFA(context.Background(), "123456"); !errors.Is(err, ErrMFAUnavailable) {
		t.Fatalf("expected mfa unavailable, got %v", err)
	}
}

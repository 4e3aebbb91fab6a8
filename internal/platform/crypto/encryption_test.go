package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestUnconfiguredServicePassesThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Configured() {
		t.Fatal("expected service without key to be unconfigured")
	}
	out, err := svc.Encrypt([]byte("payslip"))
	if err != nil || string(out) != "payslip" {
		t.Fatalf("expected passthrough, got %q %v", out, err)
	}
}

func TestEncryptDecrypt(t *testing.T) {
	svc, err := New(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain := []byte(`{"employees":[]}`)
	sealed, err := svc.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatal("expected ciphertext not to contain plaintext")
	}
	opened, err := svc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("expected %q, got %q", plain, opened)
	}
	if _, err := svc.Decrypt([]byte("x")); err != ErrCiphertextTooShort {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestRejectsShortKey(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatal("expected error for short key")
	}
}

package password

import (
	"errors"
	"strings"
	"testing"
)

func newHasher(t *testing.T) *Argon2 {
	t.Helper()
	h, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newHasher(t)
	encoded, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	ok, err := h.Verify("correct-horse", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	ok, err = h.Verify("wrong-horse", encoded)
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v", ok, err)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := newHasher(t)
	a, _ := h.Hash("correct-horse")
	b, _ := h.Hash("correct-horse")
	if a == b {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestHashLengthLimits(t *testing.T) {
	h := newHasher(t)
	if _, err := h.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("x", maxPassLen+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("x", maxPassLen)); err != nil {
		t.Fatalf("expected max length to be accepted: %v", err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newHasher(t)
	for _, bad := range []string{
		"",
		"not-a-phc",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		if _, err := h.Verify("correct-horse", bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory = 1024
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatalf("expected weak memory to be rejected")
	}
	cfg = DefaultConfig()
	cfg.SaltLength = 4
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatalf("expected short salt to be rejected")
	}
}

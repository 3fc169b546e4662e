package token

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewSessionManager("secret", time.Hour)
	id, key, err := m.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := m.Verify(id)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != key {
		t.Fatalf("expected key %q, got %q", key, got)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	id, _, _ := NewSessionManager("one", time.Hour).Issue()
	if _, err := NewSessionManager("two", time.Hour).Verify(id); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewSessionManager("secret", time.Minute)
	base := time.Now()
	m.now = func() time.Time { return base }
	id, _, _ := m.Issue()

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := m.Verify(id); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected expired session to fail, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	m := NewSessionManager("secret", 0)
	id, key, issued, err := m.Resolve("")
	if err != nil || !issued || id == "" || key == "" {
		t.Fatalf("expected a new session, got %q %q %v %v", id, key, issued, err)
	}
	again, againKey, issued, err := m.Resolve(id)
	if err != nil || issued || again != id || againKey != key {
		t.Fatalf("expected existing session to be kept, got %q %q %v %v", again, againKey, issued, err)
	}
	_, _, issued, _ = m.Resolve("garbage")
	if !issued {
		t.Fatal("expected a new session for an invalid id")
	}
}

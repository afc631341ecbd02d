package kv

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func TestSetGetDelete(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set("splashbot/auth/user_id", "u-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get("splashbot/auth/user_id")
	if err != nil || !ok || v != "u-1" {
		t.Fatalf("get: v=%q ok=%v err=%v", v, ok, err)
	}

	// Overwrite replaces the old value.
	if err := s.Set("splashbot/auth/user_id", "u-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _, _ = s.Get("splashbot/auth/user_id")
	if v != "u-2" {
		t.Fatalf("expected overwritten value, got %q", v)
	}

	if err := s.Delete("splashbot/auth/user_id"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get("splashbot/auth/user_id"); ok {
		t.Fatalf("expected key gone after delete")
	}

	// Deleting again is a no-op.
	if err := s.Delete("splashbot/auth/user_id"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	if err := s.Set("splashbot/chat/state", `{"version":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v, ok, err := s2.Get("splashbot/chat/state")
	if err != nil || !ok || v != `{"version":1}` {
		t.Fatalf("value did not survive reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}

package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/miosa/splash-tui/kv"
)

func testStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	db, err := kv.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := NewStore(db)
	s.now = func() time.Time { return now }
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := testStore(t, now)

	if err := s.Save("user-1", "id-token", "refresh-token", 3600); err != nil {
		t.Fatalf("save: %v", err)
	}

	creds, ok := s.Load()
	if !ok {
		t.Fatalf("expected credential present")
	}
	if creds.UserID != "user-1" || creds.IDToken != "id-token" || creds.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected credential: %+v", creds)
	}
	if !creds.IssuedAt.Equal(now) {
		t.Fatalf("issued at %v, want %v", creds.IssuedAt, now)
	}
	if !creds.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expires at %v, want %v", creds.ExpiresAt, now.Add(time.Hour))
	}
}

func TestLoadAbsentAndPartial(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := testStore(t, now)

	if _, ok := s.Load(); ok {
		t.Fatalf("empty store should have no credential")
	}

	// A partially cleared credential must read as absent, never half-valid.
	if err := s.Save("user-1", "id-token", "refresh-token", 3600); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.kv.Delete("splashbot/auth/expires_at"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Load(); ok {
		t.Fatalf("credential missing a field should be absent")
	}
	if s.IsValid(now) {
		t.Fatalf("partial credential must not be valid")
	}
}

func TestIsValidBoundary(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := testStore(t, now)

	// Expires in one hour.
	if err := s.Save("user-1", "id-token", "refresh-token", 3600); err != nil {
		t.Fatalf("save: %v", err)
	}
	edge := now.Add(time.Hour).Add(-RefreshBuffer)

	if !s.IsValid(edge.Add(-time.Millisecond)) {
		t.Fatalf("just inside the buffer edge should be valid")
	}
	if s.IsValid(edge) {
		t.Fatalf("exactly at expiresAt-buffer should be invalid")
	}
	if s.IsValid(edge.Add(time.Minute)) {
		t.Fatalf("past the buffer edge should be invalid")
	}
}

func TestClear(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := testStore(t, now)

	if err := s.Save("user-1", "id-token", "refresh-token", 3600); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Load(); ok {
		t.Fatalf("credential should be gone after clear")
	}
	if s.IsValid(now) {
		t.Fatalf("cleared credential must be invalid")
	}
}

func TestSaveFallsBackToJWTExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := testStore(t, now)

	// Unsigned token with exp one day out; header/claims are standard JWT
	// base64url segments, signature intentionally bogus (never verified).
	exp := now.Add(24 * time.Hour)
	token := makeUnsignedJWT(t, exp)

	if err := s.Save("user-1", token, "refresh-token", 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	creds, ok := s.Load()
	if !ok {
		t.Fatalf("expected credential present")
	}
	if creds.ExpiresAt.Unix() != exp.Unix() {
		t.Fatalf("expires at %v, want %v", creds.ExpiresAt, exp)
	}
}

func makeUnsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

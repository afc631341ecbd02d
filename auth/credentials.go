// Package auth holds the persisted login credential and the token-readiness
// guard. A credential is all-or-nothing: either every field round-trips
// through the profile's state database or Load reports it absent.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/miosa/splash-tui/kv"
)

// RefreshBuffer is subtracted from the token expiry when checking validity,
// so calls never fire with a token about to go stale mid-request.
const RefreshBuffer = 5 * time.Minute

// ErrNotAuthenticated is returned by operations that need a valid credential
// when none is available. The only recovery is logging in again; token
// refresh is not implemented.
var ErrNotAuthenticated = errors.New("not authenticated")

// Storage keys. The expiry key doubles as the validity marker: clearing it
// first guarantees a half-cleared credential can never read as valid.
const (
	keyUserID       = "splashbot/auth/user_id"
	keyIDToken      = "splashbot/auth/id_token"
	keyRefreshToken = "splashbot/auth/refresh_token"
	keyIssuedAt     = "splashbot/auth/issued_at"
	keyExpiresAt    = "splashbot/auth/expires_at"
)

// Credentials is the authenticated identity as issued by the token exchange.
type Credentials struct {
	UserID       string
	IDToken      string
	RefreshToken string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Store persists Credentials in the profile state database.
type Store struct {
	kv  *kv.Store
	now func() time.Time
}

// NewStore returns a credential store over the given state database.
func NewStore(db *kv.Store) *Store {
	return &Store{kv: db, now: time.Now}
}

// Save persists the credential issued now. expiresIn is the token lifetime
// in seconds as reported by the identity provider; when it is missing or
// nonsensical the unverified exp claim of the ID token is used instead.
func (s *Store) Save(userID, idToken, refreshToken string, expiresIn int) error {
	issued := s.now()
	expires := issued.Add(time.Duration(expiresIn) * time.Second)
	if expiresIn <= 0 {
		if exp, ok := tokenExpiry(idToken); ok {
			expires = exp
		}
	}

	pairs := []struct{ k, v string }{
		{keyUserID, userID},
		{keyIDToken, idToken},
		{keyRefreshToken, refreshToken},
		{keyIssuedAt, strconv.FormatInt(issued.UnixMilli(), 10)},
		// Written last so a partial write is invalid, not half-valid.
		{keyExpiresAt, strconv.FormatInt(expires.UnixMilli(), 10)},
	}
	for _, p := range pairs {
		if err := s.kv.Set(p.k, p.v); err != nil {
			return fmt.Errorf("save credential: %w", err)
		}
	}
	return nil
}

// Load reads the persisted credential. Any missing field makes the whole
// credential absent.
func (s *Store) Load() (Credentials, bool) {
	userID, ok := s.get(keyUserID)
	if !ok {
		return Credentials{}, false
	}
	idToken, ok := s.get(keyIDToken)
	if !ok {
		return Credentials{}, false
	}
	refreshToken, ok := s.get(keyRefreshToken)
	if !ok {
		return Credentials{}, false
	}
	issuedAt, ok := s.getMillis(keyIssuedAt)
	if !ok {
		return Credentials{}, false
	}
	expiresAt, ok := s.getMillis(keyExpiresAt)
	if !ok {
		return Credentials{}, false
	}
	return Credentials{
		UserID:       userID,
		IDToken:      idToken,
		RefreshToken: refreshToken,
		IssuedAt:     issuedAt,
		ExpiresAt:    expiresAt,
	}, true
}

// IsValid reports whether a credential exists and is not within the refresh
// buffer of its expiry at now.
func (s *Store) IsValid(now time.Time) bool {
	creds, ok := s.Load()
	if !ok {
		return false
	}
	return now.Before(creds.ExpiresAt.Add(-RefreshBuffer))
}

// Clear removes the persisted credential. The expiry marker is deleted
// first so an interrupted clear always leaves an invalid credential.
func (s *Store) Clear() error {
	for _, k := range []string{keyExpiresAt, keyIssuedAt, keyRefreshToken, keyIDToken, keyUserID} {
		if err := s.kv.Delete(k); err != nil {
			return fmt.Errorf("clear credential: %w", err)
		}
	}
	return nil
}

func (s *Store) get(key string) (string, bool) {
	v, ok, err := s.kv.Get(key)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *Store) getMillis(key string) (time.Time, bool) {
	v, ok := s.get(key)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature. Verification belongs to the backend; the client only needs the
// timestamp to schedule re-login.
func tokenExpiry(idToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

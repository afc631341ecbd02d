package auth

import (
	"sync"
	"time"
)

// TokenGracePeriod is how long the identity provider takes to accept a
// freshly minted ID token. Requests sent earlier are rejected with a
// token-used-too-early error, so every authenticated call waits this long
// after issuance before touching the network.
const TokenGracePeriod = 2 * time.Second

// ReadyGuard tracks when the current ID token was issued and lets callers
// block until the grace period has elapsed. With no issuance on record it is
// fail-open: an unknown issuance time is treated as ready.
type ReadyGuard struct {
	mu       sync.Mutex
	issuedAt time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewReadyGuard returns a guard using the real clock.
func NewReadyGuard() *ReadyGuard {
	return &ReadyGuard{now: time.Now, sleep: time.Sleep}
}

// RecordIssuance notes that a new token was issued at t.
func (g *ReadyGuard) RecordIssuance(t time.Time) {
	g.mu.Lock()
	g.issuedAt = t
	g.mu.Unlock()
}

// IsReady reports whether the grace period has elapsed at now.
func (g *ReadyGuard) IsReady(now time.Time) bool {
	g.mu.Lock()
	issued := g.issuedAt
	g.mu.Unlock()
	if issued.IsZero() {
		return true
	}
	return now.After(issued.Add(TokenGracePeriod))
}

// WaitUntilReady blocks the calling goroutine until the grace period has
// elapsed, then returns. It returns immediately when no issuance time is on
// record or the period has already passed.
func (g *ReadyGuard) WaitUntilReady() {
	g.mu.Lock()
	issued := g.issuedAt
	g.mu.Unlock()
	if issued.IsZero() {
		return
	}
	remaining := issued.Add(TokenGracePeriod).Sub(g.now())
	if remaining <= 0 {
		return
	}
	g.sleep(remaining)
}

package auth

import (
	"testing"
	"time"
)

func TestIsReadyNoIssuance(t *testing.T) {
	g := NewReadyGuard()
	if !g.IsReady(time.Now()) {
		t.Fatalf("guard with no issuance should be ready")
	}
}

func TestIsReadyWithinGrace(t *testing.T) {
	g := NewReadyGuard()
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g.RecordIssuance(issued)

	if g.IsReady(issued) {
		t.Fatalf("should not be ready at issuance")
	}
	if g.IsReady(issued.Add(TokenGracePeriod)) {
		t.Fatalf("should not be ready at exactly issuedAt+grace")
	}
	if !g.IsReady(issued.Add(TokenGracePeriod + time.Millisecond)) {
		t.Fatalf("should be ready past the grace period")
	}
}

func TestWaitUntilReadySleepsRemainder(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued.Add(500 * time.Millisecond)

	var slept time.Duration
	g := &ReadyGuard{
		now:   func() time.Time { return now },
		sleep: func(d time.Duration) { slept = d },
	}
	g.RecordIssuance(issued)
	g.WaitUntilReady()

	// Called 500ms after issuance, the guard must wait the remaining 1500ms
	// so the caller resumes no earlier than issuedAt+2000ms.
	if slept != 1500*time.Millisecond {
		t.Fatalf("expected 1500ms sleep, got %v", slept)
	}
}

func TestWaitUntilReadyImmediateCases(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var slept bool
	g := &ReadyGuard{
		now:   func() time.Time { return issued.Add(TokenGracePeriod) },
		sleep: func(time.Duration) { slept = true },
	}

	// No issuance recorded: fail-open, return without sleeping.
	g.WaitUntilReady()
	if slept {
		t.Fatalf("should not sleep with no issuance on record")
	}

	// Grace already elapsed: return without sleeping.
	g.RecordIssuance(issued)
	g.WaitUntilReady()
	if slept {
		t.Fatalf("should not sleep once the grace period has passed")
	}
}

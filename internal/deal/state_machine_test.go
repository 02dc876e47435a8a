package deal

import (
	"testing"
	"time"
)

func TestCanTransitionAndAdvance(t *testing.T) {
	if !CanTransition(AttemptPending, AttemptValidated) {
		t.Fatalf("expected pending -> validated allowed")
	}
	if !CanTransition(AttemptRetrying, AttemptPending) {
		t.Fatalf("expected retrying -> pending allowed")
	}
	if CanTransition(AttemptCommitted, AttemptPending) {
		t.Fatalf("expected committed to be terminal")
	}
	if CanTransition(AttemptAborted, AttemptValidated) {
		t.Fatalf("expected aborted to be terminal")
	}
	if CanTransition(AttemptPending, AttemptCommitted) {
		t.Fatalf("expected pending -> committed shortcut not allowed")
	}

	now := time.Now()
	a := NewAttempt("buyer-1", "deal-1", now)
	if a.Status != AttemptPending {
		t.Fatalf("expected new attempt pending, got %s", a.Status)
	}
	if err := a.Advance(AttemptValidated, now); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if err := a.Advance(AttemptCommitted, now); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !a.Terminal() {
		t.Fatalf("expected committed attempt to be terminal")
	}
	if a.FinishedAt == nil {
		t.Fatalf("expected finished timestamp set on terminal status")
	}
	if err := a.Advance(AttemptPending, now); err == nil {
		t.Fatalf("expected transition out of terminal status to fail")
	}
}

package model

import (
	"testing"
	"time"
)

func pendingSession(expiry time.Time) *BookingSession {
	return &BookingSession{
		ID:         "sess-1",
		UserID:     42,
		ShowtimeID: 7,
		Status:     SessionPending,
		ExpiresAt:  expiry,
		CreatedAt:  expiry.Add(-5 * time.Minute),
	}
}

func TestCheckoutEligible(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	s := pendingSession(expiry)

	if !s.CheckoutEligible(expiry.Add(-time.Second)) {
		t.Error("pending session before expiry should be eligible")
	}
	if s.CheckoutEligible(expiry) {
		t.Error("now == expiry should not be eligible (strictly before)")
	}
	if s.CheckoutEligible(expiry.Add(time.Second)) {
		t.Error("past expiry should not be eligible")
	}

	for _, st := range []SessionStatus{SessionPaid, SessionExpired, SessionCancelled} {
		s := pendingSession(expiry)
		s.Status = st
		if s.CheckoutEligible(expiry.Add(-time.Minute)) {
			t.Errorf("status %s should never be eligible", st)
		}
	}
}

func TestTransition(t *testing.T) {
	expiry := time.Now().UTC().Add(5 * time.Minute)

	for _, to := range []SessionStatus{SessionPaid, SessionCancelled, SessionExpired} {
		s := pendingSession(expiry)
		if err := s.Transition(to); err != nil {
			t.Errorf("pending -> %s: unexpected error %v", to, err)
		}
		if s.Status != to {
			t.Errorf("pending -> %s: status = %s", to, s.Status)
		}
	}

	// Terminal states accept no further transitions.
	s := pendingSession(expiry)
	_ = s.Transition(SessionPaid)
	if err := s.Transition(SessionExpired); err == nil {
		t.Error("paid -> expired should be rejected")
	}
	if s.Status != SessionPaid {
		t.Errorf("status mutated on rejected transition: %s", s.Status)
	}

	// Self-transition is a no-op, not an error.
	if err := s.Transition(SessionPaid); err != nil {
		t.Errorf("paid -> paid should no-op, got %v", err)
	}

	// Pending cannot "transition" to pending's siblings' source.
	s = pendingSession(expiry)
	if err := s.Transition(SessionPending); err != nil {
		t.Errorf("pending -> pending should no-op, got %v", err)
	}
}

func TestExpire(t *testing.T) {
	s := pendingSession(time.Now().UTC())
	if !s.Expire() {
		t.Error("pending session should expire")
	}
	if s.Status != SessionExpired {
		t.Errorf("status = %s, want expired", s.Status)
	}
	if s.Expire() {
		t.Error("second Expire should report no transition")
	}

	s = pendingSession(time.Now().UTC())
	_ = s.Transition(SessionCancelled)
	if s.Expire() {
		t.Error("cancelled session must not flip to expired")
	}
}

func TestStatusTerminal(t *testing.T) {
	if SessionPending.Terminal() {
		t.Error("pending is not terminal")
	}
	for _, st := range []SessionStatus{SessionPaid, SessionExpired, SessionCancelled} {
		if !st.Terminal() {
			t.Errorf("%s should be terminal", st)
		}
	}
}

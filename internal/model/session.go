package model

import (
	"fmt"
	"time"
)

// SessionStatus is the state of a server-granted booking session.  The
// machine is PENDING -> {PAID, CANCELLED, EXPIRED}; all three targets
// are terminal.  Only the PENDING -> EXPIRED transition is driven
// locally (by the countdown clock reaching zero); PAID and CANCELLED
// arrive from the storefront API.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionPaid      SessionStatus = "paid"
	SessionExpired   SessionStatus = "expired"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionPaid || s == SessionExpired || s == SessionCancelled
}

// BookingSession represents the reservation window the storefront API
// granted when the user opened a showtime's seat map.  It gates checkout
// eligibility: the session is usable only while the status is PENDING
// and the current time is strictly before the expiry timestamp.
//
// Fields:
//  ID         – session identifier issued by the storefront API.
//  UserID     – user who owns the session.
//  ShowtimeID – showtime the session is scoped to.
//  Status     – current state of the session.
//  ExpiresAt  – when the reservation window closes.
//  CreatedAt  – when the session was granted.
type BookingSession struct {
	ID         string        `json:"id"`
	UserID     uint64        `json:"user_id"`
	ShowtimeID uint64        `json:"showtime_id"`
	Status     SessionStatus `json:"status"`
	ExpiresAt  time.Time     `json:"expires_at"`
	CreatedAt  time.Time     `json:"created_at"`
}

// CheckoutEligible reports whether the session may proceed to checkout
// at the given instant.  It must be evaluated with a fresh "now" at the
// moment of checkout, never from a cached result, because time has
// elapsed since the session was granted.
func (s *BookingSession) CheckoutEligible(now time.Time) bool {
	return s.Status == SessionPending && now.Before(s.ExpiresAt)
}

// Transition moves the session to a new status, enforcing the state
// machine: only PENDING -> {PAID, CANCELLED, EXPIRED} is legal.  A
// transition to the current status is a no-op.  Illegal moves return an
// error and leave the session untouched.
func (s *BookingSession) Transition(to SessionStatus) error {
	if to == s.Status {
		return nil
	}
	if s.Status != SessionPending || !to.Terminal() {
		return fmt.Errorf("illegal session transition %s -> %s", s.Status, to)
	}
	s.Status = to
	return nil
}

// Expire drives the single locally-owned transition, PENDING -> EXPIRED.
// It returns true when the session actually transitioned, false when the
// session was already terminal.
func (s *BookingSession) Expire() bool {
	if s.Status != SessionPending {
		return false
	}
	s.Status = SessionExpired
	return true
}

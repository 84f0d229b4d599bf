// Package gate is the final admission check before a booking flow hands
// off to payment.  It is evaluated synchronously at the moment the user
// asks to check out, against a fresh timestamp, never against state
// cached at render time.
package gate

import (
	"errors"
	"time"

	"github.com/cinebook/booking-flow/internal/model"
)

// ErrNoActiveSession is returned when no booking session exists for the
// flow.  Handlers should translate this into a redirect back to the
// showtime page.
var ErrNoActiveSession = errors.New("no active booking session")

// ErrSessionExpired is returned when the session's expiry timestamp has
// passed (or the session already went terminal).  Always user-visible:
// "your session expired, please restart".
var ErrSessionExpired = errors.New("booking session expired")

// ErrEmptySelection is returned when the selection set has no members.
// Surfaced as inline validation; the user stays on the seat map.
var ErrEmptySelection = errors.New("no seats selected")

// Handoff is the validated payload passed to the checkout collaborator.
// Assembling it is the gate's only output; the gate never mutates the
// session itself.
//
// Fields:
//  Session    – the eligible booking session.
//  Showtime   – movie/room/pricing context for the payment step.
//  Seats      – selected seats in insertion order; never empty.
//  TotalCents – sum over seats of base price + seat type surcharge.
type Handoff struct {
	Session    model.BookingSession
	Showtime   model.Showtime
	Seats      []model.Seat
	TotalCents uint32
}

// CanCheckout decides whether the flow may proceed to payment at the
// given instant.  Checks run in order: a session must exist, it must
// still be eligible (PENDING and now strictly before expiry), and the
// selection must be non-empty.  An expired countdown with a still
// PENDING status counts as expired here: the clock and this gate must
// agree even when the server has not flipped the status yet.
func CanCheckout(sess *model.BookingSession, seats []model.Seat, now time.Time) error {
	if sess == nil {
		return ErrNoActiveSession
	}
	if !sess.CheckoutEligible(now) {
		return ErrSessionExpired
	}
	if len(seats) == 0 {
		return ErrEmptySelection
	}
	return nil
}

// Prepare runs CanCheckout and, on success, assembles the handoff
// payload.
func Prepare(sess *model.BookingSession, show model.Showtime, seats []model.Seat, now time.Time) (*Handoff, error) {
	if err := CanCheckout(sess, seats, now); err != nil {
		return nil, err
	}
	var total uint32
	for _, s := range seats {
		total += s.PriceCents(show.BasePriceCents)
	}
	return &Handoff{
		Session:    *sess,
		Showtime:   show,
		Seats:      seats,
		TotalCents: total,
	}, nil
}

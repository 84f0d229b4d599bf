// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckoutHandoffEvent is published when the checkout gate admits a
// selection and the handoff to the storefront's payment pipeline
// succeeds.  It carries enough context for downstream consumers to log,
// notify or feed analytics without querying anything else.
type CheckoutHandoffEvent struct {
	BookingID        string   `json:"booking_id"`
	SessionID        string   `json:"session_id"`
	UserID           uint64   `json:"user_id"`
	ShowtimeID       uint64   `json:"showtime_id"`
	MovieTitle       string   `json:"movie_title"`
	CinemaName       string   `json:"cinema_name"`
	RoomName         string   `json:"room_name"`
	SeatLabels       []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	HandedOffAt      string   `json:"handed_off_at"`
}

// SessionExpiredEvent is published when a flow's countdown reaches zero
// and the booking session transitions to expired.  Consumers use it to
// measure how many reservation windows lapse unused.
type SessionExpiredEvent struct {
	SessionID  string `json:"session_id"`
	UserID     uint64 `json:"user_id"`
	ShowtimeID uint64 `json:"showtime_id"`
	ExpiredAt  string `json:"expired_at"`
}

package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/booking-flow/internal/model"
)

func eligibleSession(expiry time.Time) *model.BookingSession {
	return &model.BookingSession{
		ID:         "sess-9",
		UserID:     3,
		ShowtimeID: 12,
		Status:     model.SessionPending,
		ExpiresAt:  expiry,
	}
}

func someSeats() []model.Seat {
	vip := model.SeatType{Name: "vip", ExtraPriceCents: 250}
	return []model.Seat{
		{ID: 10, Row: "A", Column: 1, Type: vip, Status: model.SeatAvailable},
		{ID: 11, Row: "A", Column: 2, Type: vip, Status: model.SeatAvailable},
	}
}

func TestCanCheckout(t *testing.T) {
	now := time.Date(2025, 6, 1, 19, 55, 0, 0, time.UTC)
	expiry := now.Add(5 * time.Minute)

	t.Run("admits eligible session with selection", func(t *testing.T) {
		assert.NoError(t, CanCheckout(eligibleSession(expiry), someSeats(), now))
	})

	t.Run("nil session", func(t *testing.T) {
		assert.ErrorIs(t, CanCheckout(nil, someSeats(), now), ErrNoActiveSession)
	})

	t.Run("expired wins over non-empty selection", func(t *testing.T) {
		s := eligibleSession(expiry)
		assert.ErrorIs(t, CanCheckout(s, someSeats(), expiry), ErrSessionExpired)
		assert.ErrorIs(t, CanCheckout(s, someSeats(), expiry.Add(time.Hour)), ErrSessionExpired)
	})

	t.Run("terminal status counts as expired", func(t *testing.T) {
		s := eligibleSession(expiry)
		s.Status = model.SessionCancelled
		assert.ErrorIs(t, CanCheckout(s, someSeats(), now), ErrSessionExpired)
	})

	t.Run("empty selection on eligible session", func(t *testing.T) {
		assert.ErrorIs(t, CanCheckout(eligibleSession(expiry), nil, now), ErrEmptySelection)
	})
}

func TestPrepare(t *testing.T) {
	now := time.Now().UTC()
	sess := eligibleSession(now.Add(3 * time.Minute))
	show := model.Showtime{
		ID:             12,
		MovieTitle:     "Solaris",
		BasePriceCents: 1500,
		StartsAt:       now.Add(time.Hour),
		EndsAt:         now.Add(3 * time.Hour),
	}

	h, err := Prepare(sess, show, someSeats(), now)
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, sess.ID, h.Session.ID)
	assert.Equal(t, show.ID, h.Showtime.ID)
	assert.Len(t, h.Seats, 2)
	// 2 * (1500 base + 250 vip surcharge)
	assert.Equal(t, uint32(3500), h.TotalCents)
}

func TestPrepareRejectsWithoutAssembling(t *testing.T) {
	now := time.Now().UTC()
	show := model.Showtime{ID: 12, BasePriceCents: 1500}

	h, err := Prepare(nil, show, someSeats(), now)
	require.Nil(t, h)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	h, err = Prepare(eligibleSession(now.Add(time.Minute)), show, nil, now)
	require.Nil(t, h)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/booking-flow/internal/gate"
	"github.com/cinebook/booking-flow/internal/model"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/showtimes/12/sessions", r.URL.Path)

		var body map[string]uint64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, uint64(12), body["showtime_id"])
		assert.Equal(t, uint64(42), body["user_id"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":         "sess-abc",
			"status":     "pending",
			"expires_at": "2025-06-01T20:05:00Z",
			"created_at": "2025-06-01T20:00:00Z",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	sess, err := c.CreateSession(context.Background(), 12, 42)
	require.NoError(t, err)

	assert.Equal(t, "sess-abc", sess.ID)
	assert.Equal(t, uint64(42), sess.UserID)
	assert.Equal(t, uint64(12), sess.ShowtimeID)
	assert.Equal(t, model.SessionPending, sess.Status)
	assert.Equal(t, time.Date(2025, 6, 1, 20, 5, 0, 0, time.UTC), sess.ExpiresAt.UTC())
	assert.Equal(t, time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC), sess.CreatedAt.UTC())
}

func TestCreateSessionFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no capacity", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, nil).CreateSession(context.Background(), 12, 42)
		assert.ErrorIs(t, err, ErrSessionCreate)
	})

	t.Run("bad expiry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":         "sess-abc",
				"expires_at": "next tuesday",
			})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, nil).CreateSession(context.Background(), 12, 42)
		assert.ErrorIs(t, err, ErrSessionCreate)
	})
}

func TestFetchSeats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/showtimes/12/seats", r.URL.Path)
		_, _ = w.Write([]byte(`{"seats":[
			{"id":1,"row":"A","column":1,"seat_type":{"name":"standard","extra_price":0},"status":"available"},
			{"id":2,"row":"A","column":2,"seat_type":{"name":"vip","extra_price":500},"status":"reserved"}
		]}`))
	}))
	defer srv.Close()

	seats, err := NewClient(srv.URL, nil).FetchSeats(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, "A1", seats[0].Label())
	assert.Equal(t, model.SeatAvailable, seats[0].Status)
	assert.Equal(t, model.SeatReserved, seats[1].Status)
	assert.Equal(t, uint32(500), seats[1].Type.ExtraPriceCents)
}

func TestFetchSeatsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	seats, err := NewClient(srv.URL, nil).FetchSeats(context.Background(), 12)
	assert.ErrorIs(t, err, ErrSeatFetch)
	assert.Nil(t, seats, "a failed fetch must not look like an empty seat list")
}

func TestGetShowtime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/showtimes/12", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          12,
			"movie_title": "Solaris",
			"cinema_name": "Downtown",
			"room_name":   "Room 2",
			"base_price":  1500,
			"starts_at":   "2025-06-01T21:00:00Z",
			"ends_at":     "2025-06-01T23:45:00Z",
		})
	}))
	defer srv.Close()

	show, err := NewClient(srv.URL, nil).GetShowtime(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "Solaris", show.MovieTitle)
	assert.Equal(t, uint32(1500), show.BasePriceCents)
	assert.True(t, show.EndsAt.After(show.StartsAt))
}

func TestGetShowtimeRejectsInvalidRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ends before it starts
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          12,
			"movie_title": "Solaris",
			"base_price":  1500,
			"starts_at":   "2025-06-01T21:00:00Z",
			"ends_at":     "2025-06-01T20:00:00Z",
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).GetShowtime(context.Background(), 12)
	assert.ErrorIs(t, err, ErrShowtimeFetch)
}

func testHandoff() *gate.Handoff {
	vip := model.SeatType{Name: "vip", ExtraPriceCents: 250}
	return &gate.Handoff{
		Session:  model.BookingSession{ID: "sess-abc", UserID: 42, ShowtimeID: 12, Status: model.SessionPending},
		Showtime: model.Showtime{ID: 12, MovieTitle: "Solaris", BasePriceCents: 1500},
		Seats: []model.Seat{
			{ID: 10, Row: "A", Column: 1, Type: vip, Status: model.SeatAvailable},
			{ID: 11, Row: "A", Column: 2, Type: vip, Status: model.SeatAvailable},
		},
		TotalCents: 3500,
	}
}

func TestCheckout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/checkout", r.URL.Path)

		var body struct {
			SessionID  string   `json:"session_id"`
			ShowtimeID uint64   `json:"showtime_id"`
			MovieTitle string   `json:"movie"`
			SeatIDs    []uint64 `json:"seat_ids"`
			TotalCents uint32   `json:"total_amount_cents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sess-abc", body.SessionID)
		assert.Equal(t, []uint64{10, 11}, body.SeatIDs)
		assert.Equal(t, uint32(3500), body.TotalCents)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Checkout(context.Background(), testHandoff())
	assert.NoError(t, err)
}

func TestCheckoutConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"conflicts": []uint64{11}})
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Checkout(context.Background(), testHandoff())
	require.ErrorIs(t, err, ErrSeatConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []uint64{11}, conflict.SeatIDs)
}

func TestCheckoutRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "payment backend down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Checkout(context.Background(), testHandoff())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSeatConflict)
}

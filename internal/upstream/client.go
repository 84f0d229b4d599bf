// Package upstream implements the HTTP clients for the booking flow's
// external collaborators: the storefront API that grants booking
// sessions, serves seat maps and showtime details, and receives the
// checkout handoff.  Timestamps cross this boundary as ISO-8601 strings
// and are converted to time.Time here; the rest of the core never
// parses wire formats.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cinebook/booking-flow/internal/gate"
	"github.com/cinebook/booking-flow/internal/model"
)

// ErrSessionCreate is returned when the storefront could not grant a
// booking session (network or server failure).  The booking flow is
// aborted and the user is sent away from the seat map.
var ErrSessionCreate = errors.New("booking session creation failed")

// ErrSeatFetch is returned when the seat list is unavailable.
// Recoverable: the flow keeps its loading/error state and the caller
// owns the retry policy.
var ErrSeatFetch = errors.New("seat fetch failed")

// ErrShowtimeFetch is returned when showtime details cannot be loaded.
var ErrShowtimeFetch = errors.New("showtime fetch failed")

// ErrSeatConflict is returned when checkout is rejected because another
// user took one or more of the selected seats first.  The gateway maps
// it to a "seat no longer available, please reselect" flow.
var ErrSeatConflict = errors.New("seat no longer available")

// ConflictError carries ErrSeatConflict together with the seat ids the
// storefront reported as contested.
type ConflictError struct {
	SeatIDs []uint64
}

func (e *ConflictError) Error() string { return ErrSeatConflict.Error() }

// Unwrap lets errors.Is(err, ErrSeatConflict) match.
func (e *ConflictError) Unwrap() error { return ErrSeatConflict }

// Client talks to the storefront API.  All methods honour the passed
// context; requests superseded by navigation are cancelled through it.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient returns a Client for the given base URL ("https://host" with
// no trailing slash).  A nil http.Client falls back to a default with a
// 10 second timeout.
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: base, hc: hc}
}

// sessionDTO mirrors the storefront's session record.  Expiry arrives as
// an ISO-8601 string.
type sessionDTO struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

// CreateSession asks the storefront to open a booking session for the
// showtime on behalf of the user.  Any transport or non-201/200 response
// is wrapped in ErrSessionCreate.
func (c *Client) CreateSession(ctx context.Context, showtimeID, userID uint64) (*model.BookingSession, error) {
	body, _ := json.Marshal(map[string]uint64{"showtime_id": showtimeID, "user_id": userID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/showtimes/%d/sessions", c.base, showtimeID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSessionCreate, resp.StatusCode)
	}
	var dto sessionDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSessionCreate, err)
	}
	expires, err := time.Parse(time.RFC3339, dto.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad expiry %q", ErrSessionCreate, dto.ExpiresAt)
	}
	created := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, dto.CreatedAt); err == nil {
		created = t
	}
	status := model.SessionStatus(dto.Status)
	if status == "" {
		status = model.SessionPending
	}
	return &model.BookingSession{
		ID:         dto.ID,
		UserID:     userID,
		ShowtimeID: showtimeID,
		Status:     status,
		ExpiresAt:  expires,
		CreatedAt:  created,
	}, nil
}

// FetchSeats loads the ordered seat list for a showtime.  A fetch error
// is never folded into "no seats": failures surface as ErrSeatFetch and
// the catalog keeps whatever it had.
func (c *Client) FetchSeats(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/showtimes/%d/seats", c.base, showtimeID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeatFetch, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeatFetch, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSeatFetch, resp.StatusCode)
	}
	var out struct {
		Seats []model.Seat `json:"seats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSeatFetch, err)
	}
	return out.Seats, nil
}

// showtimeDTO mirrors the storefront's showtime record with ISO-8601
// timestamps.
type showtimeDTO struct {
	ID             uint64 `json:"id"`
	MovieTitle     string `json:"movie_title"`
	CinemaName     string `json:"cinema_name"`
	RoomName       string `json:"room_name"`
	BasePriceCents uint32 `json:"base_price"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
}

// GetShowtime loads the showtime details used as the immutable context
// of a booking flow.
func (c *Client) GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/showtimes/%d", c.base, id), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShowtimeFetch, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShowtimeFetch, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrShowtimeFetch, resp.StatusCode)
	}
	var dto showtimeDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrShowtimeFetch, err)
	}
	starts, err := time.Parse(time.RFC3339, dto.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad starts_at %q", ErrShowtimeFetch, dto.StartsAt)
	}
	ends, err := time.Parse(time.RFC3339, dto.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ends_at %q", ErrShowtimeFetch, dto.EndsAt)
	}
	show := &model.Showtime{
		ID:             dto.ID,
		MovieTitle:     dto.MovieTitle,
		CinemaName:     dto.CinemaName,
		RoomName:       dto.RoomName,
		BasePriceCents: dto.BasePriceCents,
		StartsAt:       starts,
		EndsAt:         ends,
	}
	if !show.Valid() {
		return nil, fmt.Errorf("%w: invalid showtime record", ErrShowtimeFetch)
	}
	return show, nil
}

// checkoutRequest is the handoff payload: the movie/showtime context and
// the validated, non-empty selection.  Everything after this call
// (payment, final booking record) belongs to the storefront.
type checkoutRequest struct {
	SessionID  string   `json:"session_id"`
	ShowtimeID uint64   `json:"showtime_id"`
	MovieTitle string   `json:"movie"`
	SeatIDs    []uint64 `json:"seat_ids"`
	TotalCents uint32   `json:"total_amount_cents"`
}

// Checkout hands a gate-validated selection to the storefront's payment
// pipeline.  A 409 response means another user won one or more of the
// seats; the contested ids are returned inside a *ConflictError so the
// flow can evict them and prompt a reselect.
func (c *Client) Checkout(ctx context.Context, h *gate.Handoff) error {
	ids := make([]uint64, 0, len(h.Seats))
	for _, s := range h.Seats {
		ids = append(ids, s.ID)
	}
	body, _ := json.Marshal(checkoutRequest{
		SessionID:  h.Session.ID,
		ShowtimeID: h.Showtime.ID,
		MovieTitle: h.Showtime.MovieTitle,
		SeatIDs:    ids,
		TotalCents: h.TotalCents,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/api/checkout", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)
	switch {
	case resp.StatusCode == http.StatusConflict:
		var out struct {
			Conflicts []uint64 `json:"conflicts"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return &ConflictError{SeatIDs: out.Conflicts}
	case resp.StatusCode >= 300:
		return fmt.Errorf("checkout handoff rejected: status %d", resp.StatusCode)
	}
	return nil
}

// drain discards the remaining body so the transport can reuse the
// connection, then closes it.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-flow/internal/flow"
	"github.com/cinebook/booking-flow/internal/gate"
	"github.com/cinebook/booking-flow/internal/model"
	"github.com/cinebook/booking-flow/internal/queue"
	"github.com/cinebook/booking-flow/internal/repository"
	queue_publisher "github.com/cinebook/booking-flow/internal/service"
	"github.com/cinebook/booking-flow/internal/upstream"
)

// BookingHandler exposes the booking-flow lifecycle: open a flow for a
// showtime, read its live state, toggle seats, refresh the catalog,
// check out and leave.  All methods assume JWT authentication ran
// first; they return 401 when the user id cannot be extracted from the
// context and 403 when a flow belongs to a different user.
type BookingHandler struct {
	Flows    *flow.Registry          // active flows of this gateway instance
	Upstream *upstream.Client        // storefront API collaborators
	Journal  *repository.JournalRepo // optional durable handoff journal (nil when disabled)
}

// NewBookingHandler constructs a BookingHandler.  Flows and Upstream
// must be non-nil; Journal may be nil when the journal DB is not
// configured.
func NewBookingHandler(flows *flow.Registry, up *upstream.Client, journal *repository.JournalRepo) *BookingHandler {
	if flows == nil || up == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Flows: flows, Upstream: up, Journal: journal}
}

// Open handles POST /v1/showtimes/:id/booking.  It loads the showtime,
// asks the storefront to grant a booking session and starts the flow
// actor: the countdown begins immediately and the seat fetch is put in
// flight.  Opening a second flow for the same user and showtime
// supersedes the first.  A session-grant failure aborts the flow and
// returns 502 so the client can fall back to its invalid-booking state.
func (h *BookingHandler) Open(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()
	show, err := h.Upstream.GetShowtime(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, upstream.ErrShowtimeFetch) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "showtime unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtime"})
	}
	sess, err := h.Upstream.CreateSession(ctx, showtimeID, userID)
	if err != nil {
		// SessionCreationFailed: the booking is invalid, the client
		// leaves the seat map.  No flow is retained.
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "could not start booking session"})
	}
	f := flow.Open(sess, *show, h.Upstream, func(s model.BookingSession) {
		ev := queue.SessionExpiredEvent{
			SessionID:  s.ID,
			UserID:     s.UserID,
			ShowtimeID: s.ShowtimeID,
			ExpiredAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := queue_publisher.PublishSessionExpired(context.Background(), ev); err != nil {
			log.Printf("booking: publish session expired failed: %v", err)
		}
	})
	h.Flows.Put(f)
	snap, err := f.Snapshot()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to open booking"})
	}
	return c.JSON(http.StatusCreated, snap)
}

// Get handles GET /v1/bookings/:id.  It returns the flow snapshot: the
// seat map with effective statuses, the current selection and total,
// remaining seconds with display string and urgency flag, and the
// session state.  The snapshot is valid even while the seat fetch is
// still outstanding (seats_loaded false, seats empty).
func (h *BookingHandler) Get(c echo.Context) error {
	f, errResp := h.ownedFlow(c)
	if errResp != nil {
		return errResp(c)
	}
	snap, err := f.Snapshot()
	if err != nil {
		return c.JSON(http.StatusGone, echo.Map{"error": "booking flow closed"})
	}
	return c.JSON(http.StatusOK, snap)
}

// Toggle handles POST /v1/bookings/:id/seats/:seatID/toggle.  Toggling
// a reserved or unavailable seat is a silent no-op mirroring a disabled
// control: the response carries changed=false and the unchanged
// snapshot rather than an error.
func (h *BookingHandler) Toggle(c echo.Context) error {
	f, errResp := h.ownedFlow(c)
	if errResp != nil {
		return errResp(c)
	}
	seatID, ok := pathID(c, "seatID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	snap, changed, err := f.Toggle(seatID)
	if err != nil {
		return c.JSON(http.StatusGone, echo.Map{"error": "booking flow closed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"changed":  changed,
		"snapshot": snap,
	})
}

// Refresh handles POST /v1/bookings/:id/seats/refresh.  It schedules a
// new catalog fetch; any fetch already in flight is superseded and its
// late result dropped.  Selected seats that were reserved underneath
// are evicted when the fresh list lands.
func (h *BookingHandler) Refresh(c echo.Context) error {
	f, errResp := h.ownedFlow(c)
	if errResp != nil {
		return errResp(c)
	}
	if err := f.RefreshSeats(); err != nil {
		return c.JSON(http.StatusGone, echo.Map{"error": "booking flow closed"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "refreshing"})
}

// Checkout handles POST /v1/bookings/:id/checkout.  The gate runs
// synchronously against a fresh timestamp immediately before the
// handoff; render-time state is never trusted.  Gate rejections map to:
// 409 session expired (restart required), 400 empty selection (inline
// validation), 404 no active session.  An upstream seat conflict evicts
// the contested seats, refreshes the catalog and returns 409 with the
// ids so the user can reselect.
func (h *BookingHandler) Checkout(c echo.Context) error {
	f, errResp := h.ownedFlow(c)
	if errResp != nil {
		return errResp(c)
	}
	handoff, err := f.PrepareCheckout(time.Now().UTC())
	switch {
	case errors.Is(err, flow.ErrFlowClosed), errors.Is(err, gate.ErrNoActiveSession):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active booking session"})
	case errors.Is(err, gate.ErrSessionExpired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "your session expired, please restart"})
	case errors.Is(err, gate.ErrEmptySelection):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "select at least one seat"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}

	ctx := c.Request().Context()
	if err := h.Upstream.Checkout(ctx, handoff); err != nil {
		var conflict *upstream.ConflictError
		if errors.As(err, &conflict) {
			_ = f.EvictConflicts(conflict.SeatIDs)
			return c.JSON(http.StatusConflict, echo.Map{
				"error":     "seat no longer available, please reselect",
				"conflicts": conflict.SeatIDs,
			})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "checkout handoff failed"})
	}

	labels := make([]string, 0, len(handoff.Seats))
	seatIDs := make([]uint64, 0, len(handoff.Seats))
	for _, s := range handoff.Seats {
		labels = append(labels, s.Label())
		seatIDs = append(seatIDs, s.ID)
	}
	now := time.Now().UTC()

	// Journal and event publication are best-effort: the handoff already
	// succeeded upstream and must not be unwound by local failures.
	if h.Journal != nil {
		rec := &repository.HandoffRecord{
			BookingID:        f.ID(),
			SessionID:        handoff.Session.ID,
			UserID:           handoff.Session.UserID,
			ShowtimeID:       handoff.Showtime.ID,
			MovieTitle:       handoff.Showtime.MovieTitle,
			SeatLabels:       labels,
			TotalAmountCents: handoff.TotalCents,
			HandedOffAt:      now,
		}
		if err := h.Journal.Record(ctx, rec); err != nil {
			log.Printf("booking: journal record failed: %v", err)
		}
	}
	ev := queue.CheckoutHandoffEvent{
		BookingID:        f.ID(),
		SessionID:        handoff.Session.ID,
		UserID:           handoff.Session.UserID,
		ShowtimeID:       handoff.Showtime.ID,
		MovieTitle:       handoff.Showtime.MovieTitle,
		CinemaName:       handoff.Showtime.CinemaName,
		RoomName:         handoff.Showtime.RoomName,
		SeatLabels:       labels,
		TotalAmountCents: handoff.TotalCents,
		HandedOffAt:      now.Format(time.RFC3339),
	}
	if err := queue_publisher.PublishCheckoutHandoff(context.Background(), ev); err != nil {
		log.Printf("booking: publish checkout handoff failed: %v", err)
	}

	// The gateway's responsibility ends at the handoff; the flow is done.
	h.Flows.Remove(f.ID())

	return c.JSON(http.StatusOK, echo.Map{
		"status":             "handed_off",
		"session_id":         handoff.Session.ID,
		"seat_ids":           seatIDs,
		"seats":              labels,
		"total_amount_cents": handoff.TotalCents,
	})
}

// Close handles DELETE /v1/bookings/:id.  Leaving the booking flow
// tears the actor down: the countdown stops and any in-flight seat
// fetch is treated as cancelled, so late results cannot touch a
// no-longer-active session/selection pair.
func (h *BookingHandler) Close(c echo.Context) error {
	f, errResp := h.ownedFlow(c)
	if errResp != nil {
		return errResp(c)
	}
	h.Flows.Remove(f.ID())
	return c.NoContent(http.StatusNoContent)
}

// ListHandoffs handles GET /v1/my-handoffs.  It reads the journal
// back for the current user, newest first.  With the journal disabled
// it answers 503 so clients can distinguish "none" from "not tracked".
func (h *BookingHandler) ListHandoffs(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.Journal == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "handoff journal disabled"})
	}
	items, err := h.Journal.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load handoffs"})
	}
	if items == nil {
		items = []repository.HandoffRecord{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ownedFlow resolves the :id path parameter to a flow owned by the
// authenticated user.  On failure it returns a function producing the
// error response, so callers can one-line the guard.
func (h *BookingHandler) ownedFlow(c echo.Context) (*flow.Flow, func(echo.Context) error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
	}
	id := c.Param("id")
	f, ok := h.Flows.Get(id)
	if !ok {
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
	}
	if f.UserID() != userID {
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	return f, nil
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-flow/internal/upstream"
)

// ShowtimeHandler proxies showtime details from the storefront API so
// the seat-map page has a single origin to talk to.  The route sits
// behind the response-cache middleware: showtime records are immutable
// for the duration of a booking flow, so short-TTL caching is safe.
type ShowtimeHandler struct {
	Upstream *upstream.Client
}

// NewShowtimeHandler constructs a ShowtimeHandler.
func NewShowtimeHandler(up *upstream.Client) *ShowtimeHandler {
	if up == nil {
		panic("nil upstream client passed to NewShowtimeHandler")
	}
	return &ShowtimeHandler{Upstream: up}
}

// Get handles GET /v1/showtimes/:id.
func (h *ShowtimeHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	show, err := h.Upstream.GetShowtime(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, upstream.ErrShowtimeFetch) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "showtime unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtime"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": show})
}

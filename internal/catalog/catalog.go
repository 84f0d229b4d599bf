// Package catalog holds the authoritative-as-of-last-fetch seat list for
// one showtime and computes the effective per-seat status the UI should
// display.  The server-sourced records are never mutated in place: the
// client-local "selected" state is kept as a separate overlay set so a
// refresh can reconcile cleanly without losing track of which seats the
// user had picked.
package catalog

import (
	"github.com/cinebook/booking-flow/internal/model"
)

// Catalog owns the seat list of a single showtime.  It is not safe for
// concurrent use; a booking flow accesses it only from its own event
// loop.
type Catalog struct {
	seats   []model.Seat           // fetch order, preserved for display
	byID    map[uint64]*model.Seat // id -> entry in seats
	overlay map[uint64]struct{}    // seat ids carrying the local "selected" overlay
	loaded  bool                   // at least one successful fetch applied
}

// New returns an empty catalog.  Seats arrive later via Replace once the
// first fetch completes; the countdown clock may already be running by
// then, the two pipelines are independent.
func New() *Catalog {
	return &Catalog{
		byID:    make(map[uint64]*model.Seat),
		overlay: make(map[uint64]struct{}),
	}
}

// Loaded reports whether at least one seat fetch has been applied.
func (c *Catalog) Loaded() bool { return c.loaded }

// Replace installs a freshly fetched seat list and reconciles the local
// overlay against it.  Overlaid seats that are still AVAILABLE keep
// their selection; seats that disappeared or were reserved/blocked
// underneath lose it.  The ids dropped from the overlay are returned so
// the selection engine can evict the same members.
func (c *Catalog) Replace(seats []model.Seat) (dropped []uint64) {
	c.seats = make([]model.Seat, len(seats))
	copy(c.seats, seats)
	c.byID = make(map[uint64]*model.Seat, len(seats))
	for i := range c.seats {
		c.byID[c.seats[i].ID] = &c.seats[i]
	}
	for id := range c.overlay {
		s, ok := c.byID[id]
		if !ok || !s.Status.Toggleable() {
			delete(c.overlay, id)
			dropped = append(dropped, id)
		}
	}
	c.loaded = true
	return dropped
}

// Get returns the authoritative record for a seat id.  The boolean
// result is false when the seat is unknown to the catalog.
func (c *Catalog) Get(id uint64) (model.Seat, bool) {
	s, ok := c.byID[id]
	if !ok {
		return model.Seat{}, false
	}
	return *s, true
}

// Status returns the effective status of a seat: the authoritative
// status from the last fetch, with SELECTED overlaid when the seat is a
// member of the local overlay set.
func (c *Catalog) Status(id uint64) (model.SeatStatus, bool) {
	s, ok := c.byID[id]
	if !ok {
		return "", false
	}
	if _, sel := c.overlay[id]; sel {
		return model.SeatSelected, true
	}
	return s.Status, true
}

// SetOverlay applies or clears the client-local SELECTED overlay for a
// seat.  The overlay only ever sits on top of an AVAILABLE seat;
// attempts to overlay RESERVED or UNAVAILABLE seats, or unknown ids,
// are rejected and return false.  Clearing is always permitted.
func (c *Catalog) SetOverlay(id uint64, selected bool) bool {
	if !selected {
		delete(c.overlay, id)
		return true
	}
	s, ok := c.byID[id]
	if !ok || !s.Status.Toggleable() {
		return false
	}
	c.overlay[id] = struct{}{}
	return true
}

// View returns the seat list in fetch order with effective statuses
// applied.  The slice is a copy; callers may hold it across further
// catalog mutations.
func (c *Catalog) View() []model.Seat {
	out := make([]model.Seat, len(c.seats))
	copy(out, c.seats)
	for i := range out {
		if _, sel := c.overlay[out[i].ID]; sel {
			out[i].Status = model.SeatSelected
		}
	}
	return out
}

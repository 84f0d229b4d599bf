// Package selection implements the deterministic toggle state machine
// over the seat catalog.  It tracks which seats the current user has
// tentatively chosen, in insertion order, and derives the running total
// from the showtime base price plus each seat's type surcharge.
package selection

import (
	"github.com/cinebook/booking-flow/internal/catalog"
	"github.com/cinebook/booking-flow/internal/model"
)

// Engine is the selection state machine for one booking flow.  It is
// scoped to exactly one session/showtime pair and, like the catalog it
// wraps, is only ever touched from the flow's event loop.
type Engine struct {
	cat     *catalog.Catalog
	ordered []uint64            // members in insertion order
	members map[uint64]struct{} // membership index
}

// NewEngine returns an empty selection engine over the given catalog.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{
		cat:     cat,
		members: make(map[uint64]struct{}),
	}
}

// Toggle flips the selection state of one seat and reports whether the
// set changed.  A seat already in the set is removed (its overlay
// reverts to AVAILABLE); an AVAILABLE seat is added (overlaid as
// SELECTED).  Seats that are RESERVED or UNAVAILABLE in the catalog,
// and ids the catalog does not know, are rejected as a silent no-op:
// the UI presents those controls as disabled, so this is not an error.
// Toggling the same seat twice returns the set to its prior value.
func (e *Engine) Toggle(id uint64) bool {
	if _, in := e.members[id]; in {
		e.remove(id)
		e.cat.SetOverlay(id, false)
		return true
	}
	status, ok := e.cat.Status(id)
	if !ok || status != model.SeatAvailable {
		return false
	}
	if !e.cat.SetOverlay(id, true) {
		return false
	}
	e.members[id] = struct{}{}
	e.ordered = append(e.ordered, id)
	return true
}

// Evict removes the given seats from the set without touching their
// catalog overlay (the catalog already dropped it, e.g. during a refresh
// reconcile or after an upstream seat conflict).  Unknown ids are
// ignored.
func (e *Engine) Evict(ids []uint64) {
	for _, id := range ids {
		e.remove(id)
	}
}

// Clear empties the set and lifts every overlay.  Used on session
// expiry and when the user leaves the booking flow.
func (e *Engine) Clear() {
	for _, id := range e.ordered {
		e.cat.SetOverlay(id, false)
	}
	e.ordered = e.ordered[:0]
	e.members = make(map[uint64]struct{})
}

// Confirm is a side-effect-free read of the current selection in
// insertion order, resolved against the catalog.  It is the handoff
// payload for checkout.
func (e *Engine) Confirm() []model.Seat {
	out := make([]model.Seat, 0, len(e.ordered))
	for _, id := range e.ordered {
		if s, ok := e.cat.Get(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// Size returns the number of selected seats.
func (e *Engine) Size() int { return len(e.ordered) }

// TotalCents sums the price of every member: showtime base price plus
// the member's seat type surcharge.
func (e *Engine) TotalCents(baseCents uint32) uint32 {
	var total uint32
	for _, id := range e.ordered {
		if s, ok := e.cat.Get(id); ok {
			total += s.PriceCents(baseCents)
		}
	}
	return total
}

func (e *Engine) remove(id uint64) {
	if _, in := e.members[id]; !in {
		return
	}
	delete(e.members, id)
	for i, v := range e.ordered {
		if v == id {
			e.ordered = append(e.ordered[:i], e.ordered[i+1:]...)
			break
		}
	}
}

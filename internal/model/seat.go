package model

import "strconv"

// SeatStatus is the availability of a seat as reported by the storefront
// API, plus the client-local "selected" overlay.  Exactly one status
// holds for a seat at any time.  RESERVED and UNAVAILABLE are terminal
// from the booking flow's point of view: the flow never toggles them and
// never overlays them.
type SeatStatus string

const (
	SeatAvailable   SeatStatus = "available"   // seat can be selected
	SeatReserved    SeatStatus = "reserved"    // taken by another booking; not toggleable
	SeatSelected    SeatStatus = "selected"    // client-local overlay on an available seat
	SeatUnavailable SeatStatus = "unavailable" // blocked or out of service; not toggleable
)

// Toggleable reports whether a seat with this authoritative status may be
// picked up or put down by the selection engine.  Only AVAILABLE seats
// qualify; SELECTED never appears as an authoritative status, it exists
// only as an overlay computed by the catalog.
func (s SeatStatus) Toggleable() bool { return s == SeatAvailable }

// SeatType describes the pricing class of a seat.  The extra price is
// added on top of the showtime base price when computing a selection
// total.
//
// Fields:
//  Name            – type label (e.g. "standard", "vip", "couple").
//  ExtraPriceCents – surcharge in cents over the showtime base price.
type SeatType struct {
	Name            string `json:"name"`        // seat_type.name
	ExtraPriceCents uint32 `json:"extra_price"` // seat_type.extra_price, in cents
}

// Seat is one seat of a showtime's room as fetched from the storefront
// API.  Status carries the authoritative value from the last fetch; the
// catalog overlays "selected" on top without mutating this record.
//
// Fields:
//  ID     – seat identifier, unique within the showtime's room.
//  Row    – row label (letter or string, e.g. "A", "AB").
//  Column – one-based column index within the row.
//  Type   – pricing class reference.
//  Status – authoritative status from the last fetch.
type Seat struct {
	ID     uint64     `json:"id"`
	Row    string     `json:"row"`
	Column uint32     `json:"column"`
	Type   SeatType   `json:"seat_type"`
	Status SeatStatus `json:"status"`
}

// Label renders the conventional human-readable seat name: row label
// followed by the column index, e.g. "A7".
func (s Seat) Label() string {
	return s.Row + strconv.FormatUint(uint64(s.Column), 10)
}

// PriceCents is the full price of this seat for the given showtime base
// price: base plus the seat type surcharge.
func (s Seat) PriceCents(baseCents uint32) uint32 {
	return baseCents + s.Type.ExtraPriceCents
}

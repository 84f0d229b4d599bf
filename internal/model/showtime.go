package model

import "time"

// Showtime is a scheduled screening of a movie in a particular room.  It
// is fetched once when a booking flow opens and stays immutable for the
// lifetime of that flow.  The room reference implies the cinema and the
// hall name; those denormalised labels are carried along so the flow can
// hand a complete context to checkout without another lookup.
//
// Fields:
//  ID             – showtime identifier.
//  MovieTitle     – title of the movie being screened.
//  CinemaName     – cinema the room belongs to.
//  RoomName       – hall/room label within the cinema.
//  BasePriceCents – base ticket price in cents; seat surcharges add to it.
//  StartsAt       – when the screening begins.
//  EndsAt         – when the screening ends (always after StartsAt).
type Showtime struct {
	ID             uint64    `json:"id"`
	MovieTitle     string    `json:"movie_title"`
	CinemaName     string    `json:"cinema_name"`
	RoomName       string    `json:"room_name"`
	BasePriceCents uint32    `json:"base_price"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
}

// Valid reports whether the showtime satisfies its structural
// invariants: a non-zero identity and a start strictly before the end.
// The base price is unsigned and therefore non-negative by construction.
func (s Showtime) Valid() bool {
	return s.ID != 0 && s.StartsAt.Before(s.EndsAt)
}

package catalog

import (
	"testing"

	"github.com/cinebook/booking-flow/internal/model"
)

func sampleSeats() []model.Seat {
	std := model.SeatType{Name: "standard", ExtraPriceCents: 0}
	vip := model.SeatType{Name: "vip", ExtraPriceCents: 500}
	return []model.Seat{
		{ID: 1, Row: "A", Column: 1, Type: std, Status: model.SeatAvailable},
		{ID: 2, Row: "A", Column: 2, Type: std, Status: model.SeatAvailable},
		{ID: 3, Row: "B", Column: 5, Type: vip, Status: model.SeatReserved},
		{ID: 4, Row: "B", Column: 6, Type: vip, Status: model.SeatUnavailable},
	}
}

func TestEmptyCatalog(t *testing.T) {
	c := New()
	if c.Loaded() {
		t.Error("fresh catalog should not report loaded")
	}
	if _, ok := c.Status(1); ok {
		t.Error("unknown seat should not resolve a status")
	}
	if got := c.View(); len(got) != 0 {
		t.Errorf("View() on empty catalog returned %d seats", len(got))
	}
}

func TestOverlayRules(t *testing.T) {
	c := New()
	c.Replace(sampleSeats())

	if !c.SetOverlay(1, true) {
		t.Error("overlaying an available seat should succeed")
	}
	if st, _ := c.Status(1); st != model.SeatSelected {
		t.Errorf("Status(1) = %s, want selected", st)
	}

	// Reserved and unavailable seats must keep their status.
	if c.SetOverlay(3, true) {
		t.Error("overlaying a reserved seat must be rejected")
	}
	if c.SetOverlay(4, true) {
		t.Error("overlaying an unavailable seat must be rejected")
	}
	if st, _ := c.Status(3); st != model.SeatReserved {
		t.Errorf("Status(3) = %s, want reserved", st)
	}

	// Unknown ids are rejected too.
	if c.SetOverlay(99, true) {
		t.Error("overlaying an unknown seat must be rejected")
	}

	// Clearing reverts the effective status to the authoritative one.
	if !c.SetOverlay(1, false) {
		t.Error("clearing an overlay should always succeed")
	}
	if st, _ := c.Status(1); st != model.SeatAvailable {
		t.Errorf("Status(1) after clear = %s, want available", st)
	}
}

func TestViewDoesNotMutateRecords(t *testing.T) {
	c := New()
	c.Replace(sampleSeats())
	c.SetOverlay(2, true)

	view := c.View()
	var got model.SeatStatus
	for _, s := range view {
		if s.ID == 2 {
			got = s.Status
		}
	}
	if got != model.SeatSelected {
		t.Errorf("view status for seat 2 = %s, want selected", got)
	}

	// The authoritative record stays untouched underneath the overlay.
	rec, _ := c.Get(2)
	if rec.Status != model.SeatAvailable {
		t.Errorf("authoritative status for seat 2 = %s, want available", rec.Status)
	}
}

func TestReplaceReconcilesOverlay(t *testing.T) {
	c := New()
	c.Replace(sampleSeats())
	c.SetOverlay(1, true)
	c.SetOverlay(2, true)

	// Seat 1 got reserved underneath; seat 2 is still available.
	refreshed := sampleSeats()
	refreshed[0].Status = model.SeatReserved
	dropped := c.Replace(refreshed)

	if len(dropped) != 1 || dropped[0] != 1 {
		t.Fatalf("dropped = %v, want [1]", dropped)
	}
	if st, _ := c.Status(1); st != model.SeatReserved {
		t.Errorf("Status(1) = %s, want reserved", st)
	}
	if st, _ := c.Status(2); st != model.SeatSelected {
		t.Errorf("Status(2) = %s, want selected (overlay survives refresh)", st)
	}
}

func TestReplaceDropsVanishedSeats(t *testing.T) {
	c := New()
	c.Replace(sampleSeats())
	c.SetOverlay(2, true)

	dropped := c.Replace(sampleSeats()[:1]) // only seat 1 remains
	if len(dropped) != 1 || dropped[0] != 2 {
		t.Fatalf("dropped = %v, want [2]", dropped)
	}
	if !c.Loaded() {
		t.Error("catalog should stay loaded after refresh")
	}
}

// Package flow hosts the per-booking actor that owns one seat catalog,
// one selection set, one booking session and one countdown clock.  All
// state lives behind a single goroutine fed by a command channel, so
// toggles, ticks and fetch results are serialized exactly like the
// single-threaded event loop the browser front end would provide.  No
// state is shared between flows and nothing is global.
package flow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cinebook/booking-flow/internal/catalog"
	"github.com/cinebook/booking-flow/internal/countdown"
	"github.com/cinebook/booking-flow/internal/gate"
	"github.com/cinebook/booking-flow/internal/model"
	"github.com/cinebook/booking-flow/internal/selection"
)

// ErrFlowClosed is returned by every method once the flow has been torn
// down (user navigated away, handoff completed, or the registry swept a
// terminal flow).
var ErrFlowClosed = errors.New("booking flow closed")

// SeatSource is the external collaborator that serves the seat list for
// a showtime.  Implemented by the upstream HTTP client; replaced by
// fakes in tests.
type SeatSource interface {
	FetchSeats(ctx context.Context, showtimeID uint64) ([]model.Seat, error)
}

// ExpireHook is invoked (on its own goroutine) when the countdown lands
// on zero and the session transitions PENDING -> EXPIRED.  Used to
// publish the session-expired event without coupling the actor to the
// broker.
type ExpireHook func(sess model.BookingSession)

// Snapshot is a consistent read of a flow, taken inside its event loop.
// Handlers render it straight to JSON.
type Snapshot struct {
	BookingID   string               `json:"booking_id"`
	Session     model.BookingSession `json:"session"`
	Showtime    model.Showtime       `json:"showtime"`
	Seats       []model.Seat         `json:"seats"`
	SeatsLoaded bool                 `json:"seats_loaded"`
	SeatError   string               `json:"seat_error,omitempty"`
	Selection   []model.Seat         `json:"selection"`
	TotalCents  uint32               `json:"total_amount_cents"`
	Remaining   int64                `json:"remaining_seconds"`
	Display     string               `json:"remaining_display"`
	Urgent      bool                 `json:"urgent"`
}

// Flow is one active booking flow.  Exported methods may be called from
// any goroutine; they forward work into the event loop and wait for the
// result.
type Flow struct {
	id       string
	userID   uint64
	showtime model.Showtime

	// owned by the event loop
	session  *model.BookingSession
	cat      *catalog.Catalog
	sel      *selection.Engine
	clock    *countdown.Clock
	epoch    uint64 // generation counter; stale fetch results are dropped
	fetchErr string

	seats    SeatSource
	onExpire ExpireHook

	cmds   chan func()
	ctx    context.Context
	cancel context.CancelFunc
}

// Open starts a booking flow for an already-granted session and kicks
// off the initial seat fetch.  The countdown begins immediately; the
// seat catalog fills in whenever the fetch lands (the two pipelines are
// independent and unordered).
func Open(sess *model.BookingSession, show model.Showtime, seats SeatSource, onExpire ExpireHook) *Flow {
	ctx, cancel := context.WithCancel(context.Background())
	cat := catalog.New()
	f := &Flow{
		id:       uuid.NewString(),
		userID:   sess.UserID,
		showtime: show,
		session:  sess,
		cat:      cat,
		sel:      selection.NewEngine(cat),
		clock:    countdown.New(sess.ExpiresAt, time.Now().UTC()),
		seats:    seats,
		onExpire: onExpire,
		cmds:     make(chan func()),
		ctx:      ctx,
		cancel:   cancel,
	}
	go f.run()
	f.submit(f.startFetch)
	return f
}

// ID returns the flow identifier handed to the client.
func (f *Flow) ID() string { return f.id }

// UserID returns the owning user.
func (f *Flow) UserID() uint64 { return f.userID }

// ShowtimeID returns the showtime this flow is scoped to.
func (f *Flow) ShowtimeID() uint64 { return f.showtime.ID }

// run is the event loop.  One ticker drives the countdown; every other
// mutation arrives as a queued command.  The loop exits only when the
// flow context is cancelled, which also orphans any in-flight fetch.
func (f *Flow) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.tick()
		case fn := <-f.cmds:
			fn()
		}
	}
}

// tick advances the countdown.  On the single expiry signal the session
// transitions to EXPIRED, the tentative selection is cleared and the
// expiry hook fires.  Later ticks are no-ops; the clock floors at zero.
func (f *Flow) tick() {
	if !f.clock.Tick() {
		return
	}
	if f.session.Expire() {
		f.sel.Clear()
		if f.onExpire != nil {
			go f.onExpire(*f.session)
		}
	}
}

// startFetch launches a seat fetch for the current epoch.  Must run on
// the event loop.  A result belonging to a superseded epoch, or arriving
// after teardown, is discarded without touching the catalog.
func (f *Flow) startFetch() {
	f.epoch++
	ep := f.epoch
	go func() {
		seats, err := f.seats.FetchSeats(f.ctx, f.showtime.ID)
		f.submit(func() {
			if ep != f.epoch {
				return // a newer fetch owns the catalog now
			}
			if err != nil {
				f.fetchErr = err.Error()
				return
			}
			dropped := f.cat.Replace(seats)
			f.sel.Evict(dropped)
			f.fetchErr = ""
		})
	}()
}

// snapshotLocked builds a Snapshot; must run on the event loop.
func (f *Flow) snapshotLocked() Snapshot {
	return Snapshot{
		BookingID:   f.id,
		Session:     *f.session,
		Showtime:    f.showtime,
		Seats:       f.cat.View(),
		SeatsLoaded: f.cat.Loaded(),
		SeatError:   f.fetchErr,
		Selection:   f.sel.Confirm(),
		TotalCents:  f.sel.TotalCents(f.showtime.BasePriceCents),
		Remaining:   f.clock.Remaining(),
		Display:     f.clock.Display(),
		Urgent:      f.clock.Urgent(),
	}
}

// Snapshot returns a consistent view of the flow.
func (f *Flow) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := f.do(func() { snap = f.snapshotLocked() })
	return snap, err
}

// Toggle flips the selection state of one seat and returns the resulting
// snapshot plus whether anything changed.  Non-available seats no-op, in
// line with a disabled control in the UI.  Toggling after the session
// went terminal also no-ops.
func (f *Flow) Toggle(seatID uint64) (Snapshot, bool, error) {
	var (
		snap    Snapshot
		changed bool
	)
	err := f.do(func() {
		if f.session.Status == model.SessionPending {
			changed = f.sel.Toggle(seatID)
		}
		snap = f.snapshotLocked()
	})
	return snap, changed, err
}

// RefreshSeats schedules a new catalog fetch.  Any fetch already in
// flight is superseded; its late result will be dropped by the epoch
// guard.
func (f *Flow) RefreshSeats() error {
	return f.do(f.startFetch)
}

// PrepareCheckout evaluates the checkout gate against a fresh timestamp
// and, when admitted, returns the validated handoff payload.  The gate
// runs inside the event loop so no toggle or tick can interleave with
// the decision.
func (f *Flow) PrepareCheckout(now time.Time) (*gate.Handoff, error) {
	var (
		h    *gate.Handoff
		gerr error
	)
	err := f.do(func() {
		h, gerr = gate.Prepare(f.session, f.showtime, f.sel.Confirm(), now)
	})
	if err != nil {
		return nil, err
	}
	return h, gerr
}

// EvictConflicts removes seats the storefront reported as taken during
// checkout and schedules a catalog refresh so their authoritative status
// shows up on the next snapshot.
func (f *Flow) EvictConflicts(seatIDs []uint64) error {
	return f.do(func() {
		for _, id := range seatIDs {
			f.cat.SetOverlay(id, false)
		}
		f.sel.Evict(seatIDs)
		f.startFetch()
	})
}

// SessionStatus reports the session state as of the last loop pass.
func (f *Flow) SessionStatus() (model.SessionStatus, error) {
	var st model.SessionStatus
	err := f.do(func() { st = f.session.Status })
	return st, err
}

// Close tears the flow down: the ticker stops, in-flight fetches are
// cancelled through the flow context, and every later method call
// returns ErrFlowClosed.  Safe to call more than once.
func (f *Flow) Close() { f.cancel() }

// do runs fn on the event loop and waits for it.
func (f *Flow) do(fn func()) error {
	done := make(chan struct{})
	select {
	case f.cmds <- func() { fn(); close(done) }:
	case <-f.ctx.Done():
		return ErrFlowClosed
	}
	select {
	case <-done:
		return nil
	case <-f.ctx.Done():
		return ErrFlowClosed
	}
}

// submit queues fn without waiting; drops it if the flow is closed.
func (f *Flow) submit(fn func()) {
	go func() {
		select {
		case f.cmds <- fn:
		case <-f.ctx.Done():
		}
	}()
}

// Package countdown produces the monotonically decreasing
// remaining-seconds value a booking flow shows next to the seat map.
// The counter is seeded once from the session expiry and then
// decremented per tick rather than re-derived from the wall clock, so
// it works without a live clock source at the cost of possible drift
// against the server-side expiry.  The checkout gate never trusts this
// counter; it re-checks the expiry timestamp itself.
package countdown

import (
	"fmt"
	"time"
)

// UrgentThreshold is the remaining-seconds value below which the display
// is flagged urgent.  Cosmetic only; no state transition hangs off it.
const UrgentThreshold = 60

// Clock is the per-flow countdown.  It is driven by the flow's event
// loop, one Tick per second, and is not safe for concurrent use.
type Clock struct {
	remaining int64
	signalled bool // expiry has been signalled; ticks are no-ops now
}

// New seeds a clock from the session expiry and the current time.  A
// session already past its expiry yields a clock at zero whose first
// tick delivers the expiry signal.
func New(expiry, now time.Time) *Clock {
	secs := int64(expiry.Sub(now) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &Clock{remaining: secs}
}

// Tick advances the countdown by one second.  It returns true exactly
// once, on the tick that lands the counter on zero (or the first tick of
// a clock seeded at zero).  After that the clock is stopped: the counter
// never goes below zero and further ticks return false.
func (c *Clock) Tick() bool {
	if c.signalled {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.signalled = true
		return true
	}
	return false
}

// Remaining returns the current counter value in whole seconds.  Never
// negative.
func (c *Clock) Remaining() int64 { return c.remaining }

// Expired reports whether the clock has delivered its expiry signal.
func (c *Clock) Expired() bool { return c.signalled }

// Display formats the counter as minutes:seconds with zero-padded
// seconds, e.g. 185 -> "3:05".
func (c *Clock) Display() string {
	return fmt.Sprintf("%d:%02d", c.remaining/60, c.remaining%60)
}

// Urgent reports whether the remaining time is under the presentation
// threshold.
func (c *Clock) Urgent() bool { return c.remaining < UrgentThreshold }

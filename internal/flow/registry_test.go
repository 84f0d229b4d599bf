package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/booking-flow/internal/model"
)

func openTestFlowFor(userID uint64, ttl time.Duration) *Flow {
	src := &stubSeats{}
	src.set(func(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
		return fixedSeats(), nil
	})
	sess := testSession(ttl)
	sess.UserID = userID
	return Open(sess, testShowtime(), src, nil)
}

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry()
	f := openTestFlowFor(1, 5*time.Minute)
	r.Put(f)

	got, ok := r.Get(f.ID())
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Remove(f.ID()))
	assert.False(t, r.Remove(f.ID()), "second remove should report unknown id")
	assert.Equal(t, 0, r.Len())

	// Remove closed the flow.
	_, err := f.Snapshot()
	assert.ErrorIs(t, err, ErrFlowClosed)
}

func TestRegistryPutSupersedesSameOwner(t *testing.T) {
	r := NewRegistry()
	first := openTestFlowFor(1, 5*time.Minute)
	second := openTestFlowFor(1, 5*time.Minute) // same user, same showtime
	r.Put(first)
	r.Put(second)

	assert.Equal(t, 1, r.Len())
	_, ok := r.Get(first.ID())
	assert.False(t, ok, "superseded flow should be forgotten")

	_, err := first.Snapshot()
	assert.ErrorIs(t, err, ErrFlowClosed)
	_, err = second.Snapshot()
	assert.NoError(t, err)

	second.Close()
}

func TestRegistrySweepDropsTerminalFlows(t *testing.T) {
	r := NewRegistry()
	live := openTestFlowFor(1, 5*time.Minute)
	defer live.Close()
	dead := openTestFlowFor(2, -time.Second) // expires on the first tick
	r.Put(live)
	r.Put(dead)
	require.Equal(t, 2, r.Len())

	waitFor(t, 3*time.Second, func() bool {
		st, err := dead.SessionStatus()
		return err == nil && st == model.SessionExpired
	})

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	_, ok := r.Get(live.ID())
	assert.True(t, ok)
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry()
	a := openTestFlowFor(1, 5*time.Minute)
	b := openTestFlowFor(2, 5*time.Minute)
	r.Put(a)
	r.Put(b)

	r.CloseAll()
	assert.Equal(t, 0, r.Len())
	_, err := a.Snapshot()
	assert.ErrorIs(t, err, ErrFlowClosed)
	_, err = b.Snapshot()
	assert.ErrorIs(t, err, ErrFlowClosed)
}

package flow

import "sync"

// ownerKey scopes a flow to one user and one showtime.  The registry
// keeps at most one live flow per key: the server, not this gateway,
// arbitrates anything beyond that (other devices, other users).
type ownerKey struct {
	userID     uint64
	showtimeID uint64
}

// Registry tracks the active booking flows of this gateway instance.
// The registry itself is the only concurrency boundary here; every flow
// behind it stays single-threaded.
type Registry struct {
	mu      sync.Mutex
	byID    map[string]*Flow
	byOwner map[ownerKey]*Flow
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]*Flow),
		byOwner: make(map[ownerKey]*Flow),
	}
}

// Put registers a flow.  An existing flow for the same user/showtime is
// superseded: it is closed and dropped so its countdown cannot act on a
// session the user has abandoned.
func (r *Registry) Put(f *Flow) {
	key := ownerKey{userID: f.UserID(), showtimeID: f.ShowtimeID()}
	r.mu.Lock()
	if old, ok := r.byOwner[key]; ok {
		delete(r.byID, old.ID())
		old.Close()
	}
	r.byOwner[key] = f
	r.byID[f.ID()] = f
	r.mu.Unlock()
}

// Get looks a flow up by its booking id.
func (r *Registry) Get(id string) (*Flow, bool) {
	r.mu.Lock()
	f, ok := r.byID[id]
	r.mu.Unlock()
	return f, ok
}

// Remove closes a flow and forgets it.  It reports whether the id was
// known.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	f, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		delete(r.byOwner, ownerKey{userID: f.UserID(), showtimeID: f.ShowtimeID()})
	}
	r.mu.Unlock()
	if ok {
		f.Close()
	}
	return ok
}

// Sweep closes and drops every flow whose session has gone terminal
// (expired, paid or cancelled).  Meant to run on a background cadence so
// abandoned expired flows do not accumulate.  It returns the number of
// flows removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	flows := make([]*Flow, 0, len(r.byID))
	for _, f := range r.byID {
		flows = append(flows, f)
	}
	r.mu.Unlock()

	removed := 0
	for _, f := range flows {
		st, err := f.SessionStatus()
		if err == nil && !st.Terminal() {
			continue
		}
		if r.Remove(f.ID()) {
			removed++
		}
	}
	return removed
}

// Len returns the number of active flows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// CloseAll tears down every flow, used at server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	for id, f := range r.byID {
		delete(r.byID, id)
		f.Close()
	}
	r.byOwner = make(map[ownerKey]*Flow)
	r.mu.Unlock()
}

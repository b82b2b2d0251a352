package chat

import (
	"sync"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/cespare/xxhash/v2"
)

const registryStripes = 32

type stripe struct {
	mu    sync.RWMutex
	conns map[domain.UserID]*Connection
}

// Registry maps online users to their live connection. It is striped so that
// admissions, supervisor removals and dispatcher snapshots touching different
// users rarely contend on the same lock. All methods are safe for concurrent
// use.
type Registry struct {
	stripes [registryStripes]stripe
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.stripes {
		r.stripes[i].conns = make(map[domain.UserID]*Connection)
	}
	return r
}

func (r *Registry) stripeFor(id domain.UserID) *stripe {
	return &r.stripes[xxhash.Sum64(id.UUID[:])%registryStripes]
}

// Insert stores c under id and returns the connection it displaced, if any.
// The displaced connection is not closed here.
func (r *Registry) Insert(id domain.UserID, c *Connection) *Connection {
	s := r.stripeFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.conns[id]
	s.conns[id] = c
	return prev
}

// Remove deletes whatever connection is stored under id. Removing an absent id
// is a no-op.
func (r *Registry) Remove(id domain.UserID) {
	s := r.stripeFor(id)
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// RemoveConnection deletes the entry for id only if it still points at c, and
// reports whether it did. A supervisor uses this so that it never removes a
// newer connection that displaced its own.
func (r *Registry) RemoveConnection(id domain.UserID, c *Connection) bool {
	s := r.stripeFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conns[id] != c {
		return false
	}
	delete(s.conns, id)
	return true
}

// Get returns the connection registered for id.
func (r *Registry) Get(id domain.UserID) (*Connection, bool) {
	s := r.stripeFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conns[id]
	return c, ok
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	n := 0
	for i := range r.stripes {
		s := &r.stripes[i]
		s.mu.RLock()
		n += len(s.conns)
		s.mu.RUnlock()
	}
	return n
}

// Snapshot returns the currently registered connections. Each stripe is read
// under its own lock, so the result reflects every insert and remove that
// completed before the call but is not a single atomic view.
func (r *Registry) Snapshot() []*Connection {
	out := make([]*Connection, 0, r.Len())
	for i := range r.stripes {
		s := &r.stripes[i]
		s.mu.RLock()
		for _, c := range s.conns {
			out = append(out, c)
		}
		s.mu.RUnlock()
	}
	return out
}

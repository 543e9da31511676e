// Package memory provides an in-process session.Lookup for tests and local
// development. Sessions are seeded at construction (typically from
// configuration fixtures) and are lost when the process restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rhuss/actiongate/pkg/session"
)

// entry holds a seeded session and its optional expiry.
type entry struct {
	attrs     session.Map
	expiresAt time.Time // zero = never
}

// Fixture describes one seeded session.
type Fixture struct {
	ID        string
	Staff     *session.Staff
	Attrs     map[string]any
	ExpiresAt time.Time
}

// Store is an in-memory session.Lookup.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

// Ensure Store implements session.Lookup at compile time.
var _ session.Lookup = (*Store)(nil)

// New creates a store seeded with the given fixtures.
func New(fixtures ...Fixture) *Store {
	s := &Store{
		entries: make(map[string]*entry, len(fixtures)),
		now:     time.Now,
	}
	for _, f := range fixtures {
		s.Put(f)
	}
	return s
}

// Put seeds or replaces a session. It stands in for the framework's own
// session writes in tests and development setups.
func (s *Store) Put(f Fixture) {
	attrs := make(session.Map, len(f.Attrs)+1)
	for k, v := range f.Attrs {
		attrs[k] = v
	}
	if f.Staff != nil {
		staff := *f.Staff
		attrs[session.StaffKey] = &staff
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[f.ID] = &entry{attrs: attrs, expiresAt: f.ExpiresAt}
}

// Lookup returns a copy of the session attributes so callers cannot mutate
// the seeded state. Returns session.ErrNotFound for unknown or expired ids.
func (s *Store) Lookup(_ context.Context, id string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		return nil, session.ErrNotFound
	}

	out := make(session.Map, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out, nil
}

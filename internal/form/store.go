package form

import "sync"

// Store holds the live form state. Edits and snapshots may come from
// different goroutines.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns a store seeded with initial.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn under the write lock. The state is left unchanged when
// fn returns an error.
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Set is a shorthand for a single field edit.
func (s *Store) Set(field, value string) error {
	return s.Update(func(st *State) error { return st.Set(field, value) })
}

// Package store holds the result of the most recent successful run.
package store

import (
	"sync"

	"github.com/couchcryptid/degree-day-etl/internal/pipeline"
)

// ResultStore is a single-slot holder for the latest run result. A new Put
// replaces whatever was held before.
type ResultStore struct {
	mu     sync.RWMutex
	latest *pipeline.Result
	onHeld func(held bool)
}

// New returns an empty store. onHeld, when non-nil, is called with the
// held state after every change, under the store lock, so calls arrive in
// the same order as the changes. onHeld must not call back into the store.
func New(onHeld func(held bool)) *ResultStore {
	return &ResultStore{onHeld: onHeld}
}

// Put replaces the held result.
func (s *ResultStore) Put(r *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = r
	s.notify(r != nil)
}

// Latest returns the held result, or false when there is none.
func (s *ResultStore) Latest() (*pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Clear drops the held result.
func (s *ResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = nil
	s.notify(false)
}

func (s *ResultStore) notify(held bool) {
	if s.onHeld != nil {
		s.onHeld(held)
	}
}

// Package eventstore implements the append-only, hash-chained event log:
// stream-scoped append with optimistic concurrency and tick policy,
// range-scan read with chain validation, and head/capabilities lookups
// (spec.md §4.3–§4.5).
package eventstore

import (
	"sync"

	"github.com/tectonic-sim/platetruth/kvstore"
)

// EventStore is the append/read/head surface over one ordered KV store.
// The zero value is not usable; construct with New.
type EventStore struct {
	kv    kvstore.KV
	locks sync.Map // map[string]*sync.Mutex, keyed by stream prefix
}

// New returns an EventStore backed by kv. The per-stream lock map starts
// empty and grows lazily on first append per stream (spec.md §9's
// "global mutable state... initialized lazily, never cleared in the
// lifetime of the process").
func New(kv kvstore.KV) *EventStore {
	return &EventStore{kv: kv}
}

// lockFor returns the mutex for prefix, creating it on first use.
func (s *EventStore) lockFor(prefix string) *sync.Mutex {
	actual, _ := s.locks.LoadOrStore(prefix, &sync.Mutex{})

	return actual.(*sync.Mutex)
}

// Close releases the per-stream locks this store is holding, as spec.md
// §9's "on store disposal, release them" note asks. The underlying
// kvstore.KV's own Close is the caller's responsibility, since EventStore
// does not own it exclusively (snapshot.Store shares the same KV).
func (s *EventStore) Close() {
	s.locks.Range(func(key, _ any) bool {
		s.locks.Delete(key)

		return true
	})
}

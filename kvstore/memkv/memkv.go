// Package memkv is an in-memory kvstore.KV used by this module's own test
// suites so eventstore, snapshot, and materialize can be exercised without
// a real bbolt file on disk. It keeps entries in a plain mutex-guarded map
// and sorts the keys afresh on every scan or seek, trading scan performance
// for simplicity — production code should use kvstore/bboltkv instead.
package memkv

import (
	"context"
	"sort"
	"sync"

	"github.com/tectonic-sim/platetruth/kvstore"
)

// Store is an in-memory, single-process kvstore.KV.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

var _ kvstore.KV = (*Store)(nil)

func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[string(key)]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), v...), true, nil
}

func (s *Store) Batch(_ context.Context, ops []kvstore.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		s.data[string(op.Key)] = append([]byte(nil), op.Value...)
	}

	return nil
}

func (s *Store) sortedKeys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func (s *Store) ScanFrom(ctx context.Context, start []byte, fn func(key, value []byte) (bool, error)) error {
	s.mu.RLock()
	keys := s.sortedKeys()
	snapshot := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	startStr := string(start)
	for _, k := range keys {
		if k < startStr {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		more, err := fn([]byte(k), snapshot[k])
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}

	return nil
}

func (s *Store) SeekForPrev(_ context.Context, key []byte) ([]byte, []byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.sortedKeys()
	target := string(key)

	best := -1
	for i, k := range keys {
		if k > target {
			break
		}
		best = i
	}
	if best == -1 {
		return nil, nil, false, nil
	}

	foundKey := keys[best]

	return []byte(foundKey), append([]byte(nil), s.data[foundKey]...), true, nil
}

func (s *Store) Close() error {
	return nil
}

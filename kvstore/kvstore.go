// Package kvstore defines the ordered key-value primitives the truth
// store is built on: point get, an atomic multi-key batch of puts, a forward
// range scan, and a "seek for previous" nearest-predecessor lookup.
// bboltkv provides the concrete embedded-database implementation; any
// backend satisfying this interface can stand in, per spec.md §5's
// upgrade-path note about swapping in a transactional KV layer.
package kvstore

import "context"

// KV is the ordered key-value store this module depends on. All methods
// operate on raw byte keys and values; callers (kvkey, codec) own the
// encoding.
type KV interface {
	// Get returns the value stored at key, or (nil, false, nil) if absent.
	Get(ctx context.Context, key []byte) (value []byte, found bool, err error)

	// Batch applies every write in ops atomically: either all of them are
	// durable or none are (spec.md §4.3 step 11, §5's "atomic batch
	// semantics" requirement).
	Batch(ctx context.Context, ops []Write) error

	// ScanFrom performs a forward range scan starting at the first key
	// greater than or equal to start, calling fn for each row in
	// ascending key order until fn returns false, ctx is cancelled, or
	// the store is exhausted.
	ScanFrom(ctx context.Context, start []byte, fn func(key, value []byte) (more bool, err error)) error

	// SeekForPrev returns the entry at the greatest key less than or
	// equal to key, or (nil, nil, false, nil) if none exists. This is the
	// nearest-predecessor primitive spec.md §4.6 requires for
	// getLatestBefore.
	SeekForPrev(ctx context.Context, key []byte) (foundKey, value []byte, found bool, err error)

	// Close releases any resources the store holds open.
	Close() error
}

// Write is one put within an atomic Batch.
type Write struct {
	Key   []byte
	Value []byte
}

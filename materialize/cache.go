package materialize

import (
	"context"
	"fmt"
	"sync"

	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/internal/striping"
	"github.com/tectonic-sim/platetruth/topology"
)

// cacheKey is (stream, cutoff, lastSeq) — spec.md §4.9 calls lastSeq
// "essential": if a back-in-time append arrives under policy Allow, the
// stream's head sequence advances even though the queried tick did not
// change, so the key changes and the stale entry is never served.
type cacheKey struct {
	stream string
	cutoff int64
	lastSeq int64
}

// CacheMaterializer wraps a SnapshottingMaterializer with a concurrent
// result cache keyed by (stream, cutoff, lastSeq). Eviction is out of
// scope (spec.md §4.9: "unbounded in the reference design"); a caller
// that needs a bound wraps this type rather than CacheMaterializer
// growing one itself.
type CacheMaterializer struct {
	inner *SnapshottingMaterializer

	stripeCount int
	stripes     []*cacheStripe
}

type cacheStripe struct {
	mu      sync.RWMutex
	entries map[cacheKey]*topology.TopologyState
}

// NewCache returns a CacheMaterializer over inner with stripeCount
// independent lock stripes (xxhash-keyed, internal/striping) to reduce
// contention under concurrent readers targeting different streams.
func NewCache(inner *SnapshottingMaterializer, stripeCount int) *CacheMaterializer {
	if stripeCount < 1 {
		stripeCount = 1
	}
	stripes := make([]*cacheStripe, stripeCount)
	for i := range stripes {
		stripes[i] = &cacheStripe{entries: make(map[cacheKey]*topology.TopologyState)}
	}

	return &CacheMaterializer{inner: inner, stripeCount: stripeCount, stripes: stripes}
}

func (c *CacheMaterializer) stripeFor(key cacheKey) *cacheStripe {
	k := fmt.Sprintf("%s|%d|%d", key.stream, key.cutoff, key.lastSeq)

	return c.stripes[striping.Index(k, c.stripeCount)]
}

// MaterializeAtTick returns the cached state for (stream, targetTick,
// currentHeadSequence) if present, else computes, caches, and returns it.
// The returned state must be treated as read-only by callers that don't
// own it — a defensive caller clones before mutating.
func (c *CacheMaterializer) MaterializeAtTick(ctx context.Context, stream topology.StreamIdentity, targetTick int64, mode format.MaterializeMode) (*topology.TopologyState, error) {
	lastSeq, err := c.inner.eventStore.GetLastSequence(ctx, stream)
	if err != nil {
		return nil, err
	}

	key := cacheKey{stream: stream.String(), cutoff: targetTick, lastSeq: lastSeq}
	stripe := c.stripeFor(key)

	stripe.mu.RLock()
	if cached, ok := stripe.entries[key]; ok {
		stripe.mu.RUnlock()

		return cached, nil
	}
	stripe.mu.RUnlock()

	state, err := c.inner.MaterializeAtTick(ctx, stream, targetTick, mode)
	if err != nil {
		return nil, err
	}

	stripe.mu.Lock()
	stripe.entries[key] = state
	stripe.mu.Unlock()

	return state, nil
}

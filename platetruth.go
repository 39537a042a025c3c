// Package platetruth is the façade over the event-sourced topology truth
// store: Timeline composes the event store, snapshot store, and
// materializer layers into the three queries most callers need (spec.md
// §2's Timeline component).
package platetruth

import (
	"context"
	"math"

	"github.com/tectonic-sim/platetruth/eventstore"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/kvstore"
	"github.com/tectonic-sim/platetruth/materialize"
	"github.com/tectonic-sim/platetruth/snapshot"
	"github.com/tectonic-sim/platetruth/topology"
)

// Timeline is a thin façade exposing Latest, At(tick), and
// AtSequence(sequence) queries over one stream's event log, wired through
// a caching, snapshot-accelerated materializer.
type Timeline struct {
	stream topology.StreamIdentity
	store  *eventstore.EventStore
	cache  *materialize.CacheMaterializer
}

// Store bundles the shared infrastructure every Timeline for a given KV
// backend is built from, so callers open one KV store and hand out many
// Timelines cheaply.
type Store struct {
	KV        kvstore.KV
	Events    *eventstore.EventStore
	Snapshots *snapshot.Store
}

// NewStore wires an EventStore and snapshot.Store over kv.
func NewStore(kv kvstore.KV) *Store {
	return &Store{
		KV:        kv,
		Events:    eventstore.New(kv),
		Snapshots: snapshot.NewStore(kv),
	}
}

// Timeline returns a Timeline over stream, backed by s's event and
// snapshot stores, with its own independent materialization cache.
func (s *Store) Timeline(stream topology.StreamIdentity, cacheStripes int) *Timeline {
	base := materialize.New(s.Events)
	snapshotting := materialize.NewSnapshotting(base, s.Snapshots, s.Events)

	return &Timeline{
		stream: stream,
		store:  s.Events,
		cache:  materialize.NewCache(snapshotting, cacheStripes),
	}
}

// Append appends events to the timeline's stream. It is a thin pass
// through to eventstore.EventStore.Append, kept on Timeline so callers
// that only hold a Timeline don't need a separate reference to the
// EventStore for the common read-and-write case.
func (t *Timeline) Append(ctx context.Context, events []topology.Envelope, opts ...eventstore.AppendOption) (eventstore.AppendResult, error) {
	return t.store.Append(ctx, t.stream, events, opts...)
}

// Latest materializes the stream's current head: every event through the
// last appended sequence, regardless of tick. It uses math.MaxInt64 as
// the tick cutoff rather than the head event's own tick, because under
// TickPolicyAllow a later sequence can carry an earlier tick (spec.md
// §8 property 9's back-in-time scenario) — the head event's tick is not
// necessarily the maximum tick among folded events.
func (t *Timeline) Latest(ctx context.Context) (*topology.TopologyState, error) {
	return t.cache.MaterializeAtTick(ctx, t.stream, math.MaxInt64, format.ModeAuto)
}

// At materializes the stream as of targetTick, using mode to resolve
// non-monotone ticks (spec.md §4.7).
func (t *Timeline) At(ctx context.Context, targetTick int64, mode format.MaterializeMode) (*topology.TopologyState, error) {
	return t.cache.MaterializeAtTick(ctx, t.stream, targetTick, mode)
}

// AtSequence materializes the stream through targetSequence inclusive.
func (t *Timeline) AtSequence(ctx context.Context, targetSequence int64) (*topology.TopologyState, error) {
	base := materialize.New(t.store)

	return base.MaterializeAtSequence(ctx, t.stream, targetSequence)
}

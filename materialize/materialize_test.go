package materialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tectonic-sim/platetruth/eventstore"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/guid"
	"github.com/tectonic-sim/platetruth/kvstore/memkv"
	"github.com/tectonic-sim/platetruth/snapshot"
	"github.com/tectonic-sim/platetruth/topology"
)

func testStream() topology.StreamIdentity {
	return topology.StreamIdentity{VariantID: "v1", BranchID: "main", Domain: "tectonics.surface", Model: "m1"}
}

func plateCreated(seq, tick int64, plateID topology.PlateId) topology.Envelope {
	return topology.Envelope{
		EventID:        guid.New(),
		Tick:           tick,
		Sequence:       seq,
		StreamIdentity: testStream(),
		Payload:        topology.PlateCreated{PlateID: plateID},
	}
}

func TestMaterializeAtSequence(t *testing.T) {
	store := eventstore.New(memkv.New())
	ctx := context.Background()
	stream := testStream()

	p0, p1 := guid.New(), guid.New()
	_, err := store.Append(ctx, stream, []topology.Envelope{plateCreated(0, 0, p0), plateCreated(1, 1, p1)})
	require.NoError(t, err)

	m := New(store)
	state, err := m.MaterializeAtSequence(ctx, stream, 0)
	require.NoError(t, err)
	require.Contains(t, state.Plates, p0)
	require.NotContains(t, state.Plates, p1)

	state, err = m.MaterializeAtSequence(ctx, stream, 1)
	require.NoError(t, err)
	require.Contains(t, state.Plates, p0)
	require.Contains(t, state.Plates, p1)
}

// S5 — a later sequence can carry an earlier tick than its predecessor
// under TickPolicyAllow; Auto mode must fall back to folding everything
// and cutting off in memory rather than stopping at the first
// tick-greater-than-target event, since that would silently drop later
// events with smaller ticks.
func TestMaterializeAtTickAutoModeBackInTime(t *testing.T) {
	store := eventstore.New(memkv.New())
	ctx := context.Background()
	stream := testStream()

	p0, p1, p2 := guid.New(), guid.New(), guid.New()
	_, err := store.Append(ctx, stream, []topology.Envelope{
		plateCreated(0, 10, p0),
		plateCreated(1, 20, p1),
		plateCreated(2, 15, p2),
	}, eventstore.WithTickPolicy(format.TickPolicyAllow))
	require.NoError(t, err)

	m := New(store)
	state, err := m.MaterializeAtTick(ctx, stream, 15, format.ModeAuto)
	require.NoError(t, err)

	require.Contains(t, state.Plates, p0)
	require.Contains(t, state.Plates, p2)
	require.NotContains(t, state.Plates, p1, "tick 20 exceeds target 15 even though it appears before the tick-15 event")
}

func TestMaterializeAtTickMonotoneUsesStopOnFirst(t *testing.T) {
	store := eventstore.New(memkv.New())
	ctx := context.Background()
	stream := testStream()

	p0, p1 := guid.New(), guid.New()
	_, err := store.Append(ctx, stream, []topology.Envelope{plateCreated(0, 10, p0), plateCreated(1, 20, p1)},
		eventstore.WithTickPolicy(format.TickPolicyReject))
	require.NoError(t, err)

	m := New(store)
	state, err := m.MaterializeAtTick(ctx, stream, 15, format.ModeAuto)
	require.NoError(t, err)
	require.Contains(t, state.Plates, p0)
	require.NotContains(t, state.Plates, p1)
}

// S6 — snapshot acceleration: materializing past the head persists a
// snapshot; a subsequent append plus re-materialization must only replay
// the single new tail event rather than the whole log.
func TestSnapshottingMaterializerAccelerates(t *testing.T) {
	kv := memkv.New()
	store := eventstore.New(kv)
	snapStore := snapshot.NewStore(kv)
	ctx := context.Background()
	stream := testStream()

	var plates []topology.PlateId
	var events []topology.Envelope
	for i := int64(0); i < 5; i++ {
		id := guid.New()
		plates = append(plates, id)
		events = append(events, plateCreated(i, i*10, id))
	}
	_, err := store.Append(ctx, stream, events)
	require.NoError(t, err)

	sm := NewSnapshotting(New(store), snapStore, store)
	state, err := sm.MaterializeAtTick(ctx, stream, 100, format.ModeFoldAllAndCutoffInMemory)
	require.NoError(t, err)
	require.Equal(t, int64(4), state.LastEventSequence)
	for _, p := range plates {
		require.Contains(t, state.Plates, p)
	}

	snap, found, err := snapStore.Get(ctx, stream, 100)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(4), snap.LastEventSequence)

	extraPlate := guid.New()
	_, err = store.Append(ctx, stream, []topology.Envelope{plateCreated(5, 50, extraPlate)})
	require.NoError(t, err)

	state2, err := sm.MaterializeAtTick(ctx, stream, 100, format.ModeFoldAllAndCutoffInMemory)
	require.NoError(t, err)
	require.Equal(t, int64(5), state2.LastEventSequence)
	require.Contains(t, state2.Plates, extraPlate)
}

func TestCacheMaterializerServesRepeatCallsWithoutRereplay(t *testing.T) {
	kv := memkv.New()
	store := eventstore.New(kv)
	snapStore := snapshot.NewStore(kv)
	ctx := context.Background()
	stream := testStream()

	p0 := guid.New()
	_, err := store.Append(ctx, stream, []topology.Envelope{plateCreated(0, 0, p0)})
	require.NoError(t, err)

	cache := NewCache(NewSnapshotting(New(store), snapStore, store), 4)

	first, err := cache.MaterializeAtTick(ctx, stream, 0, format.ModeAuto)
	require.NoError(t, err)
	second, err := cache.MaterializeAtTick(ctx, stream, 0, format.ModeAuto)
	require.NoError(t, err)
	require.Same(t, first, second, "repeat call at the same (stream, tick, headSequence) must hit the cache")
}

func TestCacheMaterializerInvalidatesOnNewAppend(t *testing.T) {
	kv := memkv.New()
	store := eventstore.New(kv)
	snapStore := snapshot.NewStore(kv)
	ctx := context.Background()
	stream := testStream()

	p0 := guid.New()
	_, err := store.Append(ctx, stream, []topology.Envelope{plateCreated(0, 0, p0)})
	require.NoError(t, err)

	cache := NewCache(NewSnapshotting(New(store), snapStore, store), 4)
	_, err = cache.MaterializeAtTick(ctx, stream, 100, format.ModeAuto)
	require.NoError(t, err)

	p1 := guid.New()
	_, err = store.Append(ctx, stream, []topology.Envelope{plateCreated(1, 1, p1)})
	require.NoError(t, err)

	updated, err := cache.MaterializeAtTick(ctx, stream, 100, format.ModeAuto)
	require.NoError(t, err)
	require.Contains(t, updated.Plates, p1)
}

package materialize

import (
	"context"

	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/snapshot"
	"github.com/tectonic-sim/platetruth/topology"
)

// SnapshottingMaterializer wraps a Materializer with a snapshot.Store: it
// seeds replay from the nearest snapshot at or before the target tick
// instead of sequence zero, and opportunistically persists a new snapshot
// when no such snapshot exists and the full materialization covers the
// stream's current head (spec.md §4.8).
type SnapshottingMaterializer struct {
	materializer *Materializer
	snapshots    *snapshot.Store
	eventStore   headSequencer
}

// headSequencer is the minimal EventStore surface SnapshottingMaterializer
// needs: the current head sequence, used to decide whether a freshly
// produced state covers the stream's tip.
type headSequencer interface {
	GetLastSequence(ctx context.Context, stream topology.StreamIdentity) (int64, error)
}

// NewSnapshotting returns a SnapshottingMaterializer over materializer and
// snapshots, using store only to query the current head sequence.
func NewSnapshotting(materializer *Materializer, snapshots *snapshot.Store, store headSequencer) *SnapshottingMaterializer {
	return &SnapshottingMaterializer{materializer: materializer, snapshots: snapshots, eventStore: store}
}

// MaterializeAtTick implements spec.md §4.8's procedure: find the nearest
// covering or preceding snapshot, replay only the tail the snapshot
// doesn't already cover (using the sequence boundary, never the tick, to
// decide what to replay). Only when no snapshot was found does it persist
// a new one, and then only if the result covers the stream's head; a
// snapshot-seeded result is never persisted.
func (sm *SnapshottingMaterializer) MaterializeAtTick(ctx context.Context, stream topology.StreamIdentity, targetTick int64, mode format.MaterializeMode) (*topology.TopologyState, error) {
	lastSeq, err := sm.eventStore.GetLastSequence(ctx, stream)
	if err != nil {
		return nil, err
	}

	candidate, found, err := sm.snapshots.GetLatestBefore(ctx, stream, targetTick)
	if err != nil {
		return nil, err
	}

	if found {
		seeded := candidate.ToState()
		if candidate.Tick == targetTick && candidate.LastEventSequence == lastSeq {
			return seeded, nil
		}

		return sm.materializer.MaterializeIncrementally(ctx, seeded, &targetTick, nil, mode)
	}

	state, err := sm.materializer.MaterializeAtTick(ctx, stream, targetTick, mode)
	if err != nil {
		return nil, err
	}

	if state.LastEventSequence >= lastSeq {
		snap := snapshot.FromState(state, targetTick)
		if err := sm.snapshots.Save(ctx, snap); err != nil {
			return nil, err
		}
	}

	return state, nil
}

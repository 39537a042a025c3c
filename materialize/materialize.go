// Package materialize folds event logs into topology.TopologyState views:
// plain replay from sequence zero, tick- and sequence-cutoff modes, and
// incremental replay from an existing base state (spec.md §4.7).
package materialize

import (
	"context"
	"fmt"

	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/eventstore"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/topology"
)

// Materializer folds an EventStore's log into TopologyState views. It
// holds no cache and no snapshot awareness of its own — those are the
// concerns of SnapshottingMaterializer, which wraps a Materializer, and
// CacheMaterializer, which wraps a SnapshottingMaterializer; neither
// reimplements the fold.
type Materializer struct {
	store *eventstore.EventStore
}

// New returns a Materializer reading from store.
func New(store *eventstore.EventStore) *Materializer {
	return &Materializer{store: store}
}

// MaterializeAtSequence folds every event from sequence 0 through
// targetSequence inclusive (or until the stream ends) into a fresh state
// (spec.md §4.7).
func (m *Materializer) MaterializeAtSequence(ctx context.Context, stream topology.StreamIdentity, targetSequence int64) (*topology.TopologyState, error) {
	return m.materializeIncrementally(ctx, topology.NewState(stream), cutoff{sequence: &targetSequence}, format.ModeAuto)
}

// MaterializeAtTick folds events up to targetTick according to mode
// (spec.md §4.7): Auto picks StopOnFirstTickGreaterThanTarget when the
// stream's capabilities report TickMonotoneFromGenesis, else
// FoldAllAndCutoffInMemory, since a later sequence may carry an earlier
// tick when ticks are not monotone.
func (m *Materializer) MaterializeAtTick(ctx context.Context, stream topology.StreamIdentity, targetTick int64, mode format.MaterializeMode) (*topology.TopologyState, error) {
	resolvedMode, err := m.resolveMode(ctx, stream, mode)
	if err != nil {
		return nil, err
	}

	return m.materializeIncrementally(ctx, topology.NewState(stream), cutoff{tick: &targetTick}, resolvedMode)
}

// MaterializeIncrementally folds events starting at
// base.LastEventSequence+1 into a clone of base, rather than from
// sequence 0 (spec.md §4.7's materializeIncrementally). base is not
// mutated.
func (m *Materializer) MaterializeIncrementally(ctx context.Context, base *topology.TopologyState, targetTick *int64, targetSequence *int64, mode format.MaterializeMode) (*topology.TopologyState, error) {
	resolvedMode := mode
	if targetTick != nil {
		var err error
		resolvedMode, err = m.resolveMode(ctx, base.Stream, mode)
		if err != nil {
			return nil, err
		}
	}

	return m.materializeIncrementally(ctx, base.Clone(), cutoff{tick: targetTick, sequence: targetSequence}, resolvedMode)
}

func (m *Materializer) resolveMode(ctx context.Context, stream topology.StreamIdentity, mode format.MaterializeMode) (format.MaterializeMode, error) {
	if mode != format.ModeAuto {
		return mode, nil
	}

	monotone, err := m.store.IsTickMonotoneFromGenesis(ctx, stream)
	if err != nil {
		return 0, err
	}
	if monotone {
		return format.ModeStopOnFirstTickGreaterThanTarget, nil
	}

	return format.ModeFoldAllAndCutoffInMemory, nil
}

// cutoff bundles the two cutoff shapes a materialization may be bounded
// by. MaterializeAtTick and MaterializeAtSequence set exactly one of them;
// MaterializeIncrementally may set either, both, or neither (nil means
// unbounded on that axis).
type cutoff struct {
	tick     *int64
	sequence *int64
}

func (m *Materializer) materializeIncrementally(ctx context.Context, base *topology.TopologyState, cut cutoff, mode format.MaterializeMode) (*topology.TopologyState, error) {
	reader := m.store.Read(ctx, base.Stream, base.LastEventSequence+1)
	defer reader.Close()

	for reader.Next() {
		env := reader.Event()

		if cut.sequence != nil && env.Sequence > *cut.sequence {
			break
		}
		if cut.tick != nil && mode == format.ModeStopOnFirstTickGreaterThanTarget && env.Tick > *cut.tick {
			break
		}
		if cut.tick != nil && mode == format.ModeFoldAllAndCutoffInMemory && env.Tick > *cut.tick {
			// Not applied, but folded through: the next sequence must still
			// line up with LastEventSequence+1 in Apply.
			base.LastEventSequence = env.Sequence

			continue
		}

		if err := base.Apply(env); err != nil {
			return nil, err
		}

		if cut.sequence != nil && env.Sequence == *cut.sequence {
			break
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrReplay, err)
	}

	return base, nil
}

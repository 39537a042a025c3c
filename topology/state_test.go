package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tectonic-sim/platetruth/guid"
)

func envelope(seq int64, tick int64, payload Payload) Envelope {
	return Envelope{
		EventID:        guid.New(),
		Tick:           tick,
		Sequence:       seq,
		StreamIdentity: StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"},
		Payload:        payload,
	}
}

func TestApplyPlateLifecycle(t *testing.T) {
	plateID := guid.New()
	state := NewState(StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"})

	require.NoError(t, state.Apply(envelope(0, 0, PlateCreated{PlateID: plateID})))
	require.Contains(t, state.Plates, plateID)
	require.False(t, state.Plates[plateID].Retired)

	require.NoError(t, state.Apply(envelope(1, 1, PlateRetired{PlateID: plateID})))
	require.True(t, state.Plates[plateID].Retired)

	// Idempotent retirement.
	require.NoError(t, state.Apply(envelope(2, 2, PlateRetired{PlateID: plateID})))
	require.Equal(t, int64(2), state.LastEventSequence)
}

func TestApplyDuplicatePlateIsReplayError(t *testing.T) {
	plateID := guid.New()
	state := NewState(StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"})

	require.NoError(t, state.Apply(envelope(0, 0, PlateCreated{PlateID: plateID})))
	err := state.Apply(envelope(1, 1, PlateCreated{PlateID: plateID}))
	require.Error(t, err)
}

func TestBoundaryRequiresActivePlates(t *testing.T) {
	left, right, boundary := guid.New(), guid.New(), guid.New()
	state := NewState(StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"})

	err := state.Apply(envelope(0, 0, BoundaryCreated{BoundaryID: boundary, PlateLeft: left, PlateRight: right}))
	require.Error(t, err, "plates do not exist yet")

	require.NoError(t, state.Apply(envelope(0, 0, PlateCreated{PlateID: left})))
	require.NoError(t, state.Apply(envelope(1, 0, PlateCreated{PlateID: right})))
	require.NoError(t, state.Apply(envelope(2, 0, BoundaryCreated{BoundaryID: boundary, PlateLeft: left, PlateRight: right})))
	require.Contains(t, state.Boundaries, boundary)
}

func TestBoundaryRetiredRemovesFromJunction(t *testing.T) {
	left, right, boundary, junction := guid.New(), guid.New(), guid.New(), guid.New()
	state := NewState(StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"})

	require.NoError(t, state.Apply(envelope(0, 0, PlateCreated{PlateID: left})))
	require.NoError(t, state.Apply(envelope(1, 0, PlateCreated{PlateID: right})))
	require.NoError(t, state.Apply(envelope(2, 0, BoundaryCreated{BoundaryID: boundary, PlateLeft: left, PlateRight: right})))
	require.NoError(t, state.Apply(envelope(3, 0, JunctionCreated{JunctionID: junction, BoundaryIDs: []BoundaryId{boundary}})))
	require.Len(t, state.Junctions[junction].BoundaryIDs, 1)

	require.NoError(t, state.Apply(envelope(4, 0, BoundaryRetired{BoundaryID: boundary})))
	require.Empty(t, state.Junctions[junction].BoundaryIDs)
	require.True(t, state.Boundaries[boundary].Retired)
}

func TestJunctionUpdatedOptionalLocationLeavesUnchangedWhenNil(t *testing.T) {
	left, right, boundary, junction := guid.New(), guid.New(), guid.New(), guid.New()
	state := NewState(StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"})

	require.NoError(t, state.Apply(envelope(0, 0, PlateCreated{PlateID: left})))
	require.NoError(t, state.Apply(envelope(1, 0, PlateCreated{PlateID: right})))
	require.NoError(t, state.Apply(envelope(2, 0, BoundaryCreated{BoundaryID: boundary, PlateLeft: left, PlateRight: right})))

	loc := Point{X: 1, Y: 2, Z: 3}
	require.NoError(t, state.Apply(envelope(3, 0, JunctionCreated{JunctionID: junction, BoundaryIDs: []BoundaryId{boundary}, Location: &loc})))

	require.NoError(t, state.Apply(envelope(4, 0, JunctionUpdated{JunctionID: junction, BoundaryIDs: []BoundaryId{boundary}})))
	require.NotNil(t, state.Junctions[junction].Location)
	require.Equal(t, loc, *state.Junctions[junction].Location)
}

func TestApplyRejectsOutOfOrderSequence(t *testing.T) {
	state := NewState(StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"})
	err := state.Apply(envelope(1, 0, PlateCreated{PlateID: guid.New()}))
	require.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	plateID, boundaryID, left, right := guid.New(), guid.New(), guid.New(), guid.New()
	state := NewState(StreamIdentity{VariantID: "v", BranchID: "b", Domain: "a.b", Model: "m"})
	require.NoError(t, state.Apply(envelope(0, 0, PlateCreated{PlateID: left})))
	require.NoError(t, state.Apply(envelope(1, 0, PlateCreated{PlateID: right})))
	require.NoError(t, state.Apply(envelope(2, 0, BoundaryCreated{BoundaryID: boundaryID, PlateLeft: left, PlateRight: right, Geometry: []Point{{X: 1}}})))
	require.NoError(t, state.Apply(envelope(3, 0, PlateCreated{PlateID: plateID})))

	clone := state.Clone()
	clone.Boundaries[boundaryID].Geometry[0].X = 999
	require.NotEqual(t, clone.Boundaries[boundaryID].Geometry[0].X, state.Boundaries[boundaryID].Geometry[0].X)
}

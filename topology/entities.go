package topology

import "github.com/tectonic-sim/platetruth/guid"

// PlateId, BoundaryId, and JunctionId are opaque 128-bit entity
// identifiers stored by value (spec.md §9: "entity references as
// identifiers, not pointers"). There are no cyclic pointer graphs; every
// relation is resolved by a map lookup against TopologyState.
type (
	PlateId    = guid.GUID
	BoundaryId = guid.GUID
	JunctionId = guid.GUID
)

// GeometryScale is the fixed-point scale factor used for every coordinate
// this package stores. Coordinates are persisted and hashed as scaled
// int64 values rather than raw IEEE-754 doubles: spec.md §8 property 3
// requires that "for every event type, the preimage serializer writes no
// IEEE-754-typed tokens", which is stricter than the geometry carve-out
// §4.1 gestures at, so geometry is encoded the same deterministic way as
// every other field instead of as a float bit pattern.
const GeometryScale = 1_000_000

// Point is a fixed-point 3D coordinate. X, Y, and Z are the true value
// multiplied by GeometryScale and truncated to the nearest integer.
type Point struct {
	X, Y, Z int64
}

// Plate is a tectonic plate in the topology state.
type Plate struct {
	ID      PlateId
	Retired bool
}

// Boundary is a shared edge between two plates.
type Boundary struct {
	ID          BoundaryId
	Type        string
	PlateLeft   PlateId
	PlateRight  PlateId
	Geometry    []Point
	Retired     bool
}

// Junction is a point where three or more boundaries meet.
type Junction struct {
	ID          JunctionId
	BoundaryIDs []BoundaryId
	Location    *Point
	Retired     bool
}

// Clone returns a deep copy so callers (snapshots, cache entries) never
// share mutable backing arrays across independent TopologyState values.
func (b Boundary) Clone() Boundary {
	clone := b
	if b.Geometry != nil {
		clone.Geometry = make([]Point, len(b.Geometry))
		copy(clone.Geometry, b.Geometry)
	}

	return clone
}

// Clone returns a deep copy of j.
func (j Junction) Clone() Junction {
	clone := j
	if j.BoundaryIDs != nil {
		clone.BoundaryIDs = make([]BoundaryId, len(j.BoundaryIDs))
		copy(clone.BoundaryIDs, j.BoundaryIDs)
	}
	if j.Location != nil {
		loc := *j.Location
		clone.Location = &loc
	}

	return clone
}

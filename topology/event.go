package topology

import (
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/guid"
)

// EventID is the 128-bit time-sortable identifier spec.md §3.3 describes
// as a UUIDv7 layout (48-bit ms timestamp, 4-bit version, 2-bit variant,
// remaining bits random or seeded). The core never generates one itself
// (spec.md §9: "the core does not generate identifiers; it only stores
// them") — EventID is just the guid.GUID a caller already produced.
type EventID = guid.GUID

// Hash is the 32-byte SHA-256 chain link computed by the hasher, never set
// directly by callers (spec.md §3.3).
type Hash [32]byte

// ZeroHash is the genesis previousHash: 32 zero bytes.
var ZeroHash Hash

// Payload is the tagged-union interface every concrete event payload
// implements. The discriminator is the payload's own Type(); the codec
// dispatches on it for encode and on the wire tag byte for decode,
// per spec.md §9's "tagged union over the payload variants" guidance.
type Payload interface {
	Type() format.EventType
}

// Envelope is the full in-memory representation of one event: the
// identity, ordering, and chain-linkage fields plus its typed Payload.
// What the KV store actually persists is not this value but the
// derived Record (topology does not define Record; codec does), which
// wraps the canonical encoding of an Envelope alongside the chain fields
// needed for O(1) validation.
type Envelope struct {
	EventID        EventID
	Tick           CanonicalTick
	Sequence       Sequence
	StreamIdentity StreamIdentity
	PreviousHash   Hash
	Hash           Hash
	Payload        Payload
}

// PlateCreated introduces a new plate.
type PlateCreated struct {
	PlateID PlateId
}

func (PlateCreated) Type() format.EventType { return format.EventTypePlateCreated }

// PlateRetired marks a plate retired.
type PlateRetired struct {
	PlateID PlateId
}

func (PlateRetired) Type() format.EventType { return format.EventTypePlateRetired }

// BoundaryCreated introduces a boundary between two existing, non-retired
// plates.
type BoundaryCreated struct {
	BoundaryID BoundaryId
	Kind       string
	PlateLeft  PlateId
	PlateRight PlateId
	Geometry   []Point
}

func (BoundaryCreated) Type() format.EventType { return format.EventTypeBoundaryCreated }

// BoundaryTypeChanged updates the type of an existing non-retired
// boundary.
type BoundaryTypeChanged struct {
	BoundaryID BoundaryId
	Kind       string
}

func (BoundaryTypeChanged) Type() format.EventType { return format.EventTypeBoundaryTypeChanged }

// BoundaryGeometryUpdated replaces the geometry of an existing non-retired
// boundary.
type BoundaryGeometryUpdated struct {
	BoundaryID BoundaryId
	Geometry   []Point
}

func (BoundaryGeometryUpdated) Type() format.EventType { return format.EventTypeBoundaryGeometryUpdated }

// BoundaryRetired marks a boundary retired and removes it from any
// junction's incident list during the fold.
type BoundaryRetired struct {
	BoundaryID BoundaryId
}

func (BoundaryRetired) Type() format.EventType { return format.EventTypeBoundaryRetired }

// JunctionCreated introduces a junction over a set of existing, non-retired
// boundaries.
type JunctionCreated struct {
	JunctionID  JunctionId
	BoundaryIDs []BoundaryId
	Location    *Point
}

func (JunctionCreated) Type() format.EventType { return format.EventTypeJunctionCreated }

// JunctionUpdated replaces a junction's boundary list and, optionally, its
// location. NewLocation is nil to mean "unchanged" — spec.md §9 requires
// the absence to be encoded with an explicit tag byte rather than a
// sentinel such as NaN.
type JunctionUpdated struct {
	JunctionID  JunctionId
	BoundaryIDs []BoundaryId
	NewLocation *Point
}

func (JunctionUpdated) Type() format.EventType { return format.EventTypeJunctionUpdated }

// JunctionRetired marks a junction retired.
type JunctionRetired struct {
	JunctionID JunctionId
}

func (JunctionRetired) Type() format.EventType { return format.EventTypeJunctionRetired }

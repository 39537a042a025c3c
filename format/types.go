// Package format holds the small, shared enumerations used throughout the
// truth store: schema versioning, append policies, materialization modes,
// the event-type discriminator table, capability bits, and the snapshot
// compression tag. None of these types carry behavior beyond String() and
// validation — they exist so every package agrees on the same wire
// constants without importing each other.
package format

// SchemaVersion identifies the layout of a stored event record (spec.md §3.4).
// The core only ever writes CurrentSchemaVersion; older values are accepted
// on read for forward compatibility with whatever a future migration adds.
type SchemaVersion uint32

const CurrentSchemaVersion SchemaVersion = 1

// TickPolicy controls whether CanonicalTick may decrease between
// consecutive events in the same append batch (spec.md §4.3).
type TickPolicy uint8

const (
	// TickPolicyAllow never rejects a decreasing tick.
	TickPolicyAllow TickPolicy = iota + 1
	// TickPolicyWarn accepts a decreasing tick but reports it as a warning.
	TickPolicyWarn
	// TickPolicyReject fails the whole batch if any tick decreases.
	TickPolicyReject
)

func (p TickPolicy) String() string {
	switch p {
	case TickPolicyAllow:
		return "Allow"
	case TickPolicyWarn:
		return "Warn"
	case TickPolicyReject:
		return "Reject"
	default:
		return "Unknown"
	}
}

// MaterializeMode selects how Materializer.MaterializeAtTick handles a
// stream whose ticks are not known to be monotone with sequence (spec.md §4.7).
type MaterializeMode uint8

const (
	// ModeAuto picks FoldAllAndCutoffInMemory or StopOnFirstTickGreaterThanTarget
	// based on the stream's TickMonotoneFromGenesis capability.
	ModeAuto MaterializeMode = iota + 1
	// ModeFoldAllAndCutoffInMemory reads every event and, at fold time,
	// skips (does not apply) any whose tick exceeds the target. Required
	// when ticks are not monotone with sequence.
	ModeFoldAllAndCutoffInMemory
	// ModeStopOnFirstTickGreaterThanTarget stops reading as soon as an
	// event's tick exceeds the target. Only correct when ticks are
	// monotone with sequence.
	ModeStopOnFirstTickGreaterThanTarget
)

func (m MaterializeMode) String() string {
	switch m {
	case ModeAuto:
		return "Auto"
	case ModeFoldAllAndCutoffInMemory:
		return "FoldAllAndCutoffInMemory"
	case ModeStopOnFirstTickGreaterThanTarget:
		return "StopOnFirstTickGreaterThanTarget"
	default:
		return "Unknown"
	}
}

// EventType is the stable short-string discriminator of the tagged union
// described in spec.md §3.3. The byte value is what the codec actually
// writes to the wire; the string is derived from it for error messages
// and the envelope's EventType() accessor.
type EventType uint8

const (
	EventTypePlateCreated EventType = iota + 1
	EventTypePlateRetired
	EventTypeBoundaryCreated
	EventTypeBoundaryTypeChanged
	EventTypeBoundaryGeometryUpdated
	EventTypeBoundaryRetired
	EventTypeJunctionCreated
	EventTypeJunctionUpdated
	EventTypeJunctionRetired
)

func (t EventType) String() string {
	switch t {
	case EventTypePlateCreated:
		return "PlateCreated"
	case EventTypePlateRetired:
		return "PlateRetired"
	case EventTypeBoundaryCreated:
		return "BoundaryCreated"
	case EventTypeBoundaryTypeChanged:
		return "BoundaryTypeChanged"
	case EventTypeBoundaryGeometryUpdated:
		return "BoundaryGeometryUpdated"
	case EventTypeBoundaryRetired:
		return "BoundaryRetired"
	case EventTypeJunctionCreated:
		return "JunctionCreated"
	case EventTypeJunctionUpdated:
		return "JunctionUpdated"
	case EventTypeJunctionRetired:
		return "JunctionRetired"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the known discriminators. The codec
// uses this to fail CorruptionError on an unknown tag rather than silently
// skipping it (spec.md §9).
func (t EventType) Valid() bool {
	return t >= EventTypePlateCreated && t <= EventTypeJunctionRetired
}

// Capability is a single bit in the per-stream capability set (spec.md §3.8).
type Capability uint8

const (
	// CapabilityGenesisWithRejectPolicy is set only when a stream's
	// genesis append used TickPolicyReject.
	CapabilityGenesisWithRejectPolicy Capability = 1 << 0
	// CapabilityTickMonotoneFromGenesis is set alongside
	// CapabilityGenesisWithRejectPolicy at genesis and never afterward.
	CapabilityTickMonotoneFromGenesis Capability = 1 << 1
)

// CapabilitySetSize is the fixed number of raw bytes the capability bit-set
// occupies in the KV store (spec.md §6.2): one byte of flags, eight
// reserved bytes that must be zero.
const CapabilitySetSize = 9

// CapabilitySet is the flag byte of a stream's capability bit-set: an OR
// of zero or more Capability bits.
type CapabilitySet uint8

// Has reports whether bit is set in the flag byte.
func (c CapabilitySet) Has(bit Capability) bool {
	return c&CapabilitySet(bit) != 0
}

// With returns c with bit set.
func (c CapabilitySet) With(bit Capability) CapabilitySet {
	return c | CapabilitySet(bit)
}

// CompressionType selects the codec used to compress a persisted snapshot
// (SPEC_FULL.md, Domain Stack). CompressionNone means the snapshot bytes
// are stored as the canonical encoding produced without a compression pass.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota + 1
	CompressionZstd
	CompressionS2
	CompressionLZ4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

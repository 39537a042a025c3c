package topology

import (
	"fmt"

	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/guid"
)

// TopologyState is the in-memory result of folding a prefix of a stream's
// event log (spec.md §3.7). It is never read from or written to
// concurrently without external synchronization; materialize and cache
// callers are responsible for not sharing a mutable state across
// goroutines.
type TopologyState struct {
	Stream            StreamIdentity
	LastEventSequence Sequence

	Plates     map[PlateId]Plate
	Boundaries map[BoundaryId]Boundary
	Junctions  map[JunctionId]Junction
}

// NewState returns an empty state for stream with LastEventSequence set to
// -1 (nothing folded yet), matching the Empty head sentinel spec.md §3.5
// defines.
func NewState(stream StreamIdentity) *TopologyState {
	return &TopologyState{
		Stream:            stream,
		LastEventSequence: -1,
		Plates:            make(map[PlateId]Plate),
		Boundaries:        make(map[BoundaryId]Boundary),
		Junctions:         make(map[JunctionId]Junction),
	}
}

// Clone returns a deep copy of s, used whenever a caller needs to mutate a
// base state (a cache hit, a snapshot-seeded state) without disturbing the
// shared original.
func (s *TopologyState) Clone() *TopologyState {
	out := &TopologyState{
		Stream:            s.Stream,
		LastEventSequence: s.LastEventSequence,
		Plates:            make(map[PlateId]Plate, len(s.Plates)),
		Boundaries:        make(map[BoundaryId]Boundary, len(s.Boundaries)),
		Junctions:         make(map[JunctionId]Junction, len(s.Junctions)),
	}
	for id, p := range s.Plates {
		out.Plates[id] = p
	}
	for id, b := range s.Boundaries {
		out.Boundaries[id] = b.Clone()
	}
	for id, j := range s.Junctions {
		out.Junctions[id] = j.Clone()
	}

	return out
}

// Apply folds one event into s according to the transition rules of
// spec.md §4.7.1. It returns errs.ErrReplay for any precondition
// violation — a missing or retired entity reference, an id collision, or
// an out-of-order sequence — since such a violation means the store is
// corrupt, not that the caller should retry (spec.md §7).
func (s *TopologyState) Apply(env Envelope) error {
	if env.Sequence != s.LastEventSequence+1 {
		return fmt.Errorf("%w: expected sequence %d, got %d", errs.ErrReplay, s.LastEventSequence+1, env.Sequence)
	}

	switch p := env.Payload.(type) {
	case PlateCreated:
		if err := s.applyPlateCreated(p); err != nil {
			return err
		}
	case PlateRetired:
		if err := s.applyPlateRetired(p); err != nil {
			return err
		}
	case BoundaryCreated:
		if err := s.applyBoundaryCreated(p); err != nil {
			return err
		}
	case BoundaryTypeChanged:
		if err := s.applyBoundaryTypeChanged(p); err != nil {
			return err
		}
	case BoundaryGeometryUpdated:
		if err := s.applyBoundaryGeometryUpdated(p); err != nil {
			return err
		}
	case BoundaryRetired:
		if err := s.applyBoundaryRetired(p); err != nil {
			return err
		}
	case JunctionCreated:
		if err := s.applyJunctionCreated(p); err != nil {
			return err
		}
	case JunctionUpdated:
		if err := s.applyJunctionUpdated(p); err != nil {
			return err
		}
	case JunctionRetired:
		if err := s.applyJunctionRetired(p); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unhandled payload type %T", errs.ErrUnknownEventType, env.Payload)
	}

	s.LastEventSequence = env.Sequence

	return nil
}

func (s *TopologyState) applyPlateCreated(p PlateCreated) error {
	if _, exists := s.Plates[p.PlateID]; exists {
		return fmt.Errorf("%w: plate %s already exists", errs.ErrReplay, p.PlateID)
	}
	s.Plates[p.PlateID] = Plate{ID: p.PlateID}

	return nil
}

func (s *TopologyState) applyPlateRetired(p PlateRetired) error {
	// Idempotent on an already-retired plate; retiring an unknown plate is
	// a missing entity reference.
	plate, exists := s.Plates[p.PlateID]
	if !exists {
		return fmt.Errorf("%w: plate %s must exist", errs.ErrReplay, p.PlateID)
	}
	plate.Retired = true
	s.Plates[p.PlateID] = plate

	return nil
}

func (s *TopologyState) requireActivePlate(id PlateId) error {
	plate, exists := s.Plates[id]
	if !exists || plate.Retired {
		return fmt.Errorf("%w: plate %s must exist and be non-retired", errs.ErrReplay, id)
	}

	return nil
}

func (s *TopologyState) requireActiveBoundary(id BoundaryId) error {
	boundary, exists := s.Boundaries[id]
	if !exists || boundary.Retired {
		return fmt.Errorf("%w: boundary %s must exist and be non-retired", errs.ErrReplay, id)
	}

	return nil
}

func (s *TopologyState) applyBoundaryCreated(p BoundaryCreated) error {
	if _, exists := s.Boundaries[p.BoundaryID]; exists {
		return fmt.Errorf("%w: boundary %s already exists", errs.ErrReplay, p.BoundaryID)
	}
	if err := s.requireActivePlate(p.PlateLeft); err != nil {
		return err
	}
	if err := s.requireActivePlate(p.PlateRight); err != nil {
		return err
	}
	s.Boundaries[p.BoundaryID] = Boundary{
		ID:         p.BoundaryID,
		Type:       p.Kind,
		PlateLeft:  p.PlateLeft,
		PlateRight: p.PlateRight,
		Geometry:   p.Geometry,
	}

	return nil
}

func (s *TopologyState) applyBoundaryTypeChanged(p BoundaryTypeChanged) error {
	if err := s.requireActiveBoundary(p.BoundaryID); err != nil {
		return err
	}
	boundary := s.Boundaries[p.BoundaryID]
	boundary.Type = p.Kind
	s.Boundaries[p.BoundaryID] = boundary

	return nil
}

func (s *TopologyState) applyBoundaryGeometryUpdated(p BoundaryGeometryUpdated) error {
	if err := s.requireActiveBoundary(p.BoundaryID); err != nil {
		return err
	}
	boundary := s.Boundaries[p.BoundaryID]
	boundary.Geometry = p.Geometry
	s.Boundaries[p.BoundaryID] = boundary

	return nil
}

func (s *TopologyState) applyBoundaryRetired(p BoundaryRetired) error {
	if err := s.requireActiveBoundary(p.BoundaryID); err != nil {
		return err
	}
	boundary := s.Boundaries[p.BoundaryID]
	boundary.Retired = true
	s.Boundaries[p.BoundaryID] = boundary

	for id, junction := range s.Junctions {
		if junction.Retired {
			continue
		}
		filtered := junction.BoundaryIDs[:0:0]
		changed := false
		for _, bid := range junction.BoundaryIDs {
			if guid.Compare(bid, p.BoundaryID) == 0 {
				changed = true

				continue
			}
			filtered = append(filtered, bid)
		}
		if changed {
			junction.BoundaryIDs = filtered
			s.Junctions[id] = junction
		}
	}

	return nil
}

func (s *TopologyState) applyJunctionCreated(p JunctionCreated) error {
	if _, exists := s.Junctions[p.JunctionID]; exists {
		return fmt.Errorf("%w: junction %s already exists", errs.ErrReplay, p.JunctionID)
	}
	for _, bid := range p.BoundaryIDs {
		if err := s.requireActiveBoundary(bid); err != nil {
			return err
		}
	}
	s.Junctions[p.JunctionID] = Junction{
		ID:          p.JunctionID,
		BoundaryIDs: p.BoundaryIDs,
		Location:    p.Location,
	}

	return nil
}

func (s *TopologyState) applyJunctionUpdated(p JunctionUpdated) error {
	junction, exists := s.Junctions[p.JunctionID]
	if !exists || junction.Retired {
		return fmt.Errorf("%w: junction %s must exist and be non-retired", errs.ErrReplay, p.JunctionID)
	}
	for _, bid := range p.BoundaryIDs {
		if err := s.requireActiveBoundary(bid); err != nil {
			return err
		}
	}
	junction.BoundaryIDs = p.BoundaryIDs
	if p.NewLocation != nil {
		junction.Location = p.NewLocation
	}
	s.Junctions[p.JunctionID] = junction

	return nil
}

func (s *TopologyState) applyJunctionRetired(p JunctionRetired) error {
	junction, exists := s.Junctions[p.JunctionID]
	if !exists {
		return fmt.Errorf("%w: junction %s must exist", errs.ErrReplay, p.JunctionID)
	}
	junction.Retired = true
	s.Junctions[p.JunctionID] = junction

	return nil
}

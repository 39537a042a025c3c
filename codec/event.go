package codec

import (
	"fmt"

	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/guid"
	"github.com/tectonic-sim/platetruth/internal/pool"
	"github.com/tectonic-sim/platetruth/topology"
)

// EncodeEvent writes env as a canonical array, in field declaration order:
// [eventId, eventType, tick, sequence, streamIdentity, payload].
// previousHash and hash are deliberately NOT part of this encoding: the
// record wrapper around eventBytes already carries both explicitly
// (spec.md §3.4's "O(1) chain validation without decoding the payload"),
// so duplicating them inside eventBytes would be redundant and would
// make encodeEvent circularly dependent on a hash it is itself an input
// to. Callers populate Envelope.PreviousHash and Envelope.Hash from the
// surrounding Record after DecodeEvent returns.
//
// Payload is itself dispatched on env.Payload.Type() into a nested tagged
// array, per spec.md §9's "tagged union over the payload variants"
// guidance.
func EncodeEvent(env topology.Envelope) []byte {
	bb := pool.GetEventBuffer()
	defer pool.PutEventBuffer(bb)

	w := NewWriter(bb.Bytes())
	w.WriteGUID(env.EventID)
	w.WriteUvarint(uint64(env.Payload.Type()))
	w.WriteVarint(env.Tick)
	w.WriteVarint(env.Sequence)
	encodeStreamIdentity(w, env.StreamIdentity)
	encodePayload(w, env.Payload)

	return append([]byte(nil), w.Bytes()...)
}

// DecodeEvent parses the inverse of EncodeEvent. An eventType discriminator
// outside the known range fails with errs.ErrUnknownEventType rather than
// silently skipping the field (spec.md §9). The returned Envelope's
// PreviousHash and Hash are left zero; the caller fills them in from the
// Record that wrapped this eventBytes.
func DecodeEvent(data []byte) (topology.Envelope, error) {
	r := NewReader(data)

	var env topology.Envelope
	var err error

	if env.EventID, err = r.ReadGUID(); err != nil {
		return env, err
	}
	rawType, err := r.ReadUvarint()
	if err != nil {
		return env, err
	}
	eventType := format.EventType(rawType)
	if !eventType.Valid() {
		return env, fmt.Errorf("%w: discriminator %d", errs.ErrUnknownEventType, rawType)
	}
	if env.Tick, err = r.ReadVarint(); err != nil {
		return env, err
	}
	if env.Sequence, err = r.ReadVarint(); err != nil {
		return env, err
	}
	if env.StreamIdentity, err = decodeStreamIdentity(r); err != nil {
		return env, err
	}

	env.Payload, err = decodePayload(r, eventType)
	if err != nil {
		return env, err
	}

	return env, nil
}

func encodeStreamIdentity(w *Writer, s topology.StreamIdentity) {
	w.WriteString(s.VariantID)
	w.WriteString(s.BranchID)
	w.WriteVarint(int64(s.LLevel))
	w.WriteString(s.Domain)
	w.WriteString(s.Model)
}

func decodeStreamIdentity(r *Reader) (topology.StreamIdentity, error) {
	var s topology.StreamIdentity
	var err error

	if s.VariantID, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.BranchID, err = r.ReadString(); err != nil {
		return s, err
	}
	lLevel, err := r.ReadVarint()
	if err != nil {
		return s, err
	}
	s.LLevel = int(lLevel)
	if s.Domain, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.Model, err = r.ReadString(); err != nil {
		return s, err
	}

	return s, nil
}

func encodePoints(w *Writer, points []topology.Point) {
	w.WriteUvarint(uint64(len(points)))
	for _, p := range points {
		w.WriteVarint(p.X)
		w.WriteVarint(p.Y)
		w.WriteVarint(p.Z)
	}
}

func decodePoints(r *Reader) ([]topology.Point, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	points := make([]topology.Point, n)
	for i := range points {
		if points[i].X, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if points[i].Y, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if points[i].Z, err = r.ReadVarint(); err != nil {
			return nil, err
		}
	}

	return points, nil
}

func encodeOptionalPoint(w *Writer, p *topology.Point) {
	w.WriteBool(p != nil)
	if p != nil {
		w.WriteVarint(p.X)
		w.WriteVarint(p.Y)
		w.WriteVarint(p.Z)
	}
}

func decodeOptionalPoint(r *Reader) (*topology.Point, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	var p topology.Point
	if p.X, err = r.ReadVarint(); err != nil {
		return nil, err
	}
	if p.Y, err = r.ReadVarint(); err != nil {
		return nil, err
	}
	if p.Z, err = r.ReadVarint(); err != nil {
		return nil, err
	}

	return &p, nil
}

func encodeGUIDSlice(w *Writer, ids []guid.GUID) {
	w.WriteUvarint(uint64(len(ids)))
	for _, id := range ids {
		w.WriteGUID(id)
	}
}

func decodeGUIDSlice(r *Reader) ([]guid.GUID, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ids := make([]guid.GUID, n)
	for i := range ids {
		if ids[i], err = r.ReadGUID(); err != nil {
			return nil, err
		}
	}

	return ids, nil
}

func encodePayload(w *Writer, payload topology.Payload) {
	switch p := payload.(type) {
	case topology.PlateCreated:
		w.WriteGUID(p.PlateID)
	case topology.PlateRetired:
		w.WriteGUID(p.PlateID)
	case topology.BoundaryCreated:
		w.WriteGUID(p.BoundaryID)
		w.WriteString(p.Kind)
		w.WriteGUID(p.PlateLeft)
		w.WriteGUID(p.PlateRight)
		encodePoints(w, p.Geometry)
	case topology.BoundaryTypeChanged:
		w.WriteGUID(p.BoundaryID)
		w.WriteString(p.Kind)
	case topology.BoundaryGeometryUpdated:
		w.WriteGUID(p.BoundaryID)
		encodePoints(w, p.Geometry)
	case topology.BoundaryRetired:
		w.WriteGUID(p.BoundaryID)
	case topology.JunctionCreated:
		w.WriteGUID(p.JunctionID)
		encodeGUIDSlice(w, p.BoundaryIDs)
		encodeOptionalPoint(w, p.Location)
	case topology.JunctionUpdated:
		w.WriteGUID(p.JunctionID)
		encodeGUIDSlice(w, p.BoundaryIDs)
		encodeOptionalPoint(w, p.NewLocation)
	case topology.JunctionRetired:
		w.WriteGUID(p.JunctionID)
	}
}

func decodePayload(r *Reader, eventType format.EventType) (topology.Payload, error) {
	switch eventType {
	case format.EventTypePlateCreated:
		id, err := r.ReadGUID()

		return topology.PlateCreated{PlateID: id}, err
	case format.EventTypePlateRetired:
		id, err := r.ReadGUID()

		return topology.PlateRetired{PlateID: id}, err
	case format.EventTypeBoundaryCreated:
		var p topology.BoundaryCreated
		var err error
		if p.BoundaryID, err = r.ReadGUID(); err != nil {
			return nil, err
		}
		if p.Kind, err = r.ReadString(); err != nil {
			return nil, err
		}
		if p.PlateLeft, err = r.ReadGUID(); err != nil {
			return nil, err
		}
		if p.PlateRight, err = r.ReadGUID(); err != nil {
			return nil, err
		}
		p.Geometry, err = decodePoints(r)

		return p, err
	case format.EventTypeBoundaryTypeChanged:
		var p topology.BoundaryTypeChanged
		var err error
		if p.BoundaryID, err = r.ReadGUID(); err != nil {
			return nil, err
		}
		p.Kind, err = r.ReadString()

		return p, err
	case format.EventTypeBoundaryGeometryUpdated:
		var p topology.BoundaryGeometryUpdated
		var err error
		if p.BoundaryID, err = r.ReadGUID(); err != nil {
			return nil, err
		}
		p.Geometry, err = decodePoints(r)

		return p, err
	case format.EventTypeBoundaryRetired:
		id, err := r.ReadGUID()

		return topology.BoundaryRetired{BoundaryID: id}, err
	case format.EventTypeJunctionCreated:
		var p topology.JunctionCreated
		var err error
		if p.JunctionID, err = r.ReadGUID(); err != nil {
			return nil, err
		}
		if p.BoundaryIDs, err = decodeGUIDSlice(r); err != nil {
			return nil, err
		}
		p.Location, err = decodeOptionalPoint(r)

		return p, err
	case format.EventTypeJunctionUpdated:
		var p topology.JunctionUpdated
		var err error
		if p.JunctionID, err = r.ReadGUID(); err != nil {
			return nil, err
		}
		if p.BoundaryIDs, err = decodeGUIDSlice(r); err != nil {
			return nil, err
		}
		p.NewLocation, err = decodeOptionalPoint(r)

		return p, err
	case format.EventTypeJunctionRetired:
		id, err := r.ReadGUID()

		return topology.JunctionRetired{JunctionID: id}, err
	default:
		return nil, fmt.Errorf("%w: discriminator %d", errs.ErrUnknownEventType, eventType)
	}
}

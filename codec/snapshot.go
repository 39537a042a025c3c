package codec

import "github.com/tectonic-sim/platetruth/topology"

// SnapshotKey is the logical (stream, tick, lastEventSequence) tuple
// spec.md §3.6 calls a snapshot's key. It is encoded redundantly inside
// the snapshot value itself (not just derived from the KV key it is
// stored under) so a decoded snapshot is self-describing and can be
// sanity-checked against the KV key that produced it.
type SnapshotKey struct {
	Stream            topology.StreamIdentity
	Tick              int64
	LastEventSequence int64
}

// SnapshotRecord is the full decoded value at a snapshot key: the key
// tuple plus the three sorted entity collections (spec.md §3.6).
type SnapshotRecord struct {
	Key        SnapshotKey
	Plates     []topology.Plate
	Boundaries []topology.Boundary
	Junctions  []topology.Junction
}

// EncodeSnapshot writes the canonical array
// [key, lastEventSequence, plates[], boundaries[], junctions[]].
func EncodeSnapshot(rec SnapshotRecord) []byte {
	w := NewWriter(nil)
	encodeStreamIdentity(w, rec.Key.Stream)
	w.WriteVarint(rec.Key.Tick)
	w.WriteVarint(rec.Key.LastEventSequence)

	w.WriteUvarint(uint64(len(rec.Plates)))
	for _, p := range rec.Plates {
		w.WriteGUID(p.ID)
		w.WriteBool(p.Retired)
	}

	w.WriteUvarint(uint64(len(rec.Boundaries)))
	for _, b := range rec.Boundaries {
		w.WriteGUID(b.ID)
		w.WriteString(b.Type)
		w.WriteGUID(b.PlateLeft)
		w.WriteGUID(b.PlateRight)
		encodePoints(w, b.Geometry)
		w.WriteBool(b.Retired)
	}

	w.WriteUvarint(uint64(len(rec.Junctions)))
	for _, j := range rec.Junctions {
		w.WriteGUID(j.ID)
		encodeGUIDSlice(w, j.BoundaryIDs)
		encodeOptionalPoint(w, j.Location)
		w.WriteBool(j.Retired)
	}

	return w.Bytes()
}

// DecodeSnapshot parses the inverse of EncodeSnapshot.
func DecodeSnapshot(data []byte) (SnapshotRecord, error) {
	r := NewReader(data)

	var rec SnapshotRecord
	var err error

	if rec.Key.Stream, err = decodeStreamIdentity(r); err != nil {
		return rec, err
	}
	if rec.Key.Tick, err = r.ReadVarint(); err != nil {
		return rec, err
	}
	if rec.Key.LastEventSequence, err = r.ReadVarint(); err != nil {
		return rec, err
	}

	plateCount, err := r.ReadUvarint()
	if err != nil {
		return rec, err
	}
	rec.Plates = make([]topology.Plate, plateCount)
	for i := range rec.Plates {
		if rec.Plates[i].ID, err = r.ReadGUID(); err != nil {
			return rec, err
		}
		if rec.Plates[i].Retired, err = r.ReadBool(); err != nil {
			return rec, err
		}
	}

	boundaryCount, err := r.ReadUvarint()
	if err != nil {
		return rec, err
	}
	rec.Boundaries = make([]topology.Boundary, boundaryCount)
	for i := range rec.Boundaries {
		b := &rec.Boundaries[i]
		if b.ID, err = r.ReadGUID(); err != nil {
			return rec, err
		}
		if b.Type, err = r.ReadString(); err != nil {
			return rec, err
		}
		if b.PlateLeft, err = r.ReadGUID(); err != nil {
			return rec, err
		}
		if b.PlateRight, err = r.ReadGUID(); err != nil {
			return rec, err
		}
		if b.Geometry, err = decodePoints(r); err != nil {
			return rec, err
		}
		if b.Retired, err = r.ReadBool(); err != nil {
			return rec, err
		}
	}

	junctionCount, err := r.ReadUvarint()
	if err != nil {
		return rec, err
	}
	rec.Junctions = make([]topology.Junction, junctionCount)
	for i := range rec.Junctions {
		j := &rec.Junctions[i]
		if j.ID, err = r.ReadGUID(); err != nil {
			return rec, err
		}
		if j.BoundaryIDs, err = decodeGUIDSlice(r); err != nil {
			return rec, err
		}
		if j.Location, err = decodeOptionalPoint(r); err != nil {
			return rec, err
		}
		if j.Retired, err = r.ReadBool(); err != nil {
			return rec, err
		}
	}

	return rec, nil
}

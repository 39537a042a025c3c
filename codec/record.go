package codec

import (
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/internal/pool"
)

// Record is what the KV store holds at each event key: the chain-linkage
// fields plus the still-encoded event bytes, so hash validation never has
// to decode the payload (spec.md §3.4).
type Record struct {
	SchemaVersion format.SchemaVersion
	Tick          int64
	PreviousHash  [32]byte
	Hash          [32]byte
	EventBytes    []byte
}

// EncodeRecord writes a canonical 5-element array:
// [schemaVersion, tick, previousHash, hash, eventBytes].
func EncodeRecord(r Record) []byte {
	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	w := NewWriter(bb.Bytes())
	w.WriteUvarint(uint64(r.SchemaVersion))
	w.WriteVarint(r.Tick)
	w.WriteFixed(r.PreviousHash[:])
	w.WriteFixed(r.Hash[:])
	w.WriteBytes(r.EventBytes)

	return append([]byte(nil), w.Bytes()...)
}

// DecodeRecord parses the inverse of EncodeRecord.
func DecodeRecord(data []byte) (Record, error) {
	r := NewReader(data)

	var rec Record
	var err error

	schemaVersion, err := r.ReadUvarint()
	if err != nil {
		return rec, err
	}
	rec.SchemaVersion = format.SchemaVersion(schemaVersion)
	if rec.Tick, err = r.ReadVarint(); err != nil {
		return rec, err
	}
	prevHash, err := r.ReadFixed(32)
	if err != nil {
		return rec, err
	}
	copy(rec.PreviousHash[:], prevHash)
	hash, err := r.ReadFixed(32)
	if err != nil {
		return rec, err
	}
	copy(rec.Hash[:], hash)
	if rec.EventBytes, err = r.ReadBytes(); err != nil {
		return rec, err
	}

	return rec, nil
}

// IsLegacyRecord reports whether data is a legacy-layout event record.
// Event records have carried the same 5-field layout since schemaVersion
// 1 — the only legacy wire layout this store actually defines is the head
// record's single-field predecessor (see DecodeHead) — so this always
// returns false. It completes the codec's DecodeRecord/IsLegacyRecord
// pair; neither eventstore's read path nor materialize calls it.
func IsLegacyRecord(data []byte) bool {
	return false
}

// EncodePreimage writes the canonical 4-element array
// [schemaVersion, tick, previousHash, eventBytes] that the hasher
// computes SHA-256 over. The record's own hash field is deliberately not
// part of this (spec.md §4.2).
func EncodePreimage(schemaVersion format.SchemaVersion, tick int64, previousHash [32]byte, eventBytes []byte) []byte {
	w := NewWriter(nil)
	w.WriteUvarint(uint64(schemaVersion))
	w.WriteVarint(tick)
	w.WriteFixed(previousHash[:])
	w.WriteBytes(eventBytes)

	return w.Bytes()
}

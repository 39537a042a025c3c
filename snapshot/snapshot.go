// Package snapshot stores and retrieves tick-indexed materializations of a
// stream's topology (spec.md §3.6, §4.6): an exact-tick save/get, and a
// nearest-predecessor "latest before" lookup built on the KV layer's
// seek-for-previous primitive.
package snapshot

import (
	"context"
	"fmt"
	"sort"

	"github.com/tectonic-sim/platetruth/codec"
	"github.com/tectonic-sim/platetruth/compress"
	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/guid"
	"github.com/tectonic-sim/platetruth/kvkey"
	"github.com/tectonic-sim/platetruth/kvstore"
	"github.com/tectonic-sim/platetruth/topology"
)

// Snapshot is the materialized view persisted at one (stream, tick) pair,
// always carrying the exact lastEventSequence it summarizes so incremental
// replay can resume from the sequence boundary rather than the tick
// (spec.md §3.6).
type Snapshot struct {
	Stream            topology.StreamIdentity
	Tick              int64
	LastEventSequence int64
	Plates            []topology.Plate
	Boundaries        []topology.Boundary
	Junctions         []topology.Junction
}

// FromState builds a Snapshot at tick from state, sorting every entity
// collection into canonical GUID order (spec.md §3.6, §4.10).
func FromState(state *topology.TopologyState, tick int64) Snapshot {
	s := Snapshot{
		Stream:            state.Stream,
		Tick:              tick,
		LastEventSequence: state.LastEventSequence,
		Plates:            make([]topology.Plate, 0, len(state.Plates)),
		Boundaries:        make([]topology.Boundary, 0, len(state.Boundaries)),
		Junctions:         make([]topology.Junction, 0, len(state.Junctions)),
	}
	for _, p := range state.Plates {
		s.Plates = append(s.Plates, p)
	}
	for _, b := range state.Boundaries {
		s.Boundaries = append(s.Boundaries, b)
	}
	for _, j := range state.Junctions {
		s.Junctions = append(s.Junctions, j)
	}

	sort.Slice(s.Plates, func(i, j int) bool { return guid.Less(s.Plates[i].ID, s.Plates[j].ID) })
	sort.Slice(s.Boundaries, func(i, j int) bool { return guid.Less(s.Boundaries[i].ID, s.Boundaries[j].ID) })
	sort.Slice(s.Junctions, func(i, j int) bool { return guid.Less(s.Junctions[i].ID, s.Junctions[j].ID) })

	return s
}

// ToState rebuilds a *topology.TopologyState from a snapshot, ready to be
// used as the base of an incremental replay.
func (s Snapshot) ToState() *topology.TopologyState {
	state := topology.NewState(s.Stream)
	state.LastEventSequence = s.LastEventSequence
	for _, p := range s.Plates {
		state.Plates[p.ID] = p
	}
	for _, b := range s.Boundaries {
		state.Boundaries[b.ID] = b
	}
	for _, j := range s.Junctions {
		state.Junctions[j.ID] = j
	}

	return state
}

// Store persists and retrieves Snapshots against a kvstore.KV. Snapshot
// bytes may optionally be compressed (SPEC_FULL.md domain stack); the
// compression pass runs strictly after the canonical encoding and never
// touches anything that participates in a hash preimage — snapshots are
// not chain-linked, so this is a pure storage-size optimization.
type Store struct {
	kv       kvstore.KV
	codec    compress.Codec
	compType format.CompressionType

	lastStats compress.Stats
}

// NewStore returns a Store with no compression (format.CompressionNone).
func NewStore(kv kvstore.KV) *Store {
	return &Store{kv: kv, codec: noopCodec(), compType: format.CompressionNone}
}

// WithCompression returns a copy of the store that compresses snapshot
// bytes with compType before writing and decompresses on read.
func (s *Store) WithCompression(compType format.CompressionType) (*Store, error) {
	c, err := compress.GetCodec(compType)
	if err != nil {
		return nil, err
	}

	return &Store{kv: s.kv, codec: c, compType: compType}, nil
}

func noopCodec() compress.Codec {
	c, _ := compress.GetCodec(format.CompressionNone)

	return c
}

// LastSaveStats reports the compress.Stats of the most recent call to
// Save, so a caller deciding between format.CompressionType values can
// check the ratio it is actually getting on real snapshot payloads rather
// than picking blind.
func (s *Store) LastSaveStats() compress.Stats {
	return s.lastStats
}

// Save persists snapshot at {prefix}Snap:{tick:be64} (spec.md §4.6).
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	record := codec.SnapshotRecord{
		Key: codec.SnapshotKey{
			Stream:            snap.Stream,
			Tick:              snap.Tick,
			LastEventSequence: snap.LastEventSequence,
		},
		Plates:     snap.Plates,
		Boundaries: snap.Boundaries,
		Junctions:  snap.Junctions,
	}
	encoded := codec.EncodeSnapshot(record)
	compressed, stats, err := compress.Measure(s.codec, s.compType, encoded)
	if err != nil {
		return fmt.Errorf("snapshot: compress: %w", err)
	}
	s.lastStats = stats

	value := append([]byte{byte(s.compType)}, compressed...)

	return s.kv.Batch(ctx, []kvstore.Write{{Key: kvkey.SnapshotKey(snap.Stream, snap.Tick), Value: value}})
}

// Get performs an exact-tick lookup.
func (s *Store) Get(ctx context.Context, stream topology.StreamIdentity, tick int64) (Snapshot, bool, error) {
	raw, found, err := s.kv.Get(ctx, kvkey.SnapshotKey(stream, tick))
	if err != nil || !found {
		return Snapshot{}, false, err
	}

	snap, err := decodeStoredSnapshot(raw)

	return snap, true, err
}

// GetLatestBefore returns the snapshot with the greatest tick <=
// targetTick, using the KV's seek-for-previous primitive, verifying the
// returned key still carries the stream's own snapshot prefix so a scan
// never crosses into another stream's key range (spec.md §4.6).
func (s *Store) GetLatestBefore(ctx context.Context, stream topology.StreamIdentity, targetTick int64) (Snapshot, bool, error) {
	key := kvkey.SnapshotKey(stream, targetTick)
	foundKey, value, found, err := s.kv.SeekForPrev(ctx, key)
	if err != nil {
		return Snapshot{}, false, err
	}
	if !found || !kvkey.HasPrefix(foundKey, kvkey.SnapshotPrefix(stream)) {
		return Snapshot{}, false, nil
	}

	snap, err := decodeStoredSnapshot(value)

	return snap, err == nil, err
}

func decodeStoredSnapshot(raw []byte) (Snapshot, error) {
	if len(raw) < 1 {
		return Snapshot{}, fmt.Errorf("%w: empty snapshot value", errs.ErrInvalidEncoding)
	}
	compType := format.CompressionType(raw[0])
	c, err := compress.GetCodec(compType)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", errs.ErrInvalidEncoding, err)
	}
	decompressed, err := c.Decompress(raw[1:])
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decompress: %w", err)
	}
	record, err := codec.DecodeSnapshot(decompressed)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Stream:            record.Key.Stream,
		Tick:              record.Key.Tick,
		LastEventSequence: record.Key.LastEventSequence,
		Plates:            record.Plates,
		Boundaries:        record.Boundaries,
		Junctions:         record.Junctions,
	}, nil
}

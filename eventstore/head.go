package eventstore

import (
	"context"
	"fmt"

	"github.com/tectonic-sim/platetruth/codec"
	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/kvkey"
	"github.com/tectonic-sim/platetruth/topology"
)

// fetchHead is the shared, unlocked head lookup both GetHead and Append's
// internal precondition check use. Readers do not take the per-stream
// lock (spec.md §5); Append takes it itself around the whole
// read-check-write sequence, of which this lookup is only the first step.
func (s *EventStore) fetchHead(ctx context.Context, stream topology.StreamIdentity) (codec.Head, error) {
	raw, found, err := s.kv.Get(ctx, kvkey.HeadKey(stream))
	if err != nil {
		return codec.Head{}, err
	}
	if !found {
		return codec.Empty, nil
	}

	head, legacy, err := codec.DecodeHead(raw)
	if err != nil {
		return codec.Head{}, fmt.Errorf("%w: head record for stream %s: %v", errs.ErrInvalidEncoding, stream, err)
	}
	if !legacy {
		return head, nil
	}

	// Legacy layout only carried lastSequence; recover lastHash and
	// lastTick from the corresponding event record (spec.md §4.5, §7).
	eventRaw, found, err := s.kv.Get(ctx, kvkey.EventKey(stream, head.LastSequence))
	if err != nil {
		return codec.Head{}, err
	}
	if !found {
		return codec.Head{}, fmt.Errorf("%w: legacy head references missing event %d for stream %s", errs.ErrCorruption, head.LastSequence, stream)
	}
	record, err := codec.DecodeRecord(eventRaw)
	if err != nil {
		return codec.Head{}, fmt.Errorf("%w: legacy head event %d for stream %s: %v", errs.ErrInvalidEncoding, head.LastSequence, stream, err)
	}

	return codec.Head{LastSequence: head.LastSequence, LastHash: record.Hash, LastTick: record.Tick}, nil
}

// GetHead returns the stream's current tip, or codec.Empty if the stream
// has never been appended to (spec.md §4.5).
func (s *EventStore) GetHead(ctx context.Context, stream topology.StreamIdentity) (codec.Head, error) {
	return s.fetchHead(ctx, stream)
}

// GetLastSequence returns the stream's last sequence number, or -1 for an
// empty stream.
func (s *EventStore) GetLastSequence(ctx context.Context, stream topology.StreamIdentity) (int64, error) {
	head, err := s.fetchHead(ctx, stream)
	if err != nil {
		return 0, err
	}

	return head.LastSequence, nil
}

// Capabilities returns the stream's capability bit-set, or 0 (no bits
// set) if the stream has no capabilities entry.
func (s *EventStore) Capabilities(ctx context.Context, stream topology.StreamIdentity) (format.CapabilitySet, error) {
	raw, found, err := s.kv.Get(ctx, kvkey.CapabilitiesKey(stream))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	return codec.DecodeCapabilities(raw)
}

// IsTickMonotoneFromGenesis reports whether the stream's ticks are known
// to be monotone with sequence from the genesis event onward. The
// monotone bit is honored only when the genesis-with-reject-policy bit is
// also set; an inconsistent bit-set (monotone set without genesis-reject)
// is treated as neither bit being set, defending against a corrupted
// capabilities entry (spec.md §3.8).
func (s *EventStore) IsTickMonotoneFromGenesis(ctx context.Context, stream topology.StreamIdentity) (bool, error) {
	caps, err := s.Capabilities(ctx, stream)
	if err != nil {
		return false, err
	}
	if !caps.Has(format.CapabilityGenesisWithRejectPolicy) {
		return false, nil
	}

	return caps.Has(format.CapabilityTickMonotoneFromGenesis), nil
}

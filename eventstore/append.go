package eventstore

import (
	"context"
	"fmt"

	"github.com/tectonic-sim/platetruth/codec"
	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/hashchain"
	"github.com/tectonic-sim/platetruth/kvkey"
	"github.com/tectonic-sim/platetruth/kvstore"
	"github.com/tectonic-sim/platetruth/topology"
)

// Warning is a non-fatal diagnostic Append collects under
// format.TickPolicyWarn, surfaced to the caller in AppendResult rather
// than printed, since the store carries no logging dependency of its own
// (SPEC_FULL.md's ambient-stack section).
type Warning struct {
	Index   int
	Message string
}

// AppendResult is the successful outcome of Append: the stream's new head
// plus any tick-policy warnings collected along the way.
type AppendResult struct {
	Head     codec.Head
	Warnings []Warning
}

// Append commits a non-empty, strictly sequence-monotonic batch of events,
// all bearing the same stream, to the event log (spec.md §4.3). It
// validates the batch, applies the tick policy, checks the optional
// optimistic-concurrency precondition, computes the hash chain, and
// commits everything (event rows, head, and — at genesis under
// TickPolicyReject — capabilities) as one atomic batch.
func (s *EventStore) Append(ctx context.Context, stream topology.StreamIdentity, events []topology.Envelope, opts ...AppendOption) (AppendResult, error) {
	cfg, err := newAppendConfig(opts)
	if err != nil {
		return AppendResult{}, err
	}

	if err := stream.Validate(); err != nil {
		return AppendResult{}, err
	}
	if len(events) == 0 {
		return AppendResult{}, errs.ErrEmptyBatch
	}
	for i, event := range events {
		if event.StreamIdentity != stream {
			return AppendResult{}, fmt.Errorf("%w: event at index %d does not carry stream %s", errs.ErrBatchValidation, i, stream)
		}
		if i > 0 && event.Sequence != events[i-1].Sequence+1 {
			return AppendResult{}, fmt.Errorf("%w: each sequence must be exactly one more than the previous, index %d has %d after %d", errs.ErrBatchValidation, i, event.Sequence, events[i-1].Sequence)
		}
	}

	var warnings []Warning
	for i := 1; i < len(events); i++ {
		if events[i].Tick < events[i-1].Tick {
			switch cfg.tickPolicy {
			case format.TickPolicyReject:
				return AppendResult{}, fmt.Errorf("%w: tick decreased from %d to %d at index %d", errs.ErrTickMonotonicity, events[i-1].Tick, events[i].Tick, i)
			case format.TickPolicyWarn:
				warnings = append(warnings, Warning{
					Index:   i,
					Message: fmt.Sprintf("tick decreased from %d to %d at sequence %d", events[i-1].Tick, events[i].Tick, events[i].Sequence),
				})
			case format.TickPolicyAllow:
				// no-op
			}
		}
	}

	prefix := kvkey.StreamPrefix(stream)
	mu := s.lockFor(prefix)
	mu.Lock()
	defer mu.Unlock()

	currentHead, err := s.fetchHead(ctx, stream)
	if err != nil {
		return AppendResult{}, err
	}

	if cfg.expectedHead != nil {
		if currentHead.LastSequence != cfg.expectedHead.LastSequence || currentHead.LastHash != cfg.expectedHead.LastHash {
			return AppendResult{}, fmt.Errorf("%w: expected {seq:%d hash:%x} actual {seq:%d hash:%x}",
				errs.ErrConcurrencyConflict, cfg.expectedHead.LastSequence, cfg.expectedHead.LastHash, currentHead.LastSequence, currentHead.LastHash)
		}
	}

	isGenesis := currentHead.LastSequence == -1
	if events[0].Sequence != currentHead.LastSequence+1 {
		return AppendResult{}, fmt.Errorf("%w: batch must start at sequence %d, got %d", errs.ErrBatchValidation, currentHead.LastSequence+1, events[0].Sequence)
	}

	previousHash := currentHead.LastHash
	if isGenesis {
		previousHash = hashchain.Zero
	}

	ops := make([]kvstore.Write, 0, len(events)+2)
	var lastHash [32]byte
	var lastTick int64

	for _, event := range events {
		eventBytes := codec.EncodeEvent(event)
		hash := hashchain.Compute(format.CurrentSchemaVersion, event.Tick, previousHash, eventBytes)
		record := codec.Record{
			SchemaVersion: format.CurrentSchemaVersion,
			Tick:          event.Tick,
			PreviousHash:  previousHash,
			Hash:          hash,
			EventBytes:    eventBytes,
		}
		ops = append(ops, kvstore.Write{
			Key:   kvkey.EventKey(stream, event.Sequence),
			Value: codec.EncodeRecord(record),
		})

		previousHash = hash
		lastHash = hash
		lastTick = event.Tick
	}

	lastSequence := events[len(events)-1].Sequence
	newHead := codec.Head{LastSequence: lastSequence, LastHash: lastHash, LastTick: lastTick}
	ops = append(ops, kvstore.Write{Key: kvkey.HeadKey(stream), Value: codec.EncodeHead(newHead)})

	if isGenesis && cfg.tickPolicy == format.TickPolicyReject {
		caps := format.CapabilitySet(0).With(format.CapabilityGenesisWithRejectPolicy).With(format.CapabilityTickMonotoneFromGenesis)
		ops = append(ops, kvstore.Write{Key: kvkey.CapabilitiesKey(stream), Value: codec.EncodeCapabilities(caps)})
	}

	if err := s.kv.Batch(ctx, ops); err != nil {
		return AppendResult{}, err
	}

	return AppendResult{Head: newHead, Warnings: warnings}, nil
}

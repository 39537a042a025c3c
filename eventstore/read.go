package eventstore

import (
	"context"
	"fmt"

	"github.com/tectonic-sim/platetruth/codec"
	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/hashchain"
	"github.com/tectonic-sim/platetruth/kvkey"
	"github.com/tectonic-sim/platetruth/topology"
)

// EventReader is a lazy, finite, non-restartable producer of validated
// events (spec.md §4.4, §9): once Next returns false the reader is
// exhausted, and a second pass requires a fresh call to Read. It is
// deliberately shaped like bufio.Scanner (Next/Event/Err) rather than a
// Go 1.23 iter.Seq, since an iter.Seq's range-over-func contract allows a
// consumer to call the sequence function again from scratch — exactly
// the restart spec.md §9 rules out.
type EventReader struct {
	results chan readResult
	cancel  context.CancelFunc
	current topology.Envelope
	err     error
}

type readResult struct {
	env topology.Envelope
	err error
}

// Read starts a range scan over stream beginning at fromSequenceInclusive
// and returns a reader that validates the hash chain as it goes. The scan
// runs in a background goroutine so Next can be called repeatedly without
// the caller managing the underlying KV transaction; Close must be called
// to release it if the caller stops before exhausting the reader.
func (s *EventStore) Read(ctx context.Context, stream topology.StreamIdentity, fromSequenceInclusive int64) *EventReader {
	readCtx, cancel := context.WithCancel(ctx)
	r := &EventReader{
		results: make(chan readResult),
		cancel:  cancel,
	}

	go s.runRead(readCtx, stream, fromSequenceInclusive, r)

	return r
}

func (s *EventStore) runRead(ctx context.Context, stream topology.StreamIdentity, fromSequenceInclusive int64, r *EventReader) {
	defer close(r.results)

	expected, err := s.expectedPreviousHash(ctx, stream, fromSequenceInclusive)
	if err != nil {
		r.emit(ctx, readResult{err: err})

		return
	}
	validator := hashchain.NewValidator(expected)
	prefix := kvkey.EventPrefix(stream)

	scanErr := s.kv.ScanFrom(ctx, kvkey.EventRangeStart(stream, fromSequenceInclusive), func(key, value []byte) (bool, error) {
		if !kvkey.HasPrefix(key, prefix) {
			return false, nil
		}

		sequence, err := kvkey.ParseEventSequence(stream, key)
		if err != nil {
			return false, err
		}
		record, err := codec.DecodeRecord(value)
		if err != nil {
			return false, fmt.Errorf("%w: event %d for stream %s: %v", errs.ErrInvalidEncoding, sequence, stream, err)
		}
		recomputed := hashchain.Compute(record.SchemaVersion, record.Tick, record.PreviousHash, record.EventBytes)
		if err := validator.Check(sequence, record.PreviousHash, record.Hash, recomputed); err != nil {
			return false, err
		}
		env, err := codec.DecodeEvent(record.EventBytes)
		if err != nil {
			return false, fmt.Errorf("%w: event %d for stream %s: %v", errs.ErrInvalidEncoding, sequence, stream, err)
		}
		env.Sequence = sequence
		env.StreamIdentity = stream
		env.Tick = record.Tick
		env.PreviousHash = record.PreviousHash
		env.Hash = record.Hash

		return r.emit(ctx, readResult{env: env}), nil
	})
	if scanErr != nil {
		r.emit(ctx, readResult{err: scanErr})
	}
}

// expectedPreviousHash seeds the rolling chain validator for a read that
// begins at fromSequenceInclusive (spec.md §4.2): zero bytes at sequence
// 0, otherwise the stored hash of the immediately preceding event.
func (s *EventStore) expectedPreviousHash(ctx context.Context, stream topology.StreamIdentity, fromSequenceInclusive int64) ([32]byte, error) {
	if fromSequenceInclusive == 0 {
		return hashchain.Zero, nil
	}

	raw, found, err := s.kv.Get(ctx, kvkey.EventKey(stream, fromSequenceInclusive-1))
	if err != nil {
		return [32]byte{}, err
	}
	if !found {
		return [32]byte{}, fmt.Errorf("%w: no predecessor event %d for stream %s", errs.ErrCorruption, fromSequenceInclusive-1, stream)
	}
	record, err := codec.DecodeRecord(raw)
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: predecessor event %d for stream %s: %v", errs.ErrInvalidEncoding, fromSequenceInclusive-1, stream, err)
	}

	return record.Hash, nil
}

// emit delivers res to the consumer, or drops it if ctx is cancelled
// first (the consumer closed the reader). It returns whether the scan
// should continue.
func (r *EventReader) emit(ctx context.Context, res readResult) bool {
	select {
	case r.results <- res:
		return res.err == nil
	case <-ctx.Done():
		return false
	}
}

// Next advances to the next event, returning false at end-of-stream or on
// the first error (check Err after Next returns false).
func (r *EventReader) Next() bool {
	res, ok := <-r.results
	if !ok {
		return false
	}
	if res.err != nil {
		r.err = res.err

		return false
	}
	r.current = res.env

	return true
}

// Event returns the event most recently yielded by Next.
func (r *EventReader) Event() topology.Envelope {
	return r.current
}

// Err returns the first error encountered, if Next returned false because
// of one rather than exhaustion.
func (r *EventReader) Err() error {
	return r.err
}

// Close cancels the underlying scan and drains any buffered result. It is
// safe to call even after the reader has been exhausted.
func (r *EventReader) Close() error {
	r.cancel()
	for range r.results {
	}

	return nil
}

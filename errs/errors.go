// Package errs collects the sentinel errors returned by every package in
// the truth store, following the same shape as the teacher library's
// errs package: plain errors.New values, wrapped at call sites with
// fmt.Errorf("%w: ...", errs.ErrX, context) so callers can both
// errors.Is against the sentinel and read a human-readable message.
package errs

import "errors"

// Stream validation (spec.md §3.1, §6.3).
var (
	// ErrInvalidStream is returned when a StreamIdentity fails validation:
	// an empty text field, a negative lLevel, or a malformed domain path.
	ErrInvalidStream = errors.New("truthstore: invalid stream identity")
)

// Append validation (spec.md §4.3, §6.3).
var (
	// ErrEmptyBatch is returned when Append is called with zero events.
	ErrEmptyBatch = errors.New("truthstore: append batch must not be empty")
	// ErrBatchValidation covers a mixed-stream batch or a non-strictly
	// increasing sequence within the batch.
	ErrBatchValidation = errors.New("truthstore: batch validation failed")
	// ErrTickMonotonicity is returned when TickPolicyReject rejects a
	// decreasing tick within a batch.
	ErrTickMonotonicity = errors.New("truthstore: tick decreased under reject policy")
	// ErrConcurrencyConflict is returned when an append's expectedHead
	// precondition does not match the stream's actual head.
	ErrConcurrencyConflict = errors.New("truthstore: optimistic concurrency conflict")
	// ErrInvalidOption is returned when an AppendOption carries a value
	// outside its defined range, such as a format.TickPolicy that is
	// none of Allow, Warn, or Reject.
	ErrInvalidOption = errors.New("truthstore: invalid append option")
)

// Read / replay (spec.md §4.4, §4.7, §6.3).
var (
	// ErrCorruption is returned when the hash chain fails to validate
	// during a read: a previousHash mismatch or a recomputed hash mismatch.
	ErrCorruption = errors.New("truthstore: hash chain corruption detected")
	// ErrReplay is returned when folding an event violates a topology
	// invariant: a missing or retired entity reference, or a duplicate id.
	ErrReplay = errors.New("truthstore: replay precondition violated")
	// ErrUnknownEventType is returned by the codec when a stored event
	// carries a discriminator byte outside the known tagged-union range.
	ErrUnknownEventType = errors.New("truthstore: unknown event type discriminator")
)

// Lookup (spec.md §6.3).
var (
	// ErrNotFound is returned by head, snapshot, and capability lookups
	// that find nothing at the requested key.
	ErrNotFound = errors.New("truthstore: not found")
)

// Codec (spec.md §4.1, §8).
var (
	// ErrInvalidEncoding is returned when decoding encounters a
	// malformed canonical array: a truncated buffer, a length prefix
	// that overruns the remaining bytes, or an unexpected tag byte.
	ErrInvalidEncoding = errors.New("truthstore: invalid canonical encoding")
)

// KV layout (spec.md §6.1).
var (
	// ErrInvalidKey is returned when parsing a raw KV key fails to match
	// any of the store's known key shapes.
	ErrInvalidKey = errors.New("truthstore: key does not match expected layout")
)

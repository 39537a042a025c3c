// Package hashchain computes and validates the SHA-256 chain links that
// tie every event record to its predecessor (spec.md §4.2).
package hashchain

import (
	"crypto/sha256"
	"fmt"

	"github.com/tectonic-sim/platetruth/codec"
	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/format"
)

// Zero is the genesis previousHash: 32 zero bytes.
var Zero [32]byte

// Compute returns sha256(preimage) where preimage is the canonical
// 4-element array [schemaVersion, tick, previousHash, eventBytes]
// (spec.md §4.2). It never reads the record's own hash field.
func Compute(schemaVersion format.SchemaVersion, tick int64, previousHash [32]byte, eventBytes []byte) [32]byte {
	return sha256.Sum256(codec.EncodePreimage(schemaVersion, tick, previousHash, eventBytes))
}

// Validator tracks the rolling expectedPreviousHash a forward read
// maintains across a stream (spec.md §4.2): initialized from the
// predecessor of the first yielded record, advanced to each record's own
// hash after it validates.
type Validator struct {
	expected [32]byte
}

// NewValidator returns a Validator seeded with the previousHash expected
// of the first record the caller will check: Zero for a read starting at
// sequence 0, or the previous event's stored hash otherwise.
func NewValidator(expectedPreviousHash [32]byte) *Validator {
	return &Validator{expected: expectedPreviousHash}
}

// Check validates one record's previousHash against the rolling
// expectation and its hash against the recomputed preimage hash, then
// advances the rolling expectation to this record's hash. On either
// mismatch it returns errs.ErrCorruption and leaves the rolling state
// unchanged, so a caller that stops on the first error never silently
// continues with a torn chain.
func (v *Validator) Check(sequence int64, previousHash, recordHash, recomputedHash [32]byte) error {
	if previousHash != v.expected {
		return fmt.Errorf("%w: sequence %d expected previousHash %x, got %x", errs.ErrCorruption, sequence, v.expected, previousHash)
	}
	if recordHash != recomputedHash {
		return fmt.Errorf("%w: sequence %d hash mismatch, recomputed %x stored %x", errs.ErrCorruption, sequence, recomputedHash, recordHash)
	}
	v.expected = recordHash

	return nil
}

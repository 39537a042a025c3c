// Package topology holds the domain model folded from the event log: the
// stream identity tuple, the plate/boundary/junction entities, the tagged
// event payloads, and the fold rules that turn a prefix of events into a
// TopologyState. Nothing in this package touches the KV store or the wire
// format directly — it is pure domain logic, exercised by eventstore,
// materialize, and derivedindex.
package topology

import (
	"fmt"
	"strings"

	"github.com/tectonic-sim/platetruth/errs"
)

// StreamIdentity addresses one truth stream: the immutable tuple spec.md
// §3.1 calls the primary isolation boundary. No operation may read or
// write across streams.
type StreamIdentity struct {
	VariantID string
	BranchID  string
	LLevel    int
	Domain    string
	Model     string
}

// Validate checks the tuple against spec.md §3.1: every text field
// non-empty, LLevel non-negative, and Domain a dotted lowercase path. The
// exact strictness of domain-format validation beyond "non-empty and
// well-formed" is an explicit open question in spec.md §9 that the source
// leaves unresolved; this keeps the check loose (lowercase letters,
// digits, dots, and underscores between dots) rather than guessing at a
// stricter grammar.
func (s StreamIdentity) Validate() error {
	if s.VariantID == "" || s.BranchID == "" || s.Domain == "" || s.Model == "" {
		return fmt.Errorf("%w: all text fields must be non-empty", errs.ErrInvalidStream)
	}
	if s.LLevel < 0 {
		return fmt.Errorf("%w: lLevel must be non-negative, got %d", errs.ErrInvalidStream, s.LLevel)
	}
	if !isDottedLowerPath(s.Domain) {
		return fmt.Errorf("%w: domain %q is not a dotted lowercase path", errs.ErrInvalidStream, s.Domain)
	}

	return nil
}

func isDottedLowerPath(domain string) bool {
	segments := strings.Split(domain, ".")
	for _, seg := range segments {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			isLower := r >= 'a' && r <= 'z'
			isDigit := r >= '0' && r <= '9'
			if !isLower && !isDigit && r != '_' {
				return false
			}
		}
	}

	return true
}

// String renders the identity as a human-readable label. It is not the
// wire key prefix — kvkey owns that exact format — but the same field
// order so the two stay easy to eyeball together.
func (s StreamIdentity) String() string {
	return fmt.Sprintf("%s/%s/L%d/%s/M%s", s.VariantID, s.BranchID, s.LLevel, s.Domain, s.Model)
}

// CanonicalTick is the simulated-time index of an event. It is not
// required to be monotonic with Sequence (spec.md §3.2, Glossary).
type CanonicalTick = int64

// Sequence is the monotonic per-stream event index (spec.md §3.2, §8
// property 1). -1 denotes an empty stream's synthesized head.
type Sequence = int64

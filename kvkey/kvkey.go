// Package kvkey builds and parses every raw key this store writes to the
// underlying ordered KV (spec.md §6.1). All fixed-width numeric suffixes
// are big-endian so lexicographic byte order matches numeric order — the
// property eventstore and snapshot both depend on for range scans and
// seek-for-previous lookups.
package kvkey

import (
	"fmt"
	"strings"

	"github.com/tectonic-sim/platetruth/endian"
	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/topology"
)

const (
	eventInfix        = "E:"
	headSuffix        = "Head"
	snapshotInfix     = "Snap:"
	capabilitiesSuffix = "Meta:Caps"
)

var bigEndian = endian.GetBigEndianEngine()

// StreamPrefix returns "S:{variantId}:{branchId}:L{lLevel}:{domain}:M{model}:"
// for stream, the exact interpolation spec.md §3.1 specifies.
func StreamPrefix(stream topology.StreamIdentity) string {
	return fmt.Sprintf("S:%s:%s:L%d:%s:M%s:", stream.VariantID, stream.BranchID, stream.LLevel, stream.Domain, stream.Model)
}

// EventKey returns the raw key for event sequence within stream:
// {prefix}E:{seq:be64}.
func EventKey(stream topology.StreamIdentity, sequence int64) []byte {
	return appendBE64(StreamPrefix(stream)+eventInfix, uint64(sequence))
}

// EventRangeStart returns the same key as EventKey, documented separately
// because callers seeking a range scan think of it as a scan boundary
// rather than a single row address.
func EventRangeStart(stream topology.StreamIdentity, fromSequenceInclusive int64) []byte {
	return EventKey(stream, fromSequenceInclusive)
}

// EventPrefix returns {prefix}E:, the boundary read() uses to detect the
// first key that is no longer an event row (spec.md §4.4).
func EventPrefix(stream topology.StreamIdentity) []byte {
	return []byte(StreamPrefix(stream) + eventInfix)
}

// HeadKey returns {prefix}Head.
func HeadKey(stream topology.StreamIdentity) []byte {
	return []byte(StreamPrefix(stream) + headSuffix)
}

// SnapshotKey returns {prefix}Snap:{tick:be64}.
func SnapshotKey(stream topology.StreamIdentity, tick int64) []byte {
	return appendBE64(StreamPrefix(stream)+snapshotInfix, uint64(tick))
}

// SnapshotPrefix returns {prefix}Snap:, used to verify that a
// seek-for-previous result did not cross into another stream's key range.
func SnapshotPrefix(stream topology.StreamIdentity) []byte {
	return []byte(StreamPrefix(stream) + snapshotInfix)
}

// CapabilitiesKey returns {prefix}Meta:Caps.
func CapabilitiesKey(stream topology.StreamIdentity) []byte {
	return []byte(StreamPrefix(stream) + capabilitiesSuffix)
}

func appendBE64(prefix string, v uint64) []byte {
	out := make([]byte, 0, len(prefix)+8)
	out = append(out, prefix...)

	return bigEndian.AppendUint64(out, v)
}

// ParseEventSequence extracts the sequence number from a raw event key
// previously produced by EventKey, validating that it carries the given
// stream's prefix and the "E:" infix.
func ParseEventSequence(stream topology.StreamIdentity, key []byte) (int64, error) {
	prefix := StreamPrefix(stream) + eventInfix
	if len(key) != len(prefix)+8 || string(key[:len(prefix)]) != prefix {
		return 0, fmt.Errorf("%w: %q is not an event key for stream %s", errs.ErrInvalidKey, key, stream)
	}

	return int64(bigEndian.Uint64(key[len(prefix):])), nil
}

// ParseSnapshotTick extracts the tick from a raw snapshot key previously
// produced by SnapshotKey.
func ParseSnapshotTick(stream topology.StreamIdentity, key []byte) (int64, error) {
	prefix := StreamPrefix(stream) + snapshotInfix
	if len(key) != len(prefix)+8 || string(key[:len(prefix)]) != prefix {
		return 0, fmt.Errorf("%w: %q is not a snapshot key for stream %s", errs.ErrInvalidKey, key, stream)
	}

	return int64(bigEndian.Uint64(key[len(prefix):])), nil
}

// HasPrefix reports whether key starts with prefix, the guard read() and
// getLatestBefore() both use to stop a scan before it crosses into another
// stream's or another key kind's range.
func HasPrefix(key, prefix []byte) bool {
	return strings.HasPrefix(string(key), string(prefix))
}

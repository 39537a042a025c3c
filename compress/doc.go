// Package compress selects and applies a compression codec to a persisted
// snapshot's already-canonically-encoded bytes (spec.md §3.6, §4.6). The
// algorithm in effect is carried inside the stored value itself as a
// one-byte format.CompressionType header, so a store that later changes
// its configured algorithm can still decode snapshots written under an
// older one: decoding always consults the header byte a snapshot was
// written with, never the store's current configuration.
//
// Compression runs strictly after canonical encoding and is never part of
// a hash preimage — snapshots are not chain-linked, so this is a pure
// storage-size optimization with no bearing on chain validation.
package compress

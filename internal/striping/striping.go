// Package striping picks a lock stripe for a cache key so that unrelated
// streams hitting CacheMaterializer do not contend on a single mutex.
//
// It reuses the same technique the teacher library uses in internal/hash
// for metric-name identification (a fast, non-cryptographic xxHash64),
// applied here to a composite string key instead of a metric name.
package striping

import "github.com/tectonic-sim/platetruth/internal/hash"

// Index returns a stripe index in [0, stripeCount) for key. stripeCount
// must be a power of two; callers that violate this still get a valid
// index, just with a slightly biased distribution.
func Index(key string, stripeCount int) int {
	if stripeCount <= 1 {
		return 0
	}

	return int(hash.ID(key) % uint64(stripeCount))
}

package codec

import (
	"fmt"

	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/format"
)

// EncodeCapabilities writes the 9 raw bytes spec.md §6.2 defines: one flag
// byte followed by 8 reserved zero bytes.
func EncodeCapabilities(c format.CapabilitySet) []byte {
	out := make([]byte, format.CapabilitySetSize)
	out[0] = byte(c)

	return out
}

// DecodeCapabilities parses the 9-byte capability bit-set. Reserved bits
// in byte 0 and the 8 reserved bytes that follow are not validated as
// zero on read — a future writer setting a bit this codec doesn't yet
// know about should not make every reader fail — but the defensive rule
// in spec.md §3.8 still applies at the call site: the monotone bit is
// reported true only when the reject-policy bit is also set.
func DecodeCapabilities(data []byte) (format.CapabilitySet, error) {
	if len(data) != format.CapabilitySetSize {
		return 0, fmt.Errorf("%w: capabilities must be exactly %d bytes, got %d", errs.ErrInvalidEncoding, format.CapabilitySetSize, len(data))
	}

	return format.CapabilitySet(data[0]), nil
}

package compress

// ZstdCompressor favors compression ratio over speed, for snapshots that
// are written once and read rarely — cold ticks a materializer has to
// replay past, not the hot head of a stream.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

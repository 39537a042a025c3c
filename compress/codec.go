package compress

import (
	"fmt"

	"github.com/tectonic-sim/platetruth/format"
)

// Compressor compresses one already-canonically-encoded snapshot payload.
// The returned slice is newly allocated and owned by the caller; the input
// is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm. It rejects
// data produced by a different algorithm or otherwise corrupted.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec is the pair a snapshot.Store needs: one algorithm, both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Stats reports what a single snapshot.Store.Save compression pass did, so
// a caller choosing between format.CompressionType values can tell whether
// the configured algorithm is earning its CPU cost on real snapshot sizes
// instead of guessing from the package doc's generic guidance.
type Stats struct {
	Algorithm      format.CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// Ratio is CompressedSize/OriginalSize; values below 1.0 mean the pass
// shrank the payload. Zero-length input reports a ratio of 0.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// Measure compresses data with c and returns both the compressed bytes and
// the Stats describing the pass, so a caller need not duplicate the
// before/after length bookkeeping at every call site.
func Measure(c Codec, algorithm format.CompressionType, data []byte) ([]byte, Stats, error) {
	compressed, err := c.Compress(data)
	if err != nil {
		return nil, Stats{}, err
	}

	return compressed, Stats{
		Algorithm:      algorithm,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(compressed)),
	}, nil
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

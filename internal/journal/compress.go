package journal

import (
	"fmt"

	"github.com/pierrec/lz4"
)

// Payload encodings stored in the journal. The raw fallback covers payloads
// that do not shrink under lz4.
const (
	encodingRaw = 0
	encodingLZ4 = 1
)

// compressPayload compresses data with lz4 block compression. It returns the
// stored bytes and the encoding that was used; incompressible data is stored
// raw.
func compressPayload(data []byte) ([]byte, int) {
	if len(data) == 0 {
		return data, encodingRaw
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil || n == 0 || n >= len(data) {
		return data, encodingRaw
	}
	return compressed[:n], encodingLZ4
}

// decompressPayload reverses compressPayload. origLen is the uncompressed
// size recorded alongside the row, so the output buffer is exact.
func decompressPayload(data []byte, encoding, origLen int) ([]byte, error) {
	switch encoding {
	case encodingRaw:
		return data, nil
	case encodingLZ4:
		out := make([]byte, origLen)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		return out[:n], nil
	default:
		return nil, fmt.Errorf("unknown payload encoding %d", encoding)
	}
}

//go:build !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPool pools zstd encoders. The pure Go implementation is
// designed to operate without allocations after a warmup, so encoders are
// worth keeping around between blocks.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			// The options above are compile-time constants.
			panic(fmt.Sprintf("zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// zstdDecoderPool pools zstd decoders for the same reason.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// Compress compresses data into a Zstandard frame using the pure Go encoder.
func (ZstandardCodec) Compress(data []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless, so the pooled encoder stays reusable even
	// across failed calls.
	return encoder.EncodeAll(data, nil), nil
}

// Decompress restores the payload from a Zstandard frame.
func (ZstandardCodec) Decompress(data []byte) ([]byte, error) {
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstandard: %w", err)
	}

	return out, nil
}

//go:build cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// zstdLevel is the libzstd default. Pinned here so the cgo and pure Go
// builds compress at comparable effort.
const zstdLevel = 3

// Compress compresses data into a Zstandard frame using the libzstd bindings.
func (ZstandardCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, zstdLevel), nil
}

// Decompress restores the payload from a Zstandard frame.
func (ZstandardCodec) Decompress(data []byte) ([]byte, error) {
	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("zstandard: %w", err)
	}

	return out, nil
}

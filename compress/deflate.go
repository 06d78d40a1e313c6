package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// deflateWriterPool pools flate writers, which carry compression state that
// is expensive to allocate per block.
var deflateWriterPool = sync.Pool{
	New: func() any {
		zw, err := flate.NewWriter(nil, flate.DefaultCompression)
		if err != nil {
			// DefaultCompression is always a valid level.
			panic(fmt.Sprintf("flate writer for pool: %v", err))
		}

		return zw
	},
}

// deflateReaderPool pools flate readers, rewound per block via flate.Resetter.
var deflateReaderPool = sync.Pool{
	New: func() any {
		return flate.NewReader(nil)
	},
}

// DeflateCodec implements the "deflate" codec: raw DEFLATE streams per
// RFC 1951, without the zlib wrapper or a checksum of its own. Corruption
// inside a deflate block is caught by the stream's internal structure or by
// the container's sync marker check.
type DeflateCodec struct{}

var _ Codec = (*DeflateCodec)(nil)

// NewDeflateCodec creates a deflate codec using the default compression level.
func NewDeflateCodec() DeflateCodec {
	return DeflateCodec{}
}

// Compress compresses data into a raw DEFLATE stream.
func (DeflateCodec) Compress(data []byte) ([]byte, error) {
	zw, _ := deflateWriterPool.Get().(*flate.Writer)
	defer deflateWriterPool.Put(zw)

	var buf bytes.Buffer
	zw.Reset(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress restores the payload from a raw DEFLATE stream.
func (DeflateCodec) Decompress(data []byte) ([]byte, error) {
	zr, _ := deflateReaderPool.Get().(io.ReadCloser)
	defer deflateReaderPool.Put(zr)

	if err := zr.(flate.Resetter).Reset(bytes.NewReader(data), nil); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	return out, nil
}

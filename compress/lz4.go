package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4WriterPool = sync.Pool{
	New: func() any {
		return lz4.NewWriter(nil)
	},
}

var lz4ReaderPool = sync.Pool{
	New: func() any {
		return lz4.NewReader(nil)
	},
}

// LZ4Codec implements the "lz4" codec using the LZ4 frame format. Frames
// carry their own block structure, so incompressible payloads are stored
// raw rather than rejected and decompression needs no size hint.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates an LZ4 frame codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses data into an LZ4 frame.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	zw, _ := lz4WriterPool.Get().(*lz4.Writer)
	defer lz4WriterPool.Put(zw)

	var buf bytes.Buffer
	zw.Reset(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress restores the payload from an LZ4 frame.
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	zr, _ := lz4ReaderPool.Get().(*lz4.Reader)
	defer lz4ReaderPool.Put(zr)

	zr.Reset(bytes.NewReader(data))

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	return out, nil
}

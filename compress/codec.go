package compress

import (
	"fmt"
	"sync"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/format"
)

// Compressor compresses whole container block payloads.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - The returned slice is newly allocated and owned by the caller,
	//     except for the null codec, which returns the input unchanged.
	//   - The input slice is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores block payloads produced by the matching Compressor.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original payload.
	//
	// The input must have been produced by the matching Compress. Codecs
	// validate their own framing and return a descriptive error on corrupt
	// input; they never return partially decompressed data.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of a compression algorithm.
//
// Container Writers use only the Compressor side and Readers only the
// Decompressor side, but implementations registered with Register must
// provide both so a file written with a codec can be read back with it.
type Codec interface {
	Compressor
	Decompressor
}

var (
	registryMu sync.RWMutex
	registry   = map[format.Codec]Codec{
		format.CodecNull:      NewNullCodec(),
		format.CodecDeflate:   NewDeflateCodec(),
		format.CodecSnappy:    NewSnappyCodec(),
		format.CodecZstandard: NewZstandardCodec(),
		format.CodecLZ4:       NewLZ4Codec(),
	}
)

// Get returns the Codec registered under the given name.
//
// Parameters:
//   - name: Codec name as stored in the container header metadata
//
// Returns:
//   - Codec: Registered codec instance
//   - error: errs.ErrUnsupportedCodec if no codec is registered under name
func Get(name format.Codec) (Codec, error) {
	registryMu.RLock()
	codec, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedCodec, name)
	}

	return codec, nil
}

// Register makes codec available to Writers and Readers under name,
// replacing any previous registration for that name. Registered codecs must
// be safe for concurrent use.
//
// Register panics if codec is nil.
func Register(name format.Codec, codec Codec) {
	if codec == nil {
		panic("compress: Register called with nil codec")
	}

	registryMu.Lock()
	registry[name] = codec
	registryMu.Unlock()
}

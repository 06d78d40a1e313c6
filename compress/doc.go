// Package compress provides the block compression codecs used by container
// files.
//
// A container block is compressed as a whole before it is framed, and the
// codec's name is recorded once in the header metadata so readers can pick
// the matching decompressor without out-of-band configuration.
//
// # Interfaces
//
// The package defines three interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Writers use the Compressor side, Readers the Decompressor side. Both
// operations are pure transformations: they never modify their input and
// keep no per-call state.
//
// # Built-in Codecs
//
// Five codecs are registered out of the box:
//
//   - "null": pass-through, for data that is already dense
//   - "deflate": raw DEFLATE streams (RFC 1951), the most portable choice
//   - "snappy": snappy block compression with a trailing big-endian CRC32
//     of the uncompressed payload, verified on decompress
//   - "zstandard": Zstandard frames; libzstd bindings under cgo, pure Go
//     otherwise
//   - "lz4": LZ4 frame format
//
// Additional codecs can be plugged in with Register. Get resolves a codec
// name taken from a container header and fails with errs.ErrUnsupportedCodec
// when nothing is registered under that name.
//
// # Choosing a Codec
//
// "deflate" and "zstandard" trade CPU for the best ratios and suit archival
// files; "snappy" and "lz4" decompress fastest and suit read-heavy use;
// "null" suits payloads that are incompressible or small enough that codec
// overhead dominates.
//
// # Thread Safety
//
// All built-in codecs are stateless or pool their state internally and are
// safe for concurrent use. The registry is guarded by a lock, so Register
// may race with Get without corrupting either.
package compress

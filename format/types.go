package format

// Codec identifies a block compression codec by the name stored in the
// container header metadata.
type Codec string

const (
	CodecNull      Codec = "null"      // CodecNull stores block payloads uncompressed.
	CodecDeflate   Codec = "deflate"   // CodecDeflate is raw DEFLATE (RFC 1951) streams.
	CodecSnappy    Codec = "snappy"    // CodecSnappy is snappy block compression with a trailing CRC32.
	CodecZstandard Codec = "zstandard" // CodecZstandard is Zstandard compression.
	CodecLZ4       Codec = "lz4"       // CodecLZ4 is LZ4 block compression.
)

func (c Codec) String() string {
	return string(c)
}

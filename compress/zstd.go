package compress

// ZstandardCodec implements the "zstandard" codec.
//
// Two interchangeable builds exist: with cgo enabled the codec binds libzstd
// through github.com/valyala/gozstd (zstd_cgo.go); without cgo it falls back
// to the pure Go github.com/klauspost/compress/zstd with pooled encoders and
// decoders (zstd_pure.go). Both builds produce standard Zstandard frames, so
// files written by one are readable by the other.
type ZstandardCodec struct{}

var _ Codec = (*ZstandardCodec)(nil)

// NewZstandardCodec creates a Zstandard codec.
func NewZstandardCodec() ZstandardCodec {
	return ZstandardCodec{}
}

package compress

// NullCodec passes block payloads through unchanged. It backs the "null"
// codec name and is the right choice when the encoded records are already
// dense or when CPU matters more than storage.
type NullCodec struct{}

var _ Codec = (*NullCodec)(nil)

// NewNullCodec creates a pass-through codec.
func NewNullCodec() NullCodec {
	return NullCodec{}
}

// Compress returns data unchanged without copying.
//
// The returned slice shares the input's memory. Callers that reuse the
// input buffer must finish consuming the result first.
func (NullCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged without copying.
func (NullCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

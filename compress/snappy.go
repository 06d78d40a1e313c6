package compress

import (
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/rebo/endian"
)

// snappyCRCLen is the length of the big-endian CRC32 (IEEE) of the
// uncompressed payload that trails every snappy-compressed block.
const snappyCRCLen = 4

var crcOrder = endian.GetBigEndianEngine()

// SnappyCodec implements the "snappy" codec: snappy block compression
// followed by a 4-byte big-endian CRC32 of the uncompressed payload. The
// checksum is verified on decompress, so a damaged block surfaces before
// any record is decoded from it.
type SnappyCodec struct{}

var _ Codec = (*SnappyCodec)(nil)

// NewSnappyCodec creates a snappy block codec.
func NewSnappyCodec() SnappyCodec {
	return SnappyCodec{}
}

// Compress compresses data into a snappy block and appends the checksum.
func (SnappyCodec) Compress(data []byte) ([]byte, error) {
	bound := s2.MaxEncodedLen(len(data))
	if bound < 0 {
		return nil, fmt.Errorf("snappy: payload of %d bytes exceeds the block format limit", len(data))
	}

	// Reserving the checksum bytes up front lets AppendUint32 extend the
	// encoded prefix in place.
	dst := make([]byte, bound+snappyCRCLen)
	out := s2.EncodeSnappy(dst, data)

	return crcOrder.AppendUint32(out, crc32.ChecksumIEEE(data)), nil
}

// Decompress verifies the trailing checksum and restores the payload.
func (SnappyCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) < snappyCRCLen {
		return nil, fmt.Errorf("snappy: block of %d bytes is shorter than its checksum", len(data))
	}

	payload := data[:len(data)-snappyCRCLen]
	want := crcOrder.Uint32(data[len(data)-snappyCRCLen:])

	out, err := s2.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}

	if got := crc32.ChecksumIEEE(out); got != want {
		return nil, fmt.Errorf("snappy: checksum mismatch: computed 0x%08x, stored 0x%08x", got, want)
	}

	return out, nil
}

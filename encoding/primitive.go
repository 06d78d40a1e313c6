package encoding

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/rebo/endian"
	"github.com/arloliu/rebo/errs"
)

// Float and double bit patterns are little-endian on the wire.
var wireOrder = endian.GetLittleEndianEngine()

// maxAllocation caps the size of a single length-prefixed allocation. A
// corrupt length prefix must not be able to ask the decoder for an absurd
// buffer before the truncation is even detectable.
const maxAllocation = 512 << 20

// Source is the byte stream the decode functions consume. Both *bytes.Reader
// and *bufio.Reader satisfy it.
type Source interface {
	io.Reader
	io.ByteReader
}

// AppendBoolean appends a boolean as a single byte, 1 for true and 0 for
// false.
func AppendBoolean(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}

	return append(dst, 0)
}

// AppendFloat appends the IEEE-754 bit pattern of v in little-endian order.
func AppendFloat(dst []byte, v float32) []byte {
	return wireOrder.AppendUint32(dst, math.Float32bits(v))
}

// AppendDouble appends the IEEE-754 bit pattern of v in little-endian order.
func AppendDouble(dst []byte, v float64) []byte {
	return wireOrder.AppendUint64(dst, math.Float64bits(v))
}

// AppendBytes appends a byte sequence prefixed with its length as a zig-zag
// varint.
func AppendBytes(dst []byte, v []byte) []byte {
	dst = AppendLong(dst, int64(len(v)))

	return append(dst, v...)
}

// AppendString appends a string prefixed with its byte length as a zig-zag
// varint. String payloads are UTF-8 by convention; the encoder does not
// inspect them.
func AppendString(dst []byte, v string) []byte {
	dst = AppendLong(dst, int64(len(v)))

	return append(dst, v...)
}

// ReadBoolean decodes a single-byte boolean. Bytes other than 0 and 1 mean
// the stream position has drifted and fail with errs.ErrCorruptFile.
func ReadBoolean(r Source) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: boolean byte 0x%02x", errs.ErrCorruptFile, b)
	}
}

// ReadFloat decodes a little-endian IEEE-754 single-precision value.
func ReadFloat(r Source) (float32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}

	return math.Float32frombits(wireOrder.Uint32(buf[:])), nil
}

// ReadDouble decodes a little-endian IEEE-754 double-precision value.
func ReadDouble(r Source) (float64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}

	return math.Float64frombits(wireOrder.Uint64(buf[:])), nil
}

// ReadBytes decodes a length-prefixed byte sequence into a fresh slice.
//
// A negative length prefix fails with errs.ErrNegativeLength; a length
// beyond the allocation cap fails with errs.ErrCorruptFile; input ending
// inside the payload fails with errs.ErrUnexpectedEOF.
func ReadBytes(r Source) ([]byte, error) {
	n, err := ReadLong(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: bytes length %d", errs.ErrNegativeLength, n)
	}
	if n > maxAllocation {
		return nil, fmt.Errorf("%w: bytes length %d exceeds allocation cap", errs.ErrCorruptFile, n)
	}
	if n == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	if err := readPayload(r, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// ReadString decodes a length-prefixed string.
func ReadString(r Source) (string, error) {
	buf, err := ReadBytes(r)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

// readFull fills buf from r. End of input before the first byte passes
// through as io.EOF; a partial fill is errs.ErrUnexpectedEOF.
func readFull(r Source, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return err
		}

		return eofErr(err)
	}

	return nil
}

// readPayload fills buf from r where a length prefix has already been
// consumed, so any end of input is mid-datum.
func readPayload(r Source, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return eofErr(err)
	}

	return nil
}

package encoding

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/rebo/errs"
)

// MaxVarintLen is the maximum number of bytes a zig-zag varint occupies on
// the wire. A 64-bit value folds into at most ten 7-bit groups.
const MaxVarintLen = 10

// AppendLong appends the zig-zag varint encoding of v to dst and returns the
// extended slice.
//
// Zig-zag folding maps signed values onto unsigned ones so small magnitudes
// of either sign stay short on the wire: 0 folds to 0, -1 to 1, 1 to 2,
// -2 to 3. The folded value is emitted in 7-bit groups, least significant
// group first, with the continuation bit set on every byte except the last.
//
// Parameters:
//   - dst: Destination slice; may be nil
//   - v: Signed value to encode
//
// Returns:
//   - []byte: dst extended by 1 to 10 bytes
func AppendLong(dst []byte, v int64) []byte {
	uv := uint64(v<<1) ^ uint64(v>>63) //nolint:gosec
	for uv >= 0x80 {
		dst = append(dst, byte(uv)|0x80)
		uv >>= 7
	}

	return append(dst, byte(uv))
}

// AppendInt appends the zig-zag varint encoding of v to dst.
//
// Int and long share a single wire representation; the distinct entry point
// keeps 32-bit call sites honest about their range.
func AppendInt(dst []byte, v int32) []byte {
	return AppendLong(dst, int64(v))
}

// ReadLong decodes one zig-zag varint from r.
//
// End of input before the first byte is returned as io.EOF unchanged so
// callers sitting on a datum boundary can treat it as a clean end; end of
// input after the first byte is errs.ErrUnexpectedEOF. An encoding that
// needs more than 64 bits fails with errs.ErrIntegerOverflow.
//
// Parameters:
//   - r: Byte source positioned at the varint's first byte
//
// Returns:
//   - int64: Decoded value
//   - error: nil, io.EOF, errs.ErrUnexpectedEOF, or errs.ErrIntegerOverflow
func ReadLong(r Source) (int64, error) {
	var uv uint64
	var shift uint
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i == 0 {
				return 0, err
			}

			return 0, eofErr(err)
		}
		if i == MaxVarintLen-1 && b > 1 {
			return 0, fmt.Errorf("%w: varint exceeds 64 bits", errs.ErrIntegerOverflow)
		}
		uv |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}

	return int64(uv>>1) ^ -int64(uv&1), nil //nolint:gosec
}

// ReadInt decodes one zig-zag varint from r and checks it fits the 32-bit
// int range. Values outside the range fail with errs.ErrIntegerOverflow.
func ReadInt(r Source) (int32, error) {
	v, err := ReadLong(r)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: value %d does not fit int", errs.ErrIntegerOverflow, v)
	}

	return int32(v), nil
}

// eofErr maps end-of-input conditions inside a datum to errs.ErrUnexpectedEOF.
// Other errors pass through unchanged.
func eofErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", errs.ErrUnexpectedEOF, err)
	}

	return err
}

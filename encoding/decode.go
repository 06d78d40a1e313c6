package encoding

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/value"
)

// blockPrealloc caps how many array items or map entries a single block
// count may preallocate. A corrupt count must not translate into a giant
// up-front allocation; growth beyond the cap is amortized by append.
const blockPrealloc = 1024

// Decode reads one datum shaped by s from r.
//
// A datum must be present: Decode never returns io.EOF. Input that ends
// anywhere inside the datum, including before its first byte, fails with
// errs.ErrUnexpectedEOF. Callers iterating over several datums detect the
// clean end of input themselves before calling Decode.
//
// Array and map decoding accepts the blocked form: any number of non-empty
// blocks terminated by a zero count, where a negative count carries the
// block's byte size in a following varint.
//
// Parameters:
//   - r: Byte source positioned at the datum's first byte
//   - s: Schema the datum was encoded with
//
// Returns:
//   - value.Value: Decoded value shaped by s
//   - error: nil, or a wrapped errs sentinel describing the failure
func Decode(r Source, s schema.Schema) (value.Value, error) {
	v, err := decodeValue(r, s)
	if err != nil && errors.Is(err, io.EOF) && !errors.Is(err, errs.ErrUnexpectedEOF) {
		return value.Value{}, fmt.Errorf("%w: input ended before datum completed", errs.ErrUnexpectedEOF)
	}

	return v, err
}

func decodeValue(r Source, s schema.Schema) (value.Value, error) {
	switch kind := s.Kind(); kind {
	case schema.Null:
		return value.Null(), nil

	case schema.Boolean:
		b, err := ReadBoolean(r)
		if err != nil {
			return value.Value{}, err
		}

		return value.Boolean(b), nil

	case schema.Int:
		n, err := ReadInt(r)
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(n), nil

	case schema.Long:
		n, err := ReadLong(r)
		if err != nil {
			return value.Value{}, err
		}

		return value.Long(n), nil

	case schema.Float:
		f, err := ReadFloat(r)
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(f), nil

	case schema.Double:
		f, err := ReadDouble(r)
		if err != nil {
			return value.Value{}, err
		}

		return value.Double(f), nil

	case schema.Bytes:
		data, err := ReadBytes(r)
		if err != nil {
			return value.Value{}, err
		}

		return value.Bytes(data), nil

	case schema.String:
		text, err := ReadString(r)
		if err != nil {
			return value.Value{}, err
		}

		return value.String(text), nil

	case schema.Fixed:
		data := make([]byte, s.Size())
		if err := readFull(r, data); err != nil {
			return value.Value{}, err
		}

		return value.Fixed(data), nil

	case schema.Enum:
		idx, err := ReadInt(r)
		if err != nil {
			return value.Value{}, err
		}
		symbols := s.Symbols()
		if idx < 0 || int(idx) >= len(symbols) {
			return value.Value{}, fmt.Errorf("%w: enum %s index %d out of range",
				errs.ErrCorruptFile, s.Fullname(), idx)
		}

		return value.Enum(int(idx), symbols[idx]), nil

	case schema.Array:
		return decodeArray(r, s)

	case schema.Map:
		return decodeMap(r, s)

	case schema.Union:
		branch, err := ReadLong(r)
		if err != nil {
			return value.Value{}, err
		}
		if branch < 0 || branch >= int64(s.NumBranches()) {
			return value.Value{}, fmt.Errorf("%w: union branch index %d out of range",
				errs.ErrCorruptFile, branch)
		}
		inner, err := decodeValue(r, s.Branch(int(branch)))
		if err != nil {
			return value.Value{}, err
		}

		return value.Union(int(branch), inner), nil

	case schema.Record:
		fields := make([]value.Field, 0, s.NumFields())
		for i := range s.NumFields() {
			fs := s.Field(i)
			fv, err := decodeValue(r, fs.Schema())
			if err != nil {
				return value.Value{}, fmt.Errorf("field %q: %w", fs.Name(), err)
			}
			fields = append(fields, value.NewField(fs.Name(), fv))
		}

		return value.Record(fields...), nil

	default:
		return value.Value{}, fmt.Errorf("%w: cannot decode schema kind %s", errs.ErrSchemaMismatch, kind)
	}
}

// readBlockCount decodes one array or map block count, normalizing the
// negative form. A negative count is followed by the block's byte size,
// which plain decoding reads and discards; only Skip exploits it.
func readBlockCount(r Source) (int64, error) {
	n, err := ReadLong(r)
	if err != nil {
		return 0, err
	}
	if n >= 0 {
		return n, nil
	}
	if n == math.MinInt64 {
		// Negating MinInt64 overflows back to itself.
		return 0, fmt.Errorf("%w: block item count %d", errs.ErrCorruptFile, n)
	}

	size, err := ReadLong(r)
	if err != nil {
		return 0, err
	}
	if size < 0 {
		return 0, fmt.Errorf("%w: block byte size %d", errs.ErrNegativeLength, size)
	}

	return -n, nil
}

func decodeArray(r Source, s schema.Schema) (value.Value, error) {
	elem := s.Items()
	items := []value.Value{}
	for {
		count, err := readBlockCount(r)
		if err != nil {
			return value.Value{}, err
		}
		if count == 0 {
			break
		}
		if cap(items) == 0 {
			items = make([]value.Value, 0, int(min(count, blockPrealloc)))
		}
		for range count {
			item, err := decodeValue(r, elem)
			if err != nil {
				return value.Value{}, fmt.Errorf("array item %d: %w", len(items), err)
			}
			items = append(items, item)
		}
	}

	return value.Array(items...), nil
}

func decodeMap(r Source, s schema.Schema) (value.Value, error) {
	elem := s.Values()
	entries := map[string]value.Value{}
	for {
		count, err := readBlockCount(r)
		if err != nil {
			return value.Value{}, err
		}
		if count == 0 {
			break
		}
		for range count {
			key, err := ReadString(r)
			if err != nil {
				return value.Value{}, err
			}
			item, err := decodeValue(r, elem)
			if err != nil {
				return value.Value{}, fmt.Errorf("map entry %q: %w", key, err)
			}
			entries[key] = item
		}
	}

	return value.MapOf(entries), nil
}

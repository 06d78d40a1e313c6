package encoding

import (
	"fmt"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/internal/pool"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/value"
)

// Encode appends the binary encoding of v against s to buf.
//
// The walk is strict: v's kind must equal s's kind at every level, fixed
// payloads must match the declared size, enum and union indexes must be in
// range, and record fields must appear in schema order under their schema
// names. Violations fail with errs.ErrSchemaMismatch and may leave a partial
// encoding behind; callers needing atomicity snapshot buf.Len() before the
// call and Truncate back on error.
//
// Arrays and maps are emitted in the minimal single-block form: one count,
// the items, a zero terminator.
//
// Parameters:
//   - buf: Destination buffer
//   - s: Schema driving the encoding
//   - v: Value to encode; its shape must match s exactly
//
// Returns:
//   - error: nil on success, errs.ErrSchemaMismatch on a shape violation
func Encode(buf *pool.ByteBuffer, s schema.Schema, v value.Value) error {
	e := encoder{buf: buf}

	return e.encode(s, v)
}

// encoder carries the destination buffer and a small scratch slab so the
// recursive walk never allocates for varints and float bit patterns.
type encoder struct {
	buf *pool.ByteBuffer
	tmp [MaxVarintLen]byte
}

func (e *encoder) writeLong(v int64) {
	e.buf.MustWrite(AppendLong(e.tmp[:0], v))
}

func (e *encoder) encode(s schema.Schema, v value.Value) error {
	kind := s.Kind()
	if v.Kind() != kind {
		return fmt.Errorf("%w: cannot encode %s value as %s", errs.ErrSchemaMismatch, v.Kind(), kind)
	}

	switch kind {
	case schema.Null:
		return nil

	case schema.Boolean:
		e.buf.MustWrite(AppendBoolean(e.tmp[:0], v.Bool()))

	case schema.Int:
		e.buf.MustWrite(AppendInt(e.tmp[:0], v.Int()))

	case schema.Long:
		e.writeLong(v.Long())

	case schema.Float:
		e.buf.MustWrite(AppendFloat(e.tmp[:0], v.Float()))

	case schema.Double:
		e.buf.MustWrite(AppendDouble(e.tmp[:0], v.Double()))

	case schema.Bytes:
		data := v.Bytes()
		e.writeLong(int64(len(data)))
		e.buf.MustWrite(data)

	case schema.String:
		text := v.Str()
		e.writeLong(int64(len(text)))
		e.buf.MustWrite([]byte(text))

	case schema.Fixed:
		data := v.Bytes()
		if len(data) != s.Size() {
			return fmt.Errorf("%w: fixed %s requires %d bytes, value has %d",
				errs.ErrSchemaMismatch, s.Fullname(), s.Size(), len(data))
		}
		e.buf.MustWrite(data)

	case schema.Enum:
		idx := v.EnumIndex()
		if idx < 0 || idx >= len(s.Symbols()) {
			return fmt.Errorf("%w: enum %s has no symbol at index %d",
				errs.ErrSchemaMismatch, s.Fullname(), idx)
		}
		e.buf.MustWrite(AppendInt(e.tmp[:0], int32(idx))) //nolint:gosec

	case schema.Array:
		return e.encodeArray(s, v)

	case schema.Map:
		return e.encodeMap(s, v)

	case schema.Union:
		branch := v.Branch()
		if branch < 0 || branch >= s.NumBranches() {
			return fmt.Errorf("%w: union has no branch at index %d", errs.ErrSchemaMismatch, branch)
		}
		e.writeLong(int64(branch))

		return e.encode(s.Branch(branch), v.Inner())

	case schema.Record:
		return e.encodeRecord(s, v)

	default:
		return fmt.Errorf("%w: cannot encode schema kind %s", errs.ErrSchemaMismatch, kind)
	}

	return nil
}

func (e *encoder) encodeArray(s schema.Schema, v value.Value) error {
	items := v.Array()
	if len(items) > 0 {
		e.writeLong(int64(len(items)))
		elem := s.Items()
		for i, item := range items {
			if err := e.encode(elem, item); err != nil {
				return fmt.Errorf("array item %d: %w", i, err)
			}
		}
	}
	e.writeLong(0)

	return nil
}

func (e *encoder) encodeMap(s schema.Schema, v value.Value) error {
	entries := v.Map()
	if len(entries) > 0 {
		e.writeLong(int64(len(entries)))
		elem := s.Values()
		for key, item := range entries {
			e.writeLong(int64(len(key)))
			e.buf.MustWrite([]byte(key))
			if err := e.encode(elem, item); err != nil {
				return fmt.Errorf("map entry %q: %w", key, err)
			}
		}
	}
	e.writeLong(0)

	return nil
}

func (e *encoder) encodeRecord(s schema.Schema, v value.Value) error {
	fields := v.Fields()
	if len(fields) != s.NumFields() {
		return fmt.Errorf("%w: record %s has %d fields, value has %d",
			errs.ErrSchemaMismatch, s.Fullname(), s.NumFields(), len(fields))
	}
	for i, fv := range fields {
		fs := s.Field(i)
		if fv.Name != fs.Name() {
			return fmt.Errorf("%w: record %s field %d is %q, value has %q",
				errs.ErrSchemaMismatch, s.Fullname(), i, fs.Name(), fv.Name)
		}
		if err := e.encode(fs.Schema(), fv.Value); err != nil {
			return fmt.Errorf("field %q: %w", fv.Name, err)
		}
	}

	return nil
}

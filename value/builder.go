package value

import (
	"fmt"
	"math"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/schema"
)

// RecordBuilder assembles a record value against a record schema, filling
// unset fields from schema defaults when the record is built.
//
// A builder is transient: create one per record, Put the fields you have,
// Build once. It is not safe for concurrent use.
type RecordBuilder struct {
	schema schema.Schema
	values []Value
	set    []bool
}

// NewRecord creates a builder bound to the given record schema.
//
// Parameters:
//   - s: the record schema the built value will conform to
//
// Returns:
//   - *RecordBuilder: an empty builder
//   - error: errs.ErrSchemaMismatch if s is not a record schema
func NewRecord(s schema.Schema) (*RecordBuilder, error) {
	if s.Kind() != schema.Record {
		return nil, fmt.Errorf("%w: record builder needs a record schema, got %s", errs.ErrSchemaMismatch, s.Kind())
	}

	n := s.NumFields()

	return &RecordBuilder{
		schema: s,
		values: make([]Value, n),
		set:    make([]bool, n),
	}, nil
}

// Put assigns a field by name. v may be a Value or plain Go data, which is
// coerced against the field schema: bool, int/int32/int64/uint32, float32/
// float64 (with the same widenings resolution permits), string, []byte,
// []any, []Value, map[string]any, map[string]Value, and nil for null. For a
// union field a bare value is wrapped in the first matching branch; for an
// enum field a string is looked up in the symbol list.
//
// Putting a field twice overwrites the earlier value.
//
// Returns:
//   - error: errs.ErrSchemaMismatch if the record has no such field or v does
//     not fit the field's schema; the builder is unchanged on error
func (b *RecordBuilder) Put(name string, v any) error {
	f, ok := b.schema.FieldByName(name)
	if !ok {
		return fmt.Errorf("%w: record %s has no field %q", errs.ErrSchemaMismatch, b.schema.Fullname(), name)
	}

	val, err := coerce(f.Schema(), v)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}

	b.values[f.Position()] = val
	b.set[f.Position()] = true

	return nil
}

// Build finalizes the record. Every field without an explicit Put value takes
// its schema default; a field with neither fails the build.
//
// Returns:
//   - Value: the completed record, fields in schema order
//   - error: errs.ErrMissingField naming the first field with no value and no
//     default
func (b *RecordBuilder) Build() (Value, error) {
	fields := make([]Field, b.schema.NumFields())
	for i := range fields {
		f := b.schema.Field(i)
		switch {
		case b.set[i]:
			fields[i] = Field{Name: f.Name(), Value: b.values[i]}
		case f.HasDefault():
			dv, err := FromLiteral(f.Schema(), f.Default())
			if err != nil {
				return Value{}, fmt.Errorf("field %q default: %w", f.Name(), err)
			}
			fields[i] = Field{Name: f.Name(), Value: dv}
		default:
			return Value{}, fmt.Errorf("%w: field %q has no value and no default", errs.ErrMissingField, f.Name())
		}
	}

	return Record(fields...), nil
}

// coerce turns plain Go data into a Value conforming to s. A Value passes
// through validation unchanged, except that a non-union Value put against a
// union schema is wrapped in its first matching branch.
func coerce(s schema.Schema, v any) (Value, error) {
	if val, ok := v.(Value); ok {
		if s.Kind() == schema.Union && val.Kind() != schema.Union {
			return coerceUnion(s, v)
		}
		if err := Validate(val, s); err != nil {
			return Value{}, err
		}

		return val, nil
	}

	switch s.Kind() {
	case schema.Null:
		if v == nil {
			return Null(), nil
		}

	case schema.Boolean:
		if b, ok := v.(bool); ok {
			return Boolean(b), nil
		}

	case schema.Int:
		if n, ok := coerceInt(v); ok {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return Value{}, fmt.Errorf("%w: %d overflows int", errs.ErrSchemaMismatch, n)
			}

			return Int(int32(n)), nil
		}

	case schema.Long:
		if n, ok := coerceInt(v); ok {
			return Long(n), nil
		}

	case schema.Float:
		if n, ok := v.(float32); ok {
			return Float(n), nil
		}
		if n, ok := coerceInt(v); ok {
			return Float(float32(n)), nil
		}

	case schema.Double:
		switch n := v.(type) {
		case float64:
			return Double(n), nil
		case float32:
			return Double(float64(n)), nil
		}
		if n, ok := coerceInt(v); ok {
			return Double(float64(n)), nil
		}

	case schema.Bytes:
		switch raw := v.(type) {
		case []byte:
			return Bytes(raw), nil
		case string:
			return Bytes([]byte(raw)), nil
		}

	case schema.String:
		switch str := v.(type) {
		case string:
			return String(str), nil
		case []byte:
			return String(string(str)), nil
		}

	case schema.Fixed:
		if raw, ok := v.([]byte); ok {
			if len(raw) != s.Size() {
				return Value{}, fmt.Errorf("%w: fixed %s wants %d bytes, got %d", errs.ErrSchemaMismatch, s.Fullname(), s.Size(), len(raw))
			}

			return Fixed(raw), nil
		}

	case schema.Enum:
		switch sym := v.(type) {
		case string:
			i, ok := s.SymbolIndex(sym)
			if !ok {
				return Value{}, fmt.Errorf("%w: enum %s has no symbol %q", errs.ErrSchemaMismatch, s.Fullname(), sym)
			}

			return Enum(i, sym), nil
		case int:
			if sym < 0 || sym >= len(s.Symbols()) {
				return Value{}, fmt.Errorf("%w: enum %s index %d out of range", errs.ErrSchemaMismatch, s.Fullname(), sym)
			}

			return Enum(sym, s.Symbols()[sym]), nil
		}

	case schema.Array:
		switch list := v.(type) {
		case []Value:
			items := make([]Value, len(list))
			for i, rawItem := range list {
				item, err := coerce(s.Items(), rawItem)
				if err != nil {
					return Value{}, fmt.Errorf("array item %d: %w", i, err)
				}
				items[i] = item
			}

			return Array(items...), nil
		case []any:
			items := make([]Value, len(list))
			for i, rawItem := range list {
				item, err := coerce(s.Items(), rawItem)
				if err != nil {
					return Value{}, fmt.Errorf("array item %d: %w", i, err)
				}
				items[i] = item
			}

			return Array(items...), nil
		}

	case schema.Map:
		switch obj := v.(type) {
		case map[string]Value:
			entries := make(map[string]Value, len(obj))
			for k, rawEntry := range obj {
				entry, err := coerce(s.Values(), rawEntry)
				if err != nil {
					return Value{}, fmt.Errorf("map entry %q: %w", k, err)
				}
				entries[k] = entry
			}

			return MapOf(entries), nil
		case map[string]any:
			entries := make(map[string]Value, len(obj))
			for k, rawEntry := range obj {
				entry, err := coerce(s.Values(), rawEntry)
				if err != nil {
					return Value{}, fmt.Errorf("map entry %q: %w", k, err)
				}
				entries[k] = entry
			}

			return MapOf(entries), nil
		}

	case schema.Union:
		return coerceUnion(s, v)

	case schema.Record:
		if obj, ok := v.(map[string]any); ok {
			return coerceRecord(s, obj)
		}
		if obj, ok := v.(map[string]Value); ok {
			raw := make(map[string]any, len(obj))
			for k, fv := range obj {
				raw[k] = fv
			}

			return coerceRecord(s, raw)
		}
	}

	return Value{}, fmt.Errorf("%w: cannot use %T as %s", errs.ErrSchemaMismatch, v, s.Kind())
}

// coerceUnion tries the branches in declared order and wraps v in the first
// one that accepts it.
func coerceUnion(s schema.Schema, v any) (Value, error) {
	for i := 0; i < s.NumBranches(); i++ {
		if inner, err := coerce(s.Branch(i), v); err == nil {
			return Union(i, inner), nil
		}
	}

	return Value{}, fmt.Errorf("%w: no union branch accepts %T", errs.ErrSchemaMismatch, v)
}

// coerceRecord builds a nested record from a field-name keyed map, filling
// absent fields from their defaults.
func coerceRecord(s schema.Schema, obj map[string]any) (Value, error) {
	rb, err := NewRecord(s)
	if err != nil {
		return Value{}, err
	}
	for k, fv := range obj {
		if err := rb.Put(k, fv); err != nil {
			return Value{}, err
		}
	}

	return rb.Build()
}

// coerceInt extracts an integer from the accepted native widths.
func coerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	}

	return 0, false
}

package value

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/schema"
)

// FromLiteral materializes a JSON default literal into a Value conforming
// to s. Literals come from schema.Field.Default, which the schema parser has
// already type-checked, so on parsed schemas this cannot fail; errors are
// still reported for literals from any other source.
//
// Bytes and fixed literals are strings whose code points are byte values.
// A union literal materializes under the union's first branch. A record
// literal may omit fields that declare defaults of their own.
func FromLiteral(s schema.Schema, lit any) (Value, error) {
	switch s.Kind() {
	case schema.Null:
		if lit != nil {
			return Value{}, literalErr(s, lit)
		}
		return Null(), nil

	case schema.Boolean:
		b, ok := lit.(bool)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		return Boolean(b), nil

	case schema.Int:
		n, err := literalInt(lit)
		if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, literalErr(s, lit)
		}
		return Int(int32(n)), nil

	case schema.Long:
		n, err := literalInt(lit)
		if err != nil {
			return Value{}, literalErr(s, lit)
		}
		return Long(n), nil

	case schema.Float:
		f, err := literalFloat(lit)
		if err != nil {
			return Value{}, literalErr(s, lit)
		}
		return Float(float32(f)), nil

	case schema.Double:
		f, err := literalFloat(lit)
		if err != nil {
			return Value{}, literalErr(s, lit)
		}
		return Double(f), nil

	case schema.Bytes:
		str, ok := lit.(string)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		raw, err := byteString(str)
		if err != nil {
			return Value{}, literalErr(s, lit)
		}
		return Bytes(raw), nil

	case schema.String:
		str, ok := lit.(string)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		return String(str), nil

	case schema.Fixed:
		str, ok := lit.(string)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		raw, err := byteString(str)
		if err != nil || len(raw) != s.Size() {
			return Value{}, literalErr(s, lit)
		}
		return Fixed(raw), nil

	case schema.Enum:
		sym, ok := lit.(string)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		i, ok := s.SymbolIndex(sym)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		return Enum(i, sym), nil

	case schema.Array:
		list, ok := lit.([]any)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		items := make([]Value, len(list))
		for i, rawItem := range list {
			item, err := FromLiteral(s.Items(), rawItem)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Array(items...), nil

	case schema.Map:
		obj, ok := lit.(map[string]any)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		entries := make(map[string]Value, len(obj))
		for k, rawEntry := range obj {
			entry, err := FromLiteral(s.Values(), rawEntry)
			if err != nil {
				return Value{}, err
			}
			entries[k] = entry
		}
		return MapOf(entries), nil

	case schema.Union:
		inner, err := FromLiteral(s.Branch(0), lit)
		if err != nil {
			return Value{}, err
		}
		return Union(0, inner), nil

	case schema.Record:
		obj, ok := lit.(map[string]any)
		if !ok {
			return Value{}, literalErr(s, lit)
		}
		fields := make([]Field, s.NumFields())
		for i := range fields {
			f := s.Field(i)
			rawField, present := obj[f.Name()]
			if !present {
				if !f.HasDefault() {
					return Value{}, fmt.Errorf("%w: record literal missing field %q", errs.ErrSchema, f.Name())
				}
				rawField = f.Default()
			}
			fv, err := FromLiteral(f.Schema(), rawField)
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", f.Name(), err)
			}
			fields[i] = Field{Name: f.Name(), Value: fv}
		}
		return Record(fields...), nil

	default:
		return Value{}, fmt.Errorf("%w: invalid schema", errs.ErrSchema)
	}
}

func literalErr(s schema.Schema, lit any) error {
	return fmt.Errorf("%w: literal %v does not fit %s", errs.ErrSchema, lit, s.Kind())
}

func literalInt(lit any) (int64, error) {
	n, ok := lit.(json.Number)
	if !ok {
		return 0, fmt.Errorf("not a number")
	}

	return n.Int64()
}

func literalFloat(lit any) (float64, error) {
	n, ok := lit.(json.Number)
	if !ok {
		return 0, fmt.Errorf("not a number")
	}

	return n.Float64()
}

// byteString converts a literal string to raw bytes, one byte per code point.
func byteString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			return nil, fmt.Errorf("code point %q above 255", r)
		}
		out = append(out, byte(r))
	}

	return out, nil
}

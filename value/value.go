package value

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/arloliu/rebo/schema"
)

// Value is a tagged union over every datum shape the engine can encode or
// decode. The zero Value is Null.
//
// A Value carries no schema; it is meaningful only relative to one, and the
// codec never touches a Value without one. Values are plain data: copying one
// copies the tag and shares any container storage.
type Value struct {
	kind schema.Kind

	b    bool
	i    int64   // Int, Long, Enum index, Union branch index
	f    float64 // Float (widened), Double
	s    string  // String, Enum symbol
	raw  []byte  // Bytes, Fixed
	vals []Value // Array
	m    map[string]Value // Map
	flds []Field // Record
	pv   *Value  // Union inner value
}

// Field is one named entry of a Record value. Fields are ordered; the order
// must match the record schema's declared field order.
type Field struct {
	Name  string
	Value Value
}

// NewField pairs a field name with its value.
func NewField(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Null returns the null value.
func Null() Value {
	return Value{kind: schema.Null}
}

// Boolean returns a boolean value.
func Boolean(v bool) Value {
	return Value{kind: schema.Boolean, b: v}
}

// Int returns a 32-bit integer value.
func Int(v int32) Value {
	return Value{kind: schema.Int, i: int64(v)}
}

// Long returns a 64-bit integer value.
func Long(v int64) Value {
	return Value{kind: schema.Long, i: v}
}

// Float returns a single precision value.
func Float(v float32) Value {
	return Value{kind: schema.Float, f: float64(v)}
}

// Double returns a double precision value.
func Double(v float64) Value {
	return Value{kind: schema.Double, f: v}
}

// Bytes returns a byte sequence value. The slice is not copied.
func Bytes(v []byte) Value {
	return Value{kind: schema.Bytes, raw: v}
}

// String returns a string value.
func String(v string) Value {
	return Value{kind: schema.String, s: v}
}

// Fixed returns a fixed-size byte value. The slice is not copied; its length
// must equal the schema's declared size to validate.
func Fixed(v []byte) Value {
	return Value{kind: schema.Fixed, raw: v}
}

// Enum returns an enum value holding both the symbol index and the symbol
// itself. The index is what goes on the wire.
func Enum(index int, symbol string) Value {
	return Value{kind: schema.Enum, i: int64(index), s: symbol}
}

// Array returns an array value of the given items. The slice is not copied.
func Array(items ...Value) Value {
	return Value{kind: schema.Array, vals: items}
}

// MapOf returns a map value. The map is not copied.
func MapOf(entries map[string]Value) Value {
	return Value{kind: schema.Map, m: entries}
}

// Union returns a union value: the chosen branch index and the value encoded
// under that branch.
func Union(branch int, inner Value) Value {
	return Value{kind: schema.Union, i: int64(branch), pv: &inner}
}

// Record returns a record value with the given ordered fields.
// The slice is not copied.
func Record(fields ...Field) Value {
	return Value{kind: schema.Record, flds: fields}
}

// Kind returns the value's variant tag.
func (v Value) Kind() schema.Kind {
	if v.kind == schema.Invalid {
		return schema.Null
	}

	return v.kind
}

// Bool returns the boolean content. It panics if the kind is not Boolean.
func (v Value) Bool() bool {
	v.mustKind(schema.Boolean)
	return v.b
}

// Int returns the 32-bit integer content. It panics if the kind is not Int.
func (v Value) Int() int32 {
	v.mustKind(schema.Int)
	return int32(v.i)
}

// Long returns the 64-bit integer content. It panics if the kind is not Long.
func (v Value) Long() int64 {
	v.mustKind(schema.Long)
	return v.i
}

// Float returns the single precision content. It panics if the kind is not Float.
func (v Value) Float() float32 {
	v.mustKind(schema.Float)
	return float32(v.f)
}

// Double returns the double precision content. It panics if the kind is not Double.
func (v Value) Double() float64 {
	v.mustKind(schema.Double)
	return v.f
}

// Bytes returns the raw byte content of a Bytes or Fixed value.
// The slice is shared, not copied.
func (v Value) Bytes() []byte {
	if v.kind != schema.Bytes && v.kind != schema.Fixed {
		panic(fmt.Sprintf("value: Bytes of %s value", v.Kind()))
	}

	return v.raw
}

// Str returns the text content. It panics if the kind is not String.
func (v Value) Str() string {
	v.mustKind(schema.String)
	return v.s
}

// EnumIndex returns the symbol index. It panics if the kind is not Enum.
func (v Value) EnumIndex() int {
	v.mustKind(schema.Enum)
	return int(v.i)
}

// EnumSymbol returns the symbol text. It panics if the kind is not Enum.
func (v Value) EnumSymbol() string {
	v.mustKind(schema.Enum)
	return v.s
}

// Branch returns the chosen union branch index. It panics if the kind is not Union.
func (v Value) Branch() int {
	v.mustKind(schema.Union)
	return int(v.i)
}

// Inner returns the value under the chosen union branch.
// It panics if the kind is not Union.
func (v Value) Inner() Value {
	v.mustKind(schema.Union)
	return *v.pv
}

// Array returns the item slice. It panics if the kind is not Array.
// The slice is shared, not copied.
func (v Value) Array() []Value {
	v.mustKind(schema.Array)
	return v.vals
}

// Map returns the entry map. It panics if the kind is not Map.
// The map is shared, not copied.
func (v Value) Map() map[string]Value {
	v.mustKind(schema.Map)
	return v.m
}

// Fields returns the ordered record fields. It panics if the kind is not Record.
// The slice is shared, not copied.
func (v Value) Fields() []Field {
	v.mustKind(schema.Record)
	return v.flds
}

// FieldByName returns the named record field's value and reports whether the
// field exists. It panics if the kind is not Record.
func (v Value) FieldByName(name string) (Value, bool) {
	v.mustKind(schema.Record)
	for _, f := range v.flds {
		if f.Name == name {
			return f.Value, true
		}
	}

	return Value{}, false
}

func (v Value) mustKind(k schema.Kind) {
	if v.Kind() != k {
		panic(fmt.Sprintf("value: %s accessor on %s value", k, v.Kind()))
	}
}

// Equal reports deep equality of two values.
//
// Floats compare by bit pattern, so NaN equals NaN and a round-tripped value
// always equals its source. Enums compare index and symbol, unions compare
// branch and inner value, records compare field order, names and values.
func (v Value) Equal(o Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}

	switch v.Kind() {
	case schema.Null:
		return true
	case schema.Boolean:
		return v.b == o.b
	case schema.Int, schema.Long:
		return v.i == o.i
	case schema.Float:
		return math.Float32bits(float32(v.f)) == math.Float32bits(float32(o.f))
	case schema.Double:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case schema.Bytes, schema.Fixed:
		return bytes.Equal(v.raw, o.raw)
	case schema.String:
		return v.s == o.s
	case schema.Enum:
		return v.i == o.i && v.s == o.s
	case schema.Union:
		return v.i == o.i && v.pv.Equal(*o.pv)
	case schema.Array:
		if len(v.vals) != len(o.vals) {
			return false
		}
		for i := range v.vals {
			if !v.vals[i].Equal(o.vals[i]) {
				return false
			}
		}
		return true
	case schema.Map:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, mv := range v.m {
			ov, ok := o.m[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	case schema.Record:
		if len(v.flds) != len(o.flds) {
			return false
		}
		for i := range v.flds {
			if v.flds[i].Name != o.flds[i].Name || !v.flds[i].Value.Equal(o.flds[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Interface returns the value as plain Go data: nil, bool, int32, int64,
// float32, float64, []byte, string, enum symbols as string, arrays as []any,
// maps and records as map[string]any, unions as their inner value.
func (v Value) Interface() any {
	switch v.Kind() {
	case schema.Null:
		return nil
	case schema.Boolean:
		return v.b
	case schema.Int:
		return int32(v.i)
	case schema.Long:
		return v.i
	case schema.Float:
		return float32(v.f)
	case schema.Double:
		return v.f
	case schema.Bytes, schema.Fixed:
		return v.raw
	case schema.String:
		return v.s
	case schema.Enum:
		return v.s
	case schema.Union:
		return v.pv.Interface()
	case schema.Array:
		out := make([]any, len(v.vals))
		for i, item := range v.vals {
			out[i] = item.Interface()
		}
		return out
	case schema.Map:
		out := make(map[string]any, len(v.m))
		for k, mv := range v.m {
			out[k] = mv.Interface()
		}
		return out
	case schema.Record:
		out := make(map[string]any, len(v.flds))
		for _, f := range v.flds {
			out[f.Name] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// String renders a compact debug representation. It is not a wire or JSON
// format; map keys are sorted only to keep the output deterministic.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)

	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.Kind() {
	case schema.Null:
		sb.WriteString("null")
	case schema.Boolean:
		sb.WriteString(strconv.FormatBool(v.b))
	case schema.Int, schema.Long:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case schema.Float:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 32))
	case schema.Double:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case schema.Bytes, schema.Fixed:
		fmt.Fprintf(sb, "0x%x", v.raw)
	case schema.String:
		sb.WriteString(strconv.Quote(v.s))
	case schema.Enum:
		sb.WriteString(v.s)
		fmt.Fprintf(sb, "(%d)", v.i)
	case schema.Union:
		fmt.Fprintf(sb, "union(%d, ", v.i)
		v.pv.render(sb)
		sb.WriteByte(')')
	case schema.Array:
		sb.WriteByte('[')
		for i, item := range v.vals {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.render(sb)
		}
		sb.WriteByte(']')
	case schema.Map:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q: ", k)
			mv := v.m[k]
			mv.render(sb)
		}
		sb.WriteByte('}')
	case schema.Record:
		sb.WriteByte('{')
		for i, f := range v.flds {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			f.Value.render(sb)
		}
		sb.WriteByte('}')
	}
}

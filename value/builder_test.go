package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/schema"
)

const userInfoSchema = `
{
  "namespace": "my.example",
  "type": "record",
  "name": "userInfo",
  "fields": [
    {"default": "NONE", "type": "string", "name": "username"},
    {"default": -1, "type": "int", "name": "age"},
    {
      "default": {},
      "type": {
        "fields": [
          {"default": "NONE", "type": "string", "name": "street"},
          {"default": "NONE", "type": "string", "name": "city"}
        ],
        "type": "record",
        "name": "mailing_address"
      },
      "name": "address"
    }
  ]
}
`

func TestNewRecord_RequiresRecordSchema(t *testing.T) {
	_, err := NewRecord(schema.MustParse(`"int"`))
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestRecordBuilder_Basic(t *testing.T) {
	s := schema.MustParse(`{
	  "namespace": "test", "type": "record", "name": "Test",
	  "fields": [{"name": "field", "type": "string"}]
	}`)

	rb, err := NewRecord(s)
	require.NoError(t, err)
	require.NoError(t, rb.Put("field", "foo"))

	rec, err := rb.Build()
	require.NoError(t, err)

	want := Record(NewField("field", String("foo")))
	require.True(t, rec.Equal(want), "got %s", rec)
}

func TestRecordBuilder_DefaultsFillUnsetFields(t *testing.T) {
	s := schema.MustParse(userInfoSchema)

	rb, err := NewRecord(s)
	require.NoError(t, err)
	require.NoError(t, rb.Put("age", 30))

	rec, err := rb.Build()
	require.NoError(t, err)

	username, _ := rec.FieldByName("username")
	assert.Equal(t, "NONE", username.Str())

	age, _ := rec.FieldByName("age")
	assert.Equal(t, int32(30), age.Int())

	// The empty record default expands through the subfield defaults.
	address, _ := rec.FieldByName("address")
	street, _ := address.FieldByName("street")
	assert.Equal(t, "NONE", street.Str())
}

func TestRecordBuilder_MissingFieldWithoutDefault(t *testing.T) {
	s := schema.MustParse(`{
	  "type": "record", "name": "T",
	  "fields": [
	    {"name": "a", "type": "int", "default": 0},
	    {"name": "b", "type": "string"}
	  ]
	}`)

	rb, err := NewRecord(s)
	require.NoError(t, err)

	_, err = rb.Build()
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrMissingField)
	require.Contains(t, err.Error(), `"b"`)
}

func TestRecordBuilder_UnknownField(t *testing.T) {
	s := schema.MustParse(`{"type": "record", "name": "T", "fields": [{"name": "a", "type": "int"}]}`)

	rb, err := NewRecord(s)
	require.NoError(t, err)

	err = rb.Put("ghost", 1)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestRecordBuilder_PutOverwrites(t *testing.T) {
	s := schema.MustParse(`{"type": "record", "name": "T", "fields": [{"name": "a", "type": "int"}]}`)

	rb, _ := NewRecord(s)
	require.NoError(t, rb.Put("a", 1))
	require.NoError(t, rb.Put("a", 2))

	rec, err := rb.Build()
	require.NoError(t, err)
	a, _ := rec.FieldByName("a")
	assert.Equal(t, int32(2), a.Int())
}

func TestRecordBuilder_Coercion(t *testing.T) {
	s := schema.MustParse(`{
	  "type": "record", "name": "T", "fields": [
	    {"name": "b", "type": "boolean"},
	    {"name": "i", "type": "int"},
	    {"name": "l", "type": "long"},
	    {"name": "f", "type": "float"},
	    {"name": "d", "type": "double"},
	    {"name": "by", "type": "bytes"},
	    {"name": "s", "type": "string"},
	    {"name": "fx", "type": {"type": "fixed", "name": "FX", "size": 2}},
	    {"name": "e", "type": {"type": "enum", "name": "E", "symbols": ["OFF", "ON"]}},
	    {"name": "arr", "type": {"type": "array", "items": "long"}},
	    {"name": "m", "type": {"type": "map", "values": "string"}},
	    {"name": "u", "type": ["null", "string"]}
	  ]
	}`)

	rb, err := NewRecord(s)
	require.NoError(t, err)

	require.NoError(t, rb.Put("b", true))
	require.NoError(t, rb.Put("i", 42))
	require.NoError(t, rb.Put("l", 42)) // int widens to long
	require.NoError(t, rb.Put("f", float32(1.5)))
	require.NoError(t, rb.Put("d", 2.5))
	require.NoError(t, rb.Put("by", []byte{1, 2, 3}))
	require.NoError(t, rb.Put("s", "text"))
	require.NoError(t, rb.Put("fx", []byte{0xca, 0xfe}))
	require.NoError(t, rb.Put("e", "ON"))
	require.NoError(t, rb.Put("arr", []any{1, int64(2)}))
	require.NoError(t, rb.Put("m", map[string]any{"k": "v"}))
	require.NoError(t, rb.Put("u", "present")) // bare value wraps into the union

	rec, err := rb.Build()
	require.NoError(t, err)
	require.NoError(t, Validate(rec, s))

	u, _ := rec.FieldByName("u")
	assert.Equal(t, schema.Union, u.Kind())
	assert.Equal(t, 1, u.Branch())
	assert.Equal(t, "present", u.Inner().Str())

	e, _ := rec.FieldByName("e")
	assert.Equal(t, 1, e.EnumIndex())

	arr, _ := rec.FieldByName("arr")
	assert.Equal(t, int64(1), arr.Array()[0].Long())
}

func TestRecordBuilder_CoercionErrors(t *testing.T) {
	s := schema.MustParse(`{
	  "type": "record", "name": "T", "fields": [
	    {"name": "i", "type": "int"},
	    {"name": "f", "type": "float"},
	    {"name": "e", "type": {"type": "enum", "name": "E", "symbols": ["A"]}},
	    {"name": "fx", "type": {"type": "fixed", "name": "FX", "size": 4}},
	    {"name": "u", "type": ["null", "long"]}
	  ]
	}`)

	rb, _ := NewRecord(s)

	tests := []struct {
		field string
		v     any
	}{
		{"i", "not a number"},
		{"i", int64(1) << 40}, // overflows int32
		{"f", 2.5},            // float64 does not narrow to float
		{"e", "MISSING"},
		{"fx", []byte{1, 2}},
		{"u", "no string branch"},
	}

	for _, tt := range tests {
		err := rb.Put(tt.field, tt.v)
		require.Error(t, err, "field %s value %v", tt.field, tt.v)
		require.ErrorIs(t, err, errs.ErrSchemaMismatch)
	}
}

func TestRecordBuilder_NestedRecordFromMap(t *testing.T) {
	s := schema.MustParse(userInfoSchema)

	rb, _ := NewRecord(s)
	require.NoError(t, rb.Put("username", "user"))
	require.NoError(t, rb.Put("address", map[string]any{"street": "main st"}))

	rec, err := rb.Build()
	require.NoError(t, err)

	address, _ := rec.FieldByName("address")
	street, _ := address.FieldByName("street")
	city, _ := address.FieldByName("city")
	assert.Equal(t, "main st", street.Str())
	assert.Equal(t, "NONE", city.Str(), "unset subfield takes its default")
}

func TestRecordBuilder_PutValuePassesValidation(t *testing.T) {
	s := schema.MustParse(`{"type": "record", "name": "T", "fields": [{"name": "a", "type": "long"}]}`)

	rb, _ := NewRecord(s)
	require.NoError(t, rb.Put("a", Long(10)))

	err := rb.Put("a", Int(10))
	require.Error(t, err, "a Value is validated, never silently widened")
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestFromLiteral(t *testing.T) {
	t.Run("bytes literal decodes code points", func(t *testing.T) {
		v, err := FromLiteral(schema.MustParse(`"bytes"`), "ÿ\x00a")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0x00, 'a'}, v.Bytes())
	})

	t.Run("union literal takes first branch", func(t *testing.T) {
		s := schema.MustParse(`["null", "string"]`)
		v, err := FromLiteral(s, nil)
		require.NoError(t, err)
		assert.Equal(t, schema.Union, v.Kind())
		assert.Equal(t, 0, v.Branch())
		assert.Equal(t, schema.Null, v.Inner().Kind())
	})

	t.Run("enum literal resolves index", func(t *testing.T) {
		s := schema.MustParse(`{"type": "enum", "name": "E", "symbols": ["A", "B"]}`)
		v, err := FromLiteral(s, "B")
		require.NoError(t, err)
		assert.Equal(t, 1, v.EnumIndex())
	})

	t.Run("number literals", func(t *testing.T) {
		v, err := FromLiteral(schema.MustParse(`"double"`), json.Number("2.5"))
		require.NoError(t, err)
		assert.Equal(t, 2.5, v.Double())

		v, err = FromLiteral(schema.MustParse(`"long"`), json.Number("-12"))
		require.NoError(t, err)
		assert.Equal(t, int64(-12), v.Long())
	})

	t.Run("mismatched literal", func(t *testing.T) {
		_, err := FromLiteral(schema.MustParse(`"int"`), "nope")
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrSchema)
	})
}

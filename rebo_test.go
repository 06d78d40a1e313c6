package rebo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebo/container"
	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/format"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/value"
)

const eventSchemaText = `{
	"type": "record",
	"name": "Event",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "message", "type": "string"},
		{"name": "level", "type": "string", "default": "info"}
	]
}`

// TestParseSchema verifies parse success and failure at the facade level.
func TestParseSchema(t *testing.T) {
	s, err := ParseSchema(eventSchemaText)
	require.NoError(t, err)
	require.Equal(t, schema.Record, s.Kind())
	require.Equal(t, "Event", s.Name())

	_, err = ParseSchema(`{"type": "wat"}`)
	require.ErrorIs(t, err, errs.ErrSchema)
}

// TestMustParseSchema verifies the panic contract for invalid schema text.
func TestMustParseSchema(t *testing.T) {
	require.NotPanics(t, func() { MustParseSchema(`"long"`) })
	require.Panics(t, func() { MustParseSchema(`{"type": "wat"}`) })
}

// TestMarshalUnmarshal verifies the single-datum round trip.
func TestMarshalUnmarshal(t *testing.T) {
	s := MustParseSchema(eventSchemaText)

	b, err := NewRecord(s)
	require.NoError(t, err)
	require.NoError(t, b.Put("id", 42))
	require.NoError(t, b.Put("message", "hello"))
	require.NoError(t, b.Put("level", "warn"))
	v, err := b.Build()
	require.NoError(t, err)

	data, err := Marshal(s, v)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	back, err := Unmarshal(s, data)
	require.NoError(t, err)
	require.True(t, v.Equal(back), "got %s", back)
}

// TestMarshal_RejectsMismatchedValue verifies shape checking on encode.
func TestMarshal_RejectsMismatchedValue(t *testing.T) {
	s := MustParseSchema(eventSchemaText)

	_, err := Marshal(s, value.String("not a record"))
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

// TestUnmarshal_TrailingBytes verifies that extra input is never ignored.
func TestUnmarshal_TrailingBytes(t *testing.T) {
	s := MustParseSchema(`"long"`)
	data, err := Marshal(s, value.Long(7))
	require.NoError(t, err)

	_, err = Unmarshal(s, append(data, 0xff))
	require.ErrorIs(t, err, errs.ErrCorruptFile)
	require.ErrorContains(t, err, "trailing bytes")
}

// TestUnmarshal_Truncated verifies a cut-off datum is an error.
func TestUnmarshal_Truncated(t *testing.T) {
	s := MustParseSchema(`"string"`)
	data, err := Marshal(s, value.String("truncate me"))
	require.NoError(t, err)

	_, err = Unmarshal(s, data[:len(data)-3])
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

// TestUnmarshalWithSchema verifies single-datum schema resolution.
func TestUnmarshalWithSchema(t *testing.T) {
	writer := MustParseSchema(`"int"`)
	reader := MustParseSchema(`"long"`)

	data, err := Marshal(writer, value.Int(10))
	require.NoError(t, err)

	v, err := UnmarshalWithSchema(writer, reader, data)
	require.NoError(t, err)
	require.True(t, value.Long(10).Equal(v), "got %s", v)

	_, err = UnmarshalWithSchema(writer, MustParseSchema(`"boolean"`), data)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

// TestNewRecord_Defaults verifies default filling and the missing-field error.
func TestNewRecord_Defaults(t *testing.T) {
	s := MustParseSchema(eventSchemaText)

	b, err := NewRecord(s)
	require.NoError(t, err)
	require.NoError(t, b.Put("id", 1))
	require.NoError(t, b.Put("message", "m"))
	v, err := b.Build()
	require.NoError(t, err)

	level, ok := v.FieldByName("level")
	require.True(t, ok)
	require.Equal(t, "info", level.Str())

	// Omitting a field with no default must fail, not silently null it.
	b, err = NewRecord(s)
	require.NoError(t, err)
	require.NoError(t, b.Put("id", 1))
	_, err = b.Build()
	require.ErrorIs(t, err, errs.ErrMissingField)
}

// TestContainerRoundTrip verifies the writer/reader facade end to end.
func TestContainerRoundTrip(t *testing.T) {
	s := MustParseSchema(eventSchemaText)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, s, container.WithCodec(format.CodecDeflate))
	require.NoError(t, err)

	want := make([]value.Value, 0, 3)
	for i := range 3 {
		b, err := NewRecord(s)
		require.NoError(t, err)
		require.NoError(t, b.Put("id", i))
		require.NoError(t, b.Put("message", "container"))
		v, err := b.Build()
		require.NoError(t, err)
		require.NoError(t, w.Append(v))
		want = append(want, v)
	}
	require.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	got := make([]value.Value, 0, 3)
	for v, err := range r.All() {
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Len(t, got, 3)
	for i := range want {
		require.True(t, want[i].Equal(got[i]), "record %d: got %s", i, got[i])
	}

	rr, err := NewReaderWithSchema(bytes.NewReader(buf.Bytes()), s)
	require.NoError(t, err)
	for v, err := range rr.All() {
		require.NoError(t, err)
		require.Equal(t, schema.Record, v.Kind())
	}
	require.NoError(t, rr.Err())
}

package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/internal/pool"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/value"
)

func encodeDatum(t *testing.T, s schema.Schema, v value.Value) []byte {
	t.Helper()

	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)

	require.NoError(t, Encode(buf, s, v))
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out
}

func TestEncode_WireVectors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		value  value.Value
		want   []byte
	}{
		{"null", `"null"`, value.Null(), []byte{}},
		{"boolean", `"boolean"`, value.Boolean(true), []byte{0x01}},
		{"int", `"int"`, value.Int(10), []byte{0x14}},
		{"long", `"long"`, value.Long(-2), []byte{0x03}},
		{"float", `"float"`, value.Float(1.5), []byte{0x00, 0x00, 0xc0, 0x3f}},
		{"double", `"double"`, value.Double(1.5), []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf8, 0x3f}},
		{"bytes", `"bytes"`, value.Bytes([]byte{0xde, 0xad}), []byte{0x04, 0xde, 0xad}},
		{"string", `"string"`, value.String("foo"), []byte{0x06, 0x66, 0x6f, 0x6f}},
		{
			"fixed",
			`{"type":"fixed","name":"pair","size":2}`,
			value.Fixed([]byte{0xca, 0xfe}),
			[]byte{0xca, 0xfe},
		},
		{
			"enum",
			`{"type":"enum","name":"suit","symbols":["HEARTS","SPADES","CLUBS"]}`,
			value.Enum(1, "SPADES"),
			[]byte{0x02},
		},
		{
			"array",
			`{"type":"array","items":"long"}`,
			value.Array(value.Long(1), value.Long(2)),
			[]byte{0x04, 0x02, 0x04, 0x00},
		},
		{
			"empty array",
			`{"type":"array","items":"long"}`,
			value.Array(),
			[]byte{0x00},
		},
		{
			"map",
			`{"type":"map","values":"long"}`,
			value.MapOf(map[string]value.Value{"a": value.Long(1)}),
			[]byte{0x02, 0x02, 0x61, 0x02, 0x00},
		},
		{
			"union",
			`["null","string"]`,
			value.Union(1, value.String("x")),
			[]byte{0x02, 0x02, 0x78},
		},
		{
			"union null branch",
			`["null","string"]`,
			value.Union(0, value.Null()),
			[]byte{0x00},
		},
		{
			"record",
			`{"type":"record","name":"test","fields":[{"name":"a","type":"long"},{"name":"b","type":"string"}]}`,
			value.Record(value.NewField("a", value.Long(27)), value.NewField("b", value.String("foo"))),
			[]byte{0x36, 0x06, 0x66, 0x6f, 0x6f},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schema.MustParse(tt.schema)
			got := encodeDatum(t, s, tt.value)
			require.Equal(t, tt.want, got)

			decoded, err := Decode(bytes.NewReader(got), s)
			require.NoError(t, err)
			require.True(t, tt.value.Equal(decoded), "decoded %s != original %s", decoded, tt.value)
		})
	}
}

const compositeSchema = `{
	"type": "record",
	"name": "com.example.telemetry",
	"fields": [
		{"name": "host", "type": "string"},
		{"name": "port", "type": "int"},
		{"name": "uptime", "type": "long"},
		{"name": "load", "type": "double"},
		{"name": "checksum", "type": {"type": "fixed", "name": "sum16", "size": 2}},
		{"name": "state", "type": {"type": "enum", "name": "state", "symbols": ["UP", "DOWN"]}},
		{"name": "tags", "type": {"type": "array", "items": "string"}},
		{"name": "counters", "type": {"type": "map", "values": "long"}},
		{"name": "note", "type": ["null", "string"]}
	]
}`

func compositeValue() value.Value {
	return value.Record(
		value.NewField("host", value.String("db-1")),
		value.NewField("port", value.Int(5432)),
		value.NewField("uptime", value.Long(987654321)),
		value.NewField("load", value.Double(0.75)),
		value.NewField("checksum", value.Fixed([]byte{0xbe, 0xef})),
		value.NewField("state", value.Enum(0, "UP")),
		value.NewField("tags", value.Array(value.String("prod"), value.String("eu"))),
		value.NewField("counters", value.MapOf(map[string]value.Value{
			"reads":  value.Long(42),
			"writes": value.Long(7),
		})),
		value.NewField("note", value.Union(1, value.String("primary"))),
	)
}

func TestCodec_CompositeRoundTrip(t *testing.T) {
	s := schema.MustParse(compositeSchema)
	v := compositeValue()

	data := encodeDatum(t, s, v)
	got, err := Decode(bytes.NewReader(data), s)
	require.NoError(t, err)
	require.True(t, v.Equal(got), "decoded %s != original %s", got, v)
}

func TestEncode_ShapeViolations(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		value  value.Value
	}{
		{"kind mismatch", `"long"`, value.String("nope")},
		{"fixed size mismatch", `{"type":"fixed","name":"pair","size":2}`, value.Fixed([]byte{1, 2, 3})},
		{"enum index out of range", `{"type":"enum","name":"e","symbols":["A"]}`, value.Enum(1, "B")},
		{"union branch out of range", `["null","string"]`, value.Union(2, value.Null())},
		{"union inner mismatch", `["null","string"]`, value.Union(1, value.Long(3))},
		{
			"record field count",
			`{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`,
			value.Record(),
		},
		{
			"record field name",
			`{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`,
			value.Record(value.NewField("b", value.Int(1))),
		},
		{
			"array item mismatch",
			`{"type":"array","items":"int"}`,
			value.Array(value.String("x")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := pool.GetScratchBuffer()
			defer pool.PutScratchBuffer(buf)

			err := Encode(buf, schema.MustParse(tt.schema), tt.value)
			require.ErrorIs(t, err, errs.ErrSchemaMismatch)
		})
	}
}

func TestEncode_TruncateRollsBackPartialDatum(t *testing.T) {
	s := schema.MustParse(`{"type":"record","name":"r","fields":[
		{"name":"a","type":"int"},
		{"name":"b","type":"string"}
	]}`)

	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)

	good := value.Record(value.NewField("a", value.Int(1)), value.NewField("b", value.String("ok")))
	require.NoError(t, Encode(buf, s, good))
	mark := buf.Len()

	bad := value.Record(value.NewField("a", value.Int(2)), value.NewField("b", value.Long(9)))
	require.Error(t, Encode(buf, s, bad))
	buf.Truncate(mark)

	got, err := Decode(bytes.NewReader(buf.Bytes()), s)
	require.NoError(t, err)
	require.True(t, good.Equal(got))
}

func TestDecode_BlockedArray(t *testing.T) {
	s := schema.MustParse(`{"type":"array","items":"long"}`)
	want := value.Array(value.Long(1), value.Long(2))

	tests := []struct {
		name string
		data []byte
	}{
		{
			// Count -2 folds to 0x03; the byte size of the two items follows.
			name: "negative count with byte size",
			data: []byte{0x03, 0x04, 0x02, 0x04, 0x00},
		},
		{
			name: "two single-item blocks",
			data: []byte{0x02, 0x02, 0x02, 0x04, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(bytes.NewReader(tt.data), s)
			require.NoError(t, err)
			require.True(t, want.Equal(got), "decoded %s", got)
		})
	}
}

func TestDecode_BlockedMap(t *testing.T) {
	s := schema.MustParse(`{"type":"map","values":"long"}`)

	// Count -1 folds to 0x01; byte size 3 covers key "a" plus value 1.
	data := []byte{0x01, 0x06, 0x02, 0x61, 0x02, 0x00}
	got, err := Decode(bytes.NewReader(data), s)
	require.NoError(t, err)
	require.True(t, value.MapOf(map[string]value.Value{"a": value.Long(1)}).Equal(got))
}

func TestDecode_CorruptData(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		data     []byte
		sentinel error
	}{
		{"enum index out of range", `{"type":"enum","name":"e","symbols":["A","B"]}`, []byte{0x04}, errs.ErrCorruptFile},
		{"enum index negative", `{"type":"enum","name":"e","symbols":["A","B"]}`, []byte{0x01}, errs.ErrCorruptFile},
		{"union branch out of range", `["null","string"]`, []byte{0x04}, errs.ErrCorruptFile},
		{"union branch negative", `["null","string"]`, []byte{0x01}, errs.ErrCorruptFile},
		{"negative array block size", `{"type":"array","items":"long"}`, []byte{0x03, 0x01}, errs.ErrNegativeLength},
		{"negative map block size", `{"type":"map","values":"long"}`, []byte{0x01, 0x01}, errs.ErrNegativeLength},
		{"boolean byte out of range", `"boolean"`, []byte{0x07}, errs.ErrCorruptFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data), schema.MustParse(tt.schema))
			require.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestDecode_NeverReturnsCleanEOF(t *testing.T) {
	s := schema.MustParse(`"int"`)
	_, err := Decode(bytes.NewReader(nil), s)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestDecode_TruncatedRecord(t *testing.T) {
	s := schema.MustParse(`{"type":"record","name":"test","fields":[
		{"name":"a","type":"long"},
		{"name":"b","type":"string"}
	]}`)

	// Field a decodes; field b's length prefix is missing.
	_, err := Decode(bytes.NewReader([]byte{0x36}), s)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)

	// Field b's payload is shorter than its length prefix.
	_, err = Decode(bytes.NewReader([]byte{0x36, 0x06, 0x66}), s)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestSkip_AdvancesPastDatum(t *testing.T) {
	const sentinel = 0xee

	tests := []struct {
		name   string
		schema string
		value  value.Value
	}{
		{"boolean", `"boolean"`, value.Boolean(true)},
		{"long", `"long"`, value.Long(123456)},
		{"double", `"double"`, value.Double(3.14)},
		{"string", `"string"`, value.String("skip me")},
		{"fixed", `{"type":"fixed","name":"f8","size":8}`, value.Fixed([]byte{1, 2, 3, 4, 5, 6, 7, 8})},
		{"enum", `{"type":"enum","name":"e","symbols":["A","B"]}`, value.Enum(1, "B")},
		{"array", `{"type":"array","items":"string"}`, value.Array(value.String("a"), value.String("b"))},
		{"map", `{"type":"map","values":"int"}`, value.MapOf(map[string]value.Value{"k": value.Int(1)})},
		{"union", `["null","string"]`, value.Union(1, value.String("inner"))},
		{"record", compositeSchema, compositeValue()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schema.MustParse(tt.schema)
			data := append(encodeDatum(t, s, tt.value), sentinel)

			r := bytes.NewReader(data)
			require.NoError(t, Skip(r, s))

			next, err := r.ReadByte()
			require.NoError(t, err)
			require.Equal(t, byte(sentinel), next)
		})
	}
}

func TestSkip_JumpsSizedBlocks(t *testing.T) {
	s := schema.MustParse(`{"type":"array","items":"long"}`)

	// Negative-count block: the payload bytes are garbage for the item
	// schema, which proves the skip used the byte size instead of decoding.
	data := []byte{0x03, 0x04, 0xff, 0xff, 0x00, 0xee}
	r := bytes.NewReader(data)
	require.NoError(t, Skip(r, s))

	next, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xee), next)
}

func TestSkip_Truncated(t *testing.T) {
	s := schema.MustParse(`"string"`)
	err := Skip(bytes.NewReader([]byte{0x06, 0x66}), s)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestSkip_NegativeLength(t *testing.T) {
	s := schema.MustParse(`"bytes"`)
	err := Skip(bytes.NewReader([]byte{0x01}), s)
	require.ErrorIs(t, err, errs.ErrNegativeLength)
}

func BenchmarkEncode_Record(b *testing.B) {
	s := schema.MustParse(compositeSchema)
	v := compositeValue()
	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)

	for b.Loop() {
		buf.Reset()
		if err := Encode(buf, s, v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode_Record(b *testing.B) {
	s := schema.MustParse(compositeSchema)
	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)
	if err := Encode(buf, s, compositeValue()); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()

	r := bytes.NewReader(data)
	for b.Loop() {
		r.Reset(data)
		if _, err := Decode(r, s); err != nil {
			b.Fatal(err)
		}
	}
}

// Package rebo implements a schema-driven binary serialization format: a
// JSON schema language describes record shapes, values are validated and
// encoded to a compact binary representation, and a self-describing
// container file format wraps encoded records with framing and optional
// compression.
//
// # Core Features
//
//   - Schema graph parsed from JSON text, with named-type references,
//     recursive records, and canonical-form fingerprinting
//   - Record builder with field defaults and native Go value coercion
//   - Dense binary encoding: zig-zag varints, length-prefixed bytes and
//     strings, blocked arrays and maps, tagged unions
//   - Writer/reader schema resolution: field matching by name, reader-side
//     defaults, numeric widening, and union branch matching
//   - Container files readable without external schema distribution, with
//     per-block compression (deflate, snappy, zstandard, lz4) and sync
//     markers for corruption detection
//
// # Basic Usage
//
// Encoding a single datum:
//
//	s := rebo.MustParseSchema(`{
//	    "type": "record",
//	    "name": "Event",
//	    "fields": [
//	        {"name": "id", "type": "long"},
//	        {"name": "message", "type": "string"}
//	    ]
//	}`)
//
//	b, _ := rebo.NewRecord(s)
//	b.Put("id", 42)
//	b.Put("message", "hello")
//	v, _ := b.Build()
//
//	data, _ := rebo.Marshal(s, v)
//	back, _ := rebo.Unmarshal(s, data)
//
// Writing and reading a container file:
//
//	w, _ := rebo.NewWriter(f, s, container.WithCodec(format.CodecZstandard))
//	w.Append(v)
//	w.Close()
//
//	r, _ := rebo.NewReader(f2)
//	for v, err := range r.All() {
//	    if err != nil { ... }
//	    process(v)
//	}
//
// # Package Structure
//
// This package provides top-level wrappers around the schema, value,
// encoding, and container packages, covering the most common use cases. For
// fine-grained control, use those packages directly.
package rebo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/rebo/container"
	"github.com/arloliu/rebo/encoding"
	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/internal/pool"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/value"
)

// ParseSchema parses a JSON schema text into a Schema.
//
// Named types may be referenced before their definitions, so mutually
// recursive records parse naturally. The returned Schema is immutable and
// safe for concurrent use.
//
// Parameters:
//   - text: The schema as a JSON document
//
// Returns:
//   - schema.Schema: Handle to the parsed schema graph
//   - error: errs.ErrSchema describing the first problem found
func ParseSchema(text string) (schema.Schema, error) {
	return schema.Parse(text)
}

// MustParseSchema is like ParseSchema but panics on error. It is intended
// for schemas known valid at compile time.
func MustParseSchema(text string) schema.Schema {
	return schema.MustParse(text)
}

// NewRecord returns a builder for a record value conforming to s.
//
// Put accepts either value.Value or native Go values (ints, strings, bools,
// slices, maps), coercing them against the field schema. Build fills unset
// fields from their schema defaults and fails with errs.ErrMissingField for
// an unset field that declares none.
//
// Example:
//
//	b, err := rebo.NewRecord(s)
//	b.Put("id", 42)
//	b.Put("message", "hello")
//	v, err := b.Build()
func NewRecord(s schema.Schema) (*value.RecordBuilder, error) {
	return value.NewRecord(s)
}

// Marshal encodes a single datum to its binary representation.
//
// The output carries no schema, framing, or length information; decoding it
// requires the same schema (or a compatible reader schema through the
// encoding.Resolver). For self-describing output, write a container file
// with NewWriter instead.
//
// Parameters:
//   - s: Schema the value must conform to
//   - v: Value to encode
//
// Returns:
//   - []byte: The encoded datum
//   - error: errs.ErrSchemaMismatch when v does not conform to s
func Marshal(s schema.Schema, v value.Value) ([]byte, error) {
	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)

	if err := encoding.Encode(buf, s, v); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Unmarshal decodes a single datum produced by Marshal with the same schema.
//
// The whole input must be consumed: bytes remaining after the datum mean
// data was appended or the schema disagrees with the payload, and fail with
// errs.ErrCorruptFile rather than being silently ignored.
//
// Parameters:
//   - s: Schema the datum was encoded with
//   - data: The encoded datum, exactly
//
// Returns:
//   - value.Value: Decoded value shaped by s
//   - error: errs.ErrUnexpectedEOF for a truncated datum, or
//     errs.ErrCorruptFile for trailing bytes
func Unmarshal(s schema.Schema, data []byte) (value.Value, error) {
	src := bytes.NewReader(data)
	v, err := encoding.Decode(src, s)
	if err != nil {
		return value.Value{}, err
	}
	if src.Len() > 0 {
		return value.Value{}, fmt.Errorf("%w: %d trailing bytes after datum", errs.ErrCorruptFile, src.Len())
	}

	return v, nil
}

// UnmarshalWithSchema decodes a single datum encoded with the writer schema
// into the shape of the reader schema, applying the resolution rules (field
// matching by name, reader-side defaults, numeric widening, union branch
// matching).
//
// Parameters:
//   - writer: Schema the datum was encoded with
//   - reader: Schema to decode into
//   - data: The encoded datum, exactly
//
// Returns:
//   - value.Value: Decoded value shaped by the reader schema
//   - error: errs.ErrSchemaMismatch when the schemas cannot be resolved, or
//     a decode error as for Unmarshal
func UnmarshalWithSchema(writer, reader schema.Schema, data []byte) (value.Value, error) {
	resolver, err := encoding.NewResolver(writer, reader)
	if err != nil {
		return value.Value{}, err
	}

	src := bytes.NewReader(data)
	v, err := resolver.Decode(src)
	if err != nil {
		return value.Value{}, err
	}
	if src.Len() > 0 {
		return value.Value{}, fmt.Errorf("%w: %d trailing bytes after datum", errs.ErrCorruptFile, src.Len())
	}

	return v, nil
}

// NewWriter opens a container file on sink bound to schema s.
//
// The header is written immediately; appended values are buffered into
// blocks and flushed with compression and framing. See the container
// package for the available options.
//
// Example:
//
//	w, err := rebo.NewWriter(f, s,
//	    container.WithCodec(format.CodecZstandard),
//	    container.WithMaxBlockRecords(1000),
//	)
func NewWriter(sink io.Writer, s schema.Schema, opts ...container.WriterOption) (*container.Writer, error) {
	return container.NewWriter(sink, s, opts...)
}

// NewReader opens a container file and decodes records with the schema
// embedded in its header.
func NewReader(src io.Reader) (*container.Reader, error) {
	return container.NewReader(src)
}

// NewReaderWithSchema opens a container file and decodes records by
// resolving the embedded writer schema against the supplied reader schema.
func NewReaderWithSchema(src io.Reader, reader schema.Schema) (*container.Reader, error) {
	return container.NewReaderWithSchema(src, reader)
}

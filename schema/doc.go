// Package schema parses JSON schema text into an immutable in-memory type
// graph that drives binary encoding, decoding and writer/reader resolution.
//
// # Overview
//
// A schema describes the shape of a datum with a closed set of fourteen
// kinds: the primitives null, boolean, int, long, float, double, bytes and
// string, plus fixed, enum, array, map, union and record. Schemas are
// declared as JSON:
//
//	s, err := schema.Parse(`{
//	    "type": "record",
//	    "name": "Test",
//	    "namespace": "test",
//	    "fields": [
//	        {"name": "field", "type": "string"}
//	    ]
//	}`)
//
// The result is a Schema handle into an arena-allocated node graph. Handles
// are small values; copying one never copies the graph.
//
// # Named Types and References
//
// Records, enums and fixeds are named types. Each is registered under its
// fullname (namespace + "." + name) when parsed and may be referenced by that
// name anywhere else in the same document:
//
//	{"type": "record", "name": "Node", "fields": [
//	    {"name": "children", "type": {"type": "array", "items": "Node"}}
//	]}
//
// Resolution is two-pass: definitions are collected first and references are
// bound afterwards, so forward references and mutually recursive records
// work. Because nodes address each other by arena index, recursive types form
// index cycles with no ownership cycles behind them.
//
// An unqualified name is resolved against the namespace of the enclosing
// definition. A dotted "name" attribute overrides any "namespace" attribute.
// Name segments must match [A-Za-z_][A-Za-z0-9_]*.
//
// # Union Composition
//
// Unions are JSON arrays of branch schemas. The encoded form of a union value
// is a branch index, so every branch must stay identifiable by position:
// unnamed kinds may appear at most once per union, named types at most once
// per fullname, and a union may not immediately contain another union.
// Violations are parse errors, never decode-time surprises.
//
// # Field Defaults
//
// Record fields may declare a "default" JSON literal. Defaults are
// type-checked against the field schema during Parse, so consumers (the
// record builder, the resolver filling reader-only fields) can materialize
// them without re-validation. A default for a union field is checked against
// the union's first branch. Bytes and fixed defaults are JSON strings whose
// code points are the byte values 0-255.
//
// # Canonical Form and Fingerprints
//
// Schema.String returns the parsing canonical form: fully qualified names,
// fixed attribute order, defaults and foreign attributes stripped. Two
// schemas with the same canonical form accept the same encoded bytes.
// Schema.Fingerprint hashes the canonical form with xxHash64 and keys the
// decode-plan cache; it is never written to the wire.
//
// # Thread Safety
//
// A parsed document is immutable. Any number of goroutines may share Schema
// handles, navigate the graph and render canonical forms concurrently.
package schema

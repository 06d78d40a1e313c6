// Package value defines the datum representation the codec encodes and
// decodes: a closed tagged union mirroring the schema kinds, plus a record
// builder with schema-default fallback.
//
// # Values
//
// Construct values with the kind constructors and read them back with the
// kind accessors:
//
//	v := value.Record(
//	    value.NewField("field", value.String("foo")),
//	)
//	v.Fields()[0].Value.Str() // "foo"
//
// A Value is meaningful only relative to a schema. Validate checks a value
// against one; the codec does the same check implicitly while encoding.
// Equal compares floats by bit pattern so round-tripped NaN still compares
// equal.
//
// # Record Builder
//
// RecordBuilder assembles records field by field, accepting plain Go data
// and coercing it against the field schema:
//
//	rb, _ := value.NewRecord(s)
//	rb.Put("username", "nobody")
//	rb.Put("age", 42)
//	rec, err := rb.Build()
//
// Build fills unset fields from schema defaults and fails with
// errs.ErrMissingField when a field has neither a value nor a default.
package value

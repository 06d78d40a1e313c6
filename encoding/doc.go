// Package encoding implements the rebo binary wire format: the primitive
// codecs, the recursive schema-driven value codec, datum skipping, and
// writer/reader schema resolution.
//
// # Wire Format
//
// Every datum is laid out by its schema; no type information appears on the
// wire:
//
//   - null: zero bytes
//   - boolean: one byte, 0 or 1
//   - int, long: zig-zag folded varint, at most ten bytes
//   - float, double: IEEE-754 bit pattern, little-endian
//   - bytes, string: zig-zag varint length, then the raw bytes
//   - fixed: exactly the declared number of raw bytes
//   - enum: zig-zag varint symbol index
//   - array, map: blocks of (count, items...) ended by a zero count; a
//     negative count is followed by the block's byte size and abs(count)
//     items, letting a reader skip whole blocks without touching the items
//   - union: zig-zag varint branch index, then the branch's encoding
//   - record: field encodings concatenated in schema order
//
// Encoding always emits the minimal single-block form for arrays and maps;
// decoding and skipping accept any blocked form.
//
// # Encode and Decode
//
// Encode appends a value's encoding to a pooled buffer, checking the value's
// shape against the schema at every level. Decode reads one datum back,
// producing a value shaped exactly by the schema. Both are pure
// transformations; neither retains the buffer or source.
//
// # Schema Resolution
//
// A Resolver compiles the pairwise walk of a writer schema and a reader
// schema into a reusable decode plan: fields remap by name, primitives
// widen, enum symbols remap, union branches re-match, and reader-only
// fields fill from their defaults. Compiled plans are cached by canonical
// fingerprint pair, so constructing a Resolver for an already-seen pair
// does not walk the schemas again.
//
// # End of Input
//
// Reads that hit end of input on a datum boundary return io.EOF untouched;
// once inside a datum, end of input is errs.ErrUnexpectedEOF. Decode and
// Resolver.Decode require a datum to be present and never return io.EOF.
package encoding

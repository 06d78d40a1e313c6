package schema

import (
	"github.com/arloliu/rebo/internal/hash"
)

// Kind identifies the variant of a Schema node.
//
// The set is closed: the codec and the resolver switch exhaustively over it,
// so adding a kind is a compile-time visible change in every dispatch site.
type Kind uint8

const (
	// Invalid is the kind of the zero Schema value.
	Invalid Kind = iota
	// Null encodes to zero bytes.
	Null
	// Boolean encodes to a single 0 or 1 byte.
	Boolean
	// Int is a 32-bit signed integer, zig-zag varint encoded.
	Int
	// Long is a 64-bit signed integer, zig-zag varint encoded.
	Long
	// Float is an IEEE-754 single precision value, little-endian.
	Float
	// Double is an IEEE-754 double precision value, little-endian.
	Double
	// Bytes is a length-prefixed byte sequence.
	Bytes
	// String is a length-prefixed UTF-8 byte sequence.
	String
	// Fixed is a named byte sequence of a fixed declared size, no length prefix.
	Fixed
	// Enum is a named, ordered symbol list; values encode as the symbol index.
	Enum
	// Array is an ordered sequence of items sharing one schema.
	Array
	// Map is a string-keyed mapping to values sharing one schema.
	Map
	// Union is an ordered list of alternative schemas; values encode as a
	// branch index followed by the branch encoding.
	Union
	// Record is a named, ordered field list; values encode as the
	// concatenation of field encodings in declared order.
	Record

	// kindRef marks an unresolved named-type reference during parsing.
	// References are rewritten to their target in the resolve pass and
	// never escape the parser unresolved.
	kindRef Kind = 0xff
)

var kindNames = map[Kind]string{
	Invalid: "invalid",
	Null:    "null",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Bytes:   "bytes",
	String:  "string",
	Fixed:   "fixed",
	Enum:    "enum",
	Array:   "array",
	Map:     "map",
	Union:   "union",
	Record:  "record",
}

// String returns the schema-text name of the kind, e.g. "long" or "record".
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "invalid"
}

// document is the arena holding every node of one parsed schema text.
//
// Nodes address each other by index instead of by pointer so recursive and
// mutually recursive named types form index cycles rather than ownership
// cycles. The named map resolves fullname references in the second parse
// pass. A document is immutable once Parse returns it.
type document struct {
	nodes []node
	named map[string]int32
}

// node is one vertex of the schema graph. Only the fields relevant to its
// kind are populated.
type node struct {
	kind Kind

	name typeName // Record, Enum, Fixed

	size     int              // Fixed
	symbols  []string         // Enum
	symtab   map[string]int   // Enum: symbol -> index
	elem     int32            // Array items, Map values, kindRef target
	branches []int32          // Union
	fields   []field          // Record
	fieldIdx map[string]int32 // Record: field name -> position

	refName string // kindRef: fullname awaiting resolution
}

// field is the arena-internal representation of one record field.
// def holds the raw JSON default literal, type-checked at parse time.
type field struct {
	name       string
	schema     int32
	hasDefault bool
	def        any
}

// Schema is a handle to one node of a parsed schema document.
//
// Handles are small values, cheap to copy, and safe for concurrent use: the
// underlying document is immutable after parsing. Navigation methods such as
// Items or Field return handles into the same document. The zero Schema is
// invalid; its Kind is Invalid and all other methods must not be called on it.
type Schema struct {
	doc *document
	idx int32
}

// nodeAt returns the node at idx, chasing resolved name references.
func (d *document) nodeAt(idx int32) *node {
	n := &d.nodes[idx]
	for n.kind == kindRef {
		n = &d.nodes[n.elem]
	}

	return n
}

// node returns the underlying arena node, chasing resolved name references.
func (s Schema) node() *node {
	return s.doc.nodeAt(s.idx)
}

// at wraps an arena index of the same document in a handle.
func (s Schema) at(idx int32) Schema {
	return Schema{doc: s.doc, idx: idx}
}

// Kind returns the schema's variant. It is Invalid for the zero Schema.
func (s Schema) Kind() Kind {
	if s.doc == nil {
		return Invalid
	}

	return s.node().kind
}

// Name returns the simple (unqualified) name of a Record, Enum or Fixed
// schema, and "" for every other kind.
func (s Schema) Name() string {
	if s.doc == nil {
		return ""
	}

	return s.node().name.simple
}

// Namespace returns the namespace of a Record, Enum or Fixed schema, and ""
// for every other kind or when the type was declared without a namespace.
func (s Schema) Namespace() string {
	if s.doc == nil {
		return ""
	}

	return s.node().name.space
}

// Fullname returns the dot-joined namespace and name of a Record, Enum or
// Fixed schema, e.g. "my.example.userInfo". It returns "" for unnamed kinds.
func (s Schema) Fullname() string {
	if s.doc == nil {
		return ""
	}

	return s.node().name.fullname()
}

// Size returns the declared byte size of a Fixed schema.
// It panics if the schema kind is not Fixed.
func (s Schema) Size() int {
	n := s.node()
	if n.kind != Fixed {
		panic("schema: Size of non-fixed schema")
	}

	return n.size
}

// Symbols returns the ordered symbol list of an Enum schema.
// The returned slice is shared and must not be modified.
// It panics if the schema kind is not Enum.
func (s Schema) Symbols() []string {
	n := s.node()
	if n.kind != Enum {
		panic("schema: Symbols of non-enum schema")
	}

	return n.symbols
}

// SymbolIndex returns the position of symbol in an Enum schema's symbol list,
// reporting whether the symbol exists. It panics if the schema kind is not Enum.
func (s Schema) SymbolIndex(symbol string) (int, bool) {
	n := s.node()
	if n.kind != Enum {
		panic("schema: SymbolIndex of non-enum schema")
	}

	i, ok := n.symtab[symbol]

	return i, ok
}

// Items returns the element schema of an Array schema.
// It panics if the schema kind is not Array.
func (s Schema) Items() Schema {
	n := s.node()
	if n.kind != Array {
		panic("schema: Items of non-array schema")
	}

	return s.at(n.elem)
}

// Values returns the value schema of a Map schema.
// It panics if the schema kind is not Map.
func (s Schema) Values() Schema {
	n := s.node()
	if n.kind != Map {
		panic("schema: Values of non-map schema")
	}

	return s.at(n.elem)
}

// NumBranches returns the branch count of a Union schema.
// It panics if the schema kind is not Union.
func (s Schema) NumBranches() int {
	n := s.node()
	if n.kind != Union {
		panic("schema: NumBranches of non-union schema")
	}

	return len(n.branches)
}

// Branch returns the i-th branch of a Union schema.
// It panics if the schema kind is not Union or i is out of range.
func (s Schema) Branch(i int) Schema {
	n := s.node()
	if n.kind != Union {
		panic("schema: Branch of non-union schema")
	}

	return s.at(n.branches[i])
}

// Branches returns all branches of a Union schema as a fresh slice.
// It panics if the schema kind is not Union.
func (s Schema) Branches() []Schema {
	n := s.node()
	if n.kind != Union {
		panic("schema: Branches of non-union schema")
	}

	out := make([]Schema, len(n.branches))
	for i, b := range n.branches {
		out[i] = s.at(b)
	}

	return out
}

// NumFields returns the field count of a Record schema.
// It panics if the schema kind is not Record.
func (s Schema) NumFields() int {
	n := s.node()
	if n.kind != Record {
		panic("schema: NumFields of non-record schema")
	}

	return len(n.fields)
}

// Field returns the i-th field of a Record schema.
// It panics if the schema kind is not Record or i is out of range.
func (s Schema) Field(i int) Field {
	n := s.node()
	if n.kind != Record {
		panic("schema: Field of non-record schema")
	}
	if i < 0 || i >= len(n.fields) {
		panic("schema: field index out of range")
	}

	return Field{doc: s.doc, rec: n, pos: int32(i)}
}

// FieldByName returns the field with the given name and reports whether the
// record declares it. It panics if the schema kind is not Record.
func (s Schema) FieldByName(name string) (Field, bool) {
	n := s.node()
	if n.kind != Record {
		panic("schema: FieldByName of non-record schema")
	}

	pos, ok := n.fieldIdx[name]
	if !ok {
		return Field{}, false
	}

	return Field{doc: s.doc, rec: n, pos: pos}, true
}

// String returns the parsing canonical form of the schema: defaults and
// documentation stripped, names fully qualified, attributes in fixed order,
// and repeated named types collapsed to their fullname after the first
// occurrence. Two schemas with equal canonical forms are interchangeable on
// the wire.
func (s Schema) String() string {
	if s.doc == nil {
		return ""
	}

	return s.canonical()
}

// Fingerprint returns the 64-bit xxHash of the parsing canonical form.
//
// Fingerprints key the in-process decode-plan cache; they are not a wire
// artifact and carry no collision-resistance guarantee, so cache hits are
// verified against the canonical text itself.
func (s Schema) Fingerprint() uint64 {
	return hash.Fingerprint64(s.String())
}

// Field is a handle to one declared field of a Record schema.
type Field struct {
	doc *document
	rec *node
	pos int32
}

// Name returns the field's declared name.
func (f Field) Name() string {
	return f.rec.fields[f.pos].name
}

// Schema returns the field's declared schema.
func (f Field) Schema() Schema {
	return Schema{doc: f.doc, idx: f.rec.fields[f.pos].schema}
}

// HasDefault reports whether the field declares a default value.
func (f Field) HasDefault() bool {
	return f.rec.fields[f.pos].hasDefault
}

// Default returns the field's default as the raw JSON literal it was declared
// with (nil, bool, json.Number, string, []any or map[string]any). The literal
// was type-checked against the field schema at parse time. It returns nil
// when HasDefault is false.
func (f Field) Default() any {
	return f.rec.fields[f.pos].def
}

// Position returns the field's zero-based position in the record declaration.
func (f Field) Position() int {
	return int(f.pos)
}

// typeName is the split fullname of a named type.
type typeName struct {
	simple string
	space  string
}

func (n typeName) fullname() string {
	if n.space == "" {
		return n.simple
	}

	return n.space + "." + n.simple
}

package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/arloliu/rebo/errs"
)

// Parse parses a JSON schema text into a Schema.
//
// Parsing is three-pass: the first pass builds the type graph and collects
// every named-type definition, the second resolves name references (which
// allows forward references and mutually recursive records), and the third
// validates union branch uniqueness and type-checks field default literals.
//
// Parameters:
//   - text: the schema as a JSON document
//
// Returns:
//   - Schema: handle to the parsed schema graph
//   - error: errs.ErrSchema on malformed JSON, unknown type names, unresolved
//     references, duplicate names/symbols/fields, invalid union composition,
//     or a default literal that does not match its field schema
func Parse(text string) (Schema, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Schema{}, fmt.Errorf("%w: malformed schema JSON: %v", errs.ErrSchema, err)
	}
	if dec.More() {
		return Schema{}, fmt.Errorf("%w: trailing data after schema JSON", errs.ErrSchema)
	}

	p := &parser{doc: &document{named: make(map[string]int32)}}

	root, err := p.parse(raw, "")
	if err != nil {
		return Schema{}, err
	}
	if err := p.resolveRefs(); err != nil {
		return Schema{}, err
	}
	if err := p.validateUnions(); err != nil {
		return Schema{}, err
	}
	if err := p.checkDefaults(); err != nil {
		return Schema{}, err
	}

	return Schema{doc: p.doc, idx: root}, nil
}

// MustParse is like Parse but panics on error. It is intended for schemas
// known valid at compile time, such as test fixtures and embedded literals.
func MustParse(text string) Schema {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return s
}

// parser accumulates the arena during the first pass and the work lists for
// the later passes.
type parser struct {
	doc    *document
	refs   []int32 // kindRef nodes awaiting name resolution
	unions []int32 // union nodes awaiting branch validation
}

// add appends a node to the arena and returns its index.
func (p *parser) add(n node) int32 {
	p.doc.nodes = append(p.doc.nodes, n)

	return int32(len(p.doc.nodes) - 1)
}

// register binds a named type definition to its fullname.
func (p *parser) register(tn typeName, idx int32) error {
	full := tn.fullname()
	if _, dup := p.doc.named[full]; dup {
		return fmt.Errorf("%w: duplicate definition of named type %q", errs.ErrSchema, full)
	}
	p.doc.named[full] = idx

	return nil
}

var primitiveKinds = map[string]Kind{
	"null":    Null,
	"boolean": Boolean,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"bytes":   Bytes,
	"string":  String,
}

// complexKinds are type names that are only valid with an object declaration.
var complexKinds = map[string]bool{
	"record": true,
	"enum":   true,
	"fixed":  true,
	"array":  true,
	"map":    true,
	"union":  true,
}

// parse dispatches on the JSON shape of a type position: a string is a
// primitive or named reference, a list is a union, an object is a complex
// type declaration. space is the enclosing namespace for name resolution.
func (p *parser) parse(raw any, space string) (int32, error) {
	switch v := raw.(type) {
	case string:
		return p.parseTypeName(v, space)
	case []any:
		return p.parseUnion(v, space)
	case map[string]any:
		return p.parseObject(v, space)
	default:
		return 0, fmt.Errorf("%w: unexpected JSON value in type position", errs.ErrSchema)
	}
}

func (p *parser) parseTypeName(name, space string) (int32, error) {
	if k, ok := primitiveKinds[name]; ok {
		return p.add(node{kind: k}), nil
	}
	if complexKinds[name] {
		return 0, fmt.Errorf("%w: type %q requires an object declaration", errs.ErrSchema, name)
	}

	full, err := qualifyRef(name, space)
	if err != nil {
		return 0, err
	}

	// Defer resolution: the definition may appear later in the document.
	idx := p.add(node{kind: kindRef, refName: full})
	p.refs = append(p.refs, idx)

	return idx, nil
}

func (p *parser) parseObject(v map[string]any, space string) (int32, error) {
	rawType, ok := v["type"]
	if !ok {
		return 0, fmt.Errorf("%w: schema object missing %q attribute", errs.ErrSchema, "type")
	}

	ts, ok := rawType.(string)
	if !ok {
		// The "type" attribute may itself hold a full schema,
		// e.g. {"type": ["null", "int"]}.
		return p.parse(rawType, space)
	}

	switch ts {
	case "record":
		return p.parseRecord(v, space)
	case "enum":
		return p.parseEnum(v, space)
	case "fixed":
		return p.parseFixed(v, space)
	case "array":
		return p.parseArray(v, space)
	case "map":
		return p.parseMap(v, space)
	default:
		// Primitive with extra attributes (logicalType and friends are
		// ignored) or a named reference in object form.
		return p.parseTypeName(ts, space)
	}
}

func (p *parser) parseRecord(v map[string]any, space string) (int32, error) {
	tn, err := p.typeNameOf(v, space)
	if err != nil {
		return 0, err
	}

	// Register before parsing fields so the record may reference itself.
	idx := p.add(node{kind: Record, name: tn})
	if err := p.register(tn, idx); err != nil {
		return 0, err
	}

	rawFields, ok := v["fields"]
	if !ok {
		return 0, fmt.Errorf("%w: record %q missing %q attribute", errs.ErrSchema, tn.fullname(), "fields")
	}
	list, ok := rawFields.([]any)
	if !ok {
		return 0, fmt.Errorf("%w: record %q fields must be a JSON array", errs.ErrSchema, tn.fullname())
	}

	fields := make([]field, 0, len(list))
	fieldIdx := make(map[string]int32, len(list))
	for i, rawField := range list {
		fo, ok := rawField.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("%w: record %q field %d must be a JSON object", errs.ErrSchema, tn.fullname(), i)
		}

		fname, ok := fo["name"].(string)
		if !ok {
			return 0, fmt.Errorf("%w: record %q field %d missing %q attribute", errs.ErrSchema, tn.fullname(), i, "name")
		}
		if !validName(fname) {
			return 0, fmt.Errorf("%w: invalid field name %q in record %q", errs.ErrSchema, fname, tn.fullname())
		}
		if _, dup := fieldIdx[fname]; dup {
			return 0, fmt.Errorf("%w: duplicate field %q in record %q", errs.ErrSchema, fname, tn.fullname())
		}

		rawFieldType, ok := fo["type"]
		if !ok {
			return 0, fmt.Errorf("%w: field %q of record %q missing %q attribute", errs.ErrSchema, fname, tn.fullname(), "type")
		}

		// Nested named types resolve against the record's namespace.
		fidx, err := p.parse(rawFieldType, tn.space)
		if err != nil {
			return 0, fmt.Errorf("field %q of record %q: %w", fname, tn.fullname(), err)
		}

		f := field{name: fname, schema: fidx}
		if def, declared := fo["default"]; declared {
			f.hasDefault = true
			f.def = def
		}

		fieldIdx[fname] = int32(i)
		fields = append(fields, f)
	}

	// Re-index: field parsing may have grown the arena.
	p.doc.nodes[idx].fields = fields
	p.doc.nodes[idx].fieldIdx = fieldIdx

	return idx, nil
}

func (p *parser) parseEnum(v map[string]any, space string) (int32, error) {
	tn, err := p.typeNameOf(v, space)
	if err != nil {
		return 0, err
	}

	rawSyms, ok := v["symbols"]
	if !ok {
		return 0, fmt.Errorf("%w: enum %q missing %q attribute", errs.ErrSchema, tn.fullname(), "symbols")
	}
	list, ok := rawSyms.([]any)
	if !ok {
		return 0, fmt.Errorf("%w: enum %q symbols must be a JSON array", errs.ErrSchema, tn.fullname())
	}

	symbols := make([]string, 0, len(list))
	symtab := make(map[string]int, len(list))
	for i, rawSym := range list {
		sym, ok := rawSym.(string)
		if !ok {
			return 0, fmt.Errorf("%w: enum %q symbol %d must be a string", errs.ErrSchema, tn.fullname(), i)
		}
		if !validName(sym) {
			return 0, fmt.Errorf("%w: invalid symbol %q in enum %q", errs.ErrSchema, sym, tn.fullname())
		}
		if _, dup := symtab[sym]; dup {
			return 0, fmt.Errorf("%w: duplicate symbol %q in enum %q", errs.ErrSchema, sym, tn.fullname())
		}
		symtab[sym] = i
		symbols = append(symbols, sym)
	}

	idx := p.add(node{kind: Enum, name: tn, symbols: symbols, symtab: symtab})
	if err := p.register(tn, idx); err != nil {
		return 0, err
	}

	return idx, nil
}

func (p *parser) parseFixed(v map[string]any, space string) (int32, error) {
	tn, err := p.typeNameOf(v, space)
	if err != nil {
		return 0, err
	}

	rawSize, ok := v["size"].(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: fixed %q missing numeric %q attribute", errs.ErrSchema, tn.fullname(), "size")
	}
	size, err := rawSize.Int64()
	if err != nil || size < 0 || size > math.MaxInt32 {
		return 0, fmt.Errorf("%w: fixed %q size %s is not a non-negative integer", errs.ErrSchema, tn.fullname(), rawSize)
	}

	idx := p.add(node{kind: Fixed, name: tn, size: int(size)})
	if err := p.register(tn, idx); err != nil {
		return 0, err
	}

	return idx, nil
}

func (p *parser) parseArray(v map[string]any, space string) (int32, error) {
	rawItems, ok := v["items"]
	if !ok {
		return 0, fmt.Errorf("%w: array missing %q attribute", errs.ErrSchema, "items")
	}
	elem, err := p.parse(rawItems, space)
	if err != nil {
		return 0, err
	}

	return p.add(node{kind: Array, elem: elem}), nil
}

func (p *parser) parseMap(v map[string]any, space string) (int32, error) {
	rawValues, ok := v["values"]
	if !ok {
		return 0, fmt.Errorf("%w: map missing %q attribute", errs.ErrSchema, "values")
	}
	elem, err := p.parse(rawValues, space)
	if err != nil {
		return 0, err
	}

	return p.add(node{kind: Map, elem: elem}), nil
}

func (p *parser) parseUnion(list []any, space string) (int32, error) {
	if len(list) == 0 {
		return 0, fmt.Errorf("%w: union must have at least one branch", errs.ErrSchema)
	}

	branches := make([]int32, 0, len(list))
	for i, rawBranch := range list {
		bidx, err := p.parse(rawBranch, space)
		if err != nil {
			return 0, fmt.Errorf("union branch %d: %w", i, err)
		}
		branches = append(branches, bidx)
	}

	idx := p.add(node{kind: Union, branches: branches})
	p.unions = append(p.unions, idx)

	return idx, nil
}

// typeNameOf extracts and validates the name of a named type declaration.
// A dotted "name" attribute overrides "namespace"; an unqualified name uses
// the explicit "namespace" attribute, falling back to the enclosing space.
func (p *parser) typeNameOf(v map[string]any, space string) (typeName, error) {
	rawName, ok := v["name"]
	if !ok {
		return typeName{}, fmt.Errorf("%w: named type missing %q attribute", errs.ErrSchema, "name")
	}
	name, ok := rawName.(string)
	if !ok {
		return typeName{}, fmt.Errorf("%w: type name must be a string", errs.ErrSchema)
	}

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		space, name = name[:i], name[i+1:]
		if !validNamespace(space) {
			return typeName{}, fmt.Errorf("%w: invalid namespace %q", errs.ErrSchema, space)
		}
	} else if rawSpace, declared := v["namespace"]; declared {
		ns, ok := rawSpace.(string)
		if !ok {
			return typeName{}, fmt.Errorf("%w: namespace of %q must be a string", errs.ErrSchema, name)
		}
		if !validNamespace(ns) {
			return typeName{}, fmt.Errorf("%w: invalid namespace %q", errs.ErrSchema, ns)
		}
		space = ns
	}

	if !validName(name) {
		return typeName{}, fmt.Errorf("%w: invalid type name %q", errs.ErrSchema, name)
	}

	return typeName{simple: name, space: space}, nil
}

// resolveRefs is the second pass: every name reference recorded in the first
// pass is pointed at its definition, wherever in the document it appeared.
func (p *parser) resolveRefs() error {
	for _, idx := range p.refs {
		n := &p.doc.nodes[idx]
		target, ok := p.doc.named[n.refName]
		if !ok {
			return fmt.Errorf("%w: unresolved type reference %q", errs.ErrSchema, n.refName)
		}
		n.elem = target
	}

	return nil
}

// validateUnions enforces branch uniqueness after references are resolved:
// the encoded branch index must identify exactly one schema on decode, so
// unnamed kinds may appear once per union and named types once per fullname.
func (p *parser) validateUnions() error {
	for _, uidx := range p.unions {
		seenKinds := make(map[Kind]bool)
		seenNames := make(map[string]bool)
		for _, bidx := range p.doc.nodes[uidx].branches {
			b := p.doc.nodeAt(bidx)
			switch b.kind {
			case Union:
				return fmt.Errorf("%w: union branch may not itself be a union", errs.ErrSchema)
			case Record, Enum, Fixed:
				full := b.name.fullname()
				if seenNames[full] {
					return fmt.Errorf("%w: union contains duplicate named type %q", errs.ErrSchema, full)
				}
				seenNames[full] = true
			default:
				if seenKinds[b.kind] {
					return fmt.Errorf("%w: union contains duplicate %q branches", errs.ErrSchema, b.kind)
				}
				seenKinds[b.kind] = true
			}
		}
	}

	return nil
}

// checkDefaults is the third pass: every declared field default literal must
// match its field schema. Checking after resolution lets defaults apply to
// fields of named reference types.
func (p *parser) checkDefaults() error {
	for i := range p.doc.nodes {
		n := &p.doc.nodes[i]
		if n.kind != Record {
			continue
		}
		for _, f := range n.fields {
			if !f.hasDefault {
				continue
			}
			if err := p.checkDefault(f.def, f.schema); err != nil {
				return fmt.Errorf("invalid default for field %q of record %q: %w", f.name, n.name.fullname(), err)
			}
		}
	}

	return nil
}

// checkDefault type-checks one JSON default literal against a schema node.
// Union defaults are checked against the first branch. Bytes and fixed
// defaults are strings whose code points are byte values (0-255).
func (p *parser) checkDefault(lit any, idx int32) error {
	n := p.doc.nodeAt(idx)

	switch n.kind {
	case Null:
		if lit != nil {
			return fmt.Errorf("%w: null default must be JSON null", errs.ErrSchema)
		}
	case Boolean:
		if _, ok := lit.(bool); !ok {
			return fmt.Errorf("%w: boolean default must be true or false", errs.ErrSchema)
		}
	case Int:
		num, ok := lit.(json.Number)
		if !ok {
			return fmt.Errorf("%w: int default must be a number", errs.ErrSchema)
		}
		v, err := num.Int64()
		if err != nil || v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("%w: int default %s is not a 32-bit integer", errs.ErrSchema, num)
		}
	case Long:
		num, ok := lit.(json.Number)
		if !ok {
			return fmt.Errorf("%w: long default must be a number", errs.ErrSchema)
		}
		if _, err := num.Int64(); err != nil {
			return fmt.Errorf("%w: long default %s is not a 64-bit integer", errs.ErrSchema, num)
		}
	case Float, Double:
		num, ok := lit.(json.Number)
		if !ok {
			return fmt.Errorf("%w: %s default must be a number", errs.ErrSchema, n.kind)
		}
		if _, err := num.Float64(); err != nil {
			return fmt.Errorf("%w: %s default %s is not a valid number", errs.ErrSchema, n.kind, num)
		}
	case Bytes:
		s, ok := lit.(string)
		if !ok {
			return fmt.Errorf("%w: bytes default must be a string of byte values", errs.ErrSchema)
		}
		if !allBytes(s) {
			return fmt.Errorf("%w: bytes default contains code points above 255", errs.ErrSchema)
		}
	case String:
		if _, ok := lit.(string); !ok {
			return fmt.Errorf("%w: string default must be a string", errs.ErrSchema)
		}
	case Fixed:
		s, ok := lit.(string)
		if !ok {
			return fmt.Errorf("%w: fixed default must be a string of byte values", errs.ErrSchema)
		}
		if !allBytes(s) {
			return fmt.Errorf("%w: fixed default contains code points above 255", errs.ErrSchema)
		}
		if utf8.RuneCountInString(s) != n.size {
			return fmt.Errorf("%w: fixed default has %d bytes, schema declares %d", errs.ErrSchema, utf8.RuneCountInString(s), n.size)
		}
	case Enum:
		s, ok := lit.(string)
		if !ok {
			return fmt.Errorf("%w: enum default must be a string", errs.ErrSchema)
		}
		if _, ok := n.symtab[s]; !ok {
			return fmt.Errorf("%w: enum default %q is not a declared symbol", errs.ErrSchema, s)
		}
	case Array:
		list, ok := lit.([]any)
		if !ok {
			return fmt.Errorf("%w: array default must be a JSON array", errs.ErrSchema)
		}
		for _, item := range list {
			if err := p.checkDefault(item, n.elem); err != nil {
				return err
			}
		}
	case Map:
		m, ok := lit.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: map default must be a JSON object", errs.ErrSchema)
		}
		for _, v := range m {
			if err := p.checkDefault(v, n.elem); err != nil {
				return err
			}
		}
	case Union:
		return p.checkDefault(lit, n.branches[0])
	case Record:
		m, ok := lit.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: record default must be a JSON object", errs.ErrSchema)
		}
		for key := range m {
			if _, ok := n.fieldIdx[key]; !ok {
				return fmt.Errorf("%w: record default has unknown field %q", errs.ErrSchema, key)
			}
		}
		for _, f := range n.fields {
			if v, ok := m[f.name]; ok {
				if err := p.checkDefault(v, f.schema); err != nil {
					return err
				}
			} else if !f.hasDefault {
				return fmt.Errorf("%w: record default missing field %q which has no default of its own", errs.ErrSchema, f.name)
			}
		}
	}

	return nil
}

// allBytes reports whether every code point of s is a byte value (0-255).
// Bytes and fixed defaults encode raw bytes this way in schema JSON.
func allBytes(s string) bool {
	for _, r := range s {
		if r > 0xff {
			return false
		}
	}

	return true
}

// validName reports whether s matches the name grammar: a leading letter or
// underscore followed by letters, digits or underscores.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

// validNamespace reports whether every dot-separated segment of s is a valid
// name. The empty namespace is valid and means "no namespace".
func validNamespace(s string) bool {
	if s == "" {
		return true
	}
	for _, seg := range strings.Split(s, ".") {
		if !validName(seg) {
			return false
		}
	}

	return true
}

// qualifyRef turns a type reference into a fullname: dotted references are
// already qualified, unqualified ones resolve against the enclosing namespace.
func qualifyRef(name, space string) (string, error) {
	if strings.ContainsRune(name, '.') {
		if !validNamespace(name) {
			return "", fmt.Errorf("%w: invalid type reference %q", errs.ErrSchema, name)
		}

		return name, nil
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: invalid type reference %q", errs.ErrSchema, name)
	}
	if space == "" {
		return name, nil
	}

	return space + "." + name, nil
}

package schema

import (
	"strconv"
	"strings"
)

// canonical renders the parsing canonical form of the subgraph rooted at s:
// attributes in the order name, type, fields/symbols/items/values/size,
// defaults and unknown attributes stripped, names fully qualified. The first
// occurrence of a named type carries its full definition; every later
// occurrence collapses to the quoted fullname, which also terminates
// recursive type cycles.
func (s Schema) canonical() string {
	var sb strings.Builder
	writeCanonical(&sb, s.doc, s.idx, make(map[string]bool))

	return sb.String()
}

func writeCanonical(sb *strings.Builder, doc *document, idx int32, seen map[string]bool) {
	n := doc.nodeAt(idx)

	switch n.kind {
	case Null, Boolean, Int, Long, Float, Double, Bytes, String:
		quote(sb, n.kind.String())
	case Fixed:
		full := n.name.fullname()
		if seen[full] {
			quote(sb, full)
			return
		}
		seen[full] = true
		sb.WriteString(`{"name":`)
		quote(sb, full)
		sb.WriteString(`,"type":"fixed","size":`)
		sb.WriteString(strconv.Itoa(n.size))
		sb.WriteByte('}')
	case Enum:
		full := n.name.fullname()
		if seen[full] {
			quote(sb, full)
			return
		}
		seen[full] = true
		sb.WriteString(`{"name":`)
		quote(sb, full)
		sb.WriteString(`,"type":"enum","symbols":[`)
		for i, sym := range n.symbols {
			if i > 0 {
				sb.WriteByte(',')
			}
			quote(sb, sym)
		}
		sb.WriteString(`]}`)
	case Record:
		full := n.name.fullname()
		if seen[full] {
			quote(sb, full)
			return
		}
		seen[full] = true
		sb.WriteString(`{"name":`)
		quote(sb, full)
		sb.WriteString(`,"type":"record","fields":[`)
		for i, f := range n.fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(`{"name":`)
			quote(sb, f.name)
			sb.WriteString(`,"type":`)
			writeCanonical(sb, doc, f.schema, seen)
			sb.WriteByte('}')
		}
		sb.WriteString(`]}`)
	case Array:
		sb.WriteString(`{"type":"array","items":`)
		writeCanonical(sb, doc, n.elem, seen)
		sb.WriteByte('}')
	case Map:
		sb.WriteString(`{"type":"map","values":`)
		writeCanonical(sb, doc, n.elem, seen)
		sb.WriteByte('}')
	case Union:
		sb.WriteByte('[')
		for i, b := range n.branches {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, doc, b, seen)
		}
		sb.WriteByte(']')
	}
}

// quote writes s as a JSON string. Names and symbols are restricted to
// [A-Za-z0-9_.] at parse time, so no escaping is ever required.
func quote(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	sb.WriteString(s)
	sb.WriteByte('"')
}

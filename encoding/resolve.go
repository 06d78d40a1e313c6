package encoding

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/value"
)

// Resolver decodes data written with one schema into values shaped by a
// different reader schema.
//
// Construction walks both schemas pairwise and compiles a decode plan, so
// incompatibilities surface once, up front, rather than on every datum. The
// resolution rules:
//
//   - Record fields match by name, not position. Writer-only fields are
//     decoded and discarded; reader-only fields are filled from their
//     defaults, and a reader-only field without a default fails the plan.
//   - Numeric widening follows int -> long/float/double, long -> float/double,
//     float -> double. Narrowing is a mismatch.
//   - Bytes and string interchange freely; the payload is identical.
//   - Enums match by fullname and remap symbols by name. A writer symbol
//     missing from the reader enum fails when a datum carries it.
//   - Named types (record, enum, fixed) must keep their fullnames.
//   - Writer union branches each resolve against the reader schema; a branch
//     that cannot resolve fails only when a datum takes it. A non-union
//     writer resolving into a reader union picks the branch matching the
//     writer's kind and name, or the first branch it promotes into.
//
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	writer schema.Schema
	reader schema.Schema
	root   *step
}

// NewResolver compiles a decode plan from the schema the data was written
// with to the schema the caller wants values shaped by.
//
// Plans are cached per (writer, reader) fingerprint pair and verified
// against the canonical texts on every hit, so repeated construction for
// the same pair is cheap.
//
// Parameters:
//   - writer: Schema the data was encoded with
//   - reader: Schema decoded values should be shaped by
//
// Returns:
//   - *Resolver: Compiled resolver
//   - error: errs.ErrSchemaMismatch when the schemas cannot be reconciled
func NewResolver(writer, reader schema.Schema) (*Resolver, error) {
	if writer.Kind() == schema.Invalid || reader.Kind() == schema.Invalid {
		return nil, fmt.Errorf("%w: resolver requires parsed schemas", errs.ErrSchema)
	}
	root, err := planFor(writer, reader)
	if err != nil {
		return nil, err
	}

	return &Resolver{writer: writer, reader: reader, root: root}, nil
}

// WriterSchema returns the schema the data was encoded with.
func (r *Resolver) WriterSchema() schema.Schema { return r.writer }

// ReaderSchema returns the schema decoded values are shaped by.
func (r *Resolver) ReaderSchema() schema.Schema { return r.reader }

// Decode reads one datum laid out by the writer schema from src and returns
// it shaped by the reader schema. Like Decode, it never returns io.EOF: a
// datum must be present.
func (r *Resolver) Decode(src Source) (value.Value, error) {
	v, err := r.root.decode(src)
	if err != nil && errors.Is(err, io.EOF) && !errors.Is(err, errs.ErrUnexpectedEOF) {
		return value.Value{}, fmt.Errorf("%w: input ended before datum completed", errs.ErrUnexpectedEOF)
	}

	return v, err
}

type resolveOp uint8

const (
	opDirect    resolveOp = iota // writer and reader shapes are identical
	opWiden                      // primitive promotion, including bytes<->string
	opEnum                       // symbol remap by name
	opArray                      // per-item resolution
	opMap                        // per-value resolution
	opRecord                     // field match by name
	opFromUnion                  // writer union: per-branch resolution
	opIntoUnion                  // non-union writer into a reader union branch
)

// step is one node of a compiled decode plan. Steps form a graph, not a
// tree: mutually recursive records resolve to steps that point back at
// their ancestors.
type step struct {
	op     resolveOp
	writer schema.Schema
	reader schema.Schema

	sub      *step         // array items, map values, intoUnion inner
	fields   []fieldStep   // record: writer fields in writer order
	tail     []defaultStep // record: reader-only fields filled from defaults
	branches []branchStep  // fromUnion: one per writer branch
	symbols  []int32       // enum: writer index -> reader index, -1 if absent
	branch   int32         // intoUnion: chosen reader branch
}

type fieldStep struct {
	pos  int32         // reader field position, -1 to discard
	sub  *step         // resolution when kept
	skip schema.Schema // writer field schema when discarded
}

type defaultStep struct {
	pos     int32
	name    string
	schema  schema.Schema
	literal any
}

type branchStep struct {
	sub *step
	err error
}

type planKey struct {
	writer uint64
	reader uint64
}

type cachedPlan struct {
	writerText string
	readerText string
	root       *step
}

// planCache shares compiled plans between resolvers. Keys are canonical-form
// fingerprints; entries keep the canonical texts so a hash collision lands
// in the slice instead of selecting the wrong plan.
var planCache = struct {
	mu sync.RWMutex
	m  map[planKey][]*cachedPlan
}{m: make(map[planKey][]*cachedPlan)}

func planFor(writer, reader schema.Schema) (*step, error) {
	key := planKey{writer: writer.Fingerprint(), reader: reader.Fingerprint()}
	wText, rText := writer.String(), reader.String()

	planCache.mu.RLock()
	for _, c := range planCache.m[key] {
		if c.writerText == wText && c.readerText == rText {
			planCache.mu.RUnlock()

			return c.root, nil
		}
	}
	planCache.mu.RUnlock()

	b := planBuilder{seen: make(map[planPair]*step)}
	root, err := b.resolve(writer, reader)
	if err != nil {
		return nil, err
	}

	planCache.mu.Lock()
	defer planCache.mu.Unlock()
	for _, c := range planCache.m[key] {
		if c.writerText == wText && c.readerText == rText {
			return c.root, nil
		}
	}
	planCache.m[key] = append(planCache.m[key], &cachedPlan{writerText: wText, readerText: rText, root: root})

	return root, nil
}

type planPair struct {
	writer schema.Schema
	reader schema.Schema
}

type planBuilder struct {
	seen map[planPair]*step
}

// scoped returns a builder whose memo additions stay local. Resolution
// attempts that are allowed to fail run scoped so a failed attempt cannot
// leave a half-built record step visible to the rest of the plan.
func (b *planBuilder) scoped() *planBuilder {
	return &planBuilder{seen: maps.Clone(b.seen)}
}

func (b *planBuilder) resolve(w, r schema.Schema) (*step, error) {
	wk, rk := w.Kind(), r.Kind()

	// Canonical text equality is structural equality, so identical subtrees
	// decode directly against the reader schema.
	if wk == rk && w.String() == r.String() {
		return &step{op: opDirect, writer: w, reader: r}, nil
	}

	if wk == schema.Union {
		return b.resolveFromUnion(w, r)
	}
	if rk == schema.Union {
		return b.resolveIntoUnion(w, r)
	}

	if wk == rk {
		switch wk {
		case schema.Array:
			sub, err := b.resolve(w.Items(), r.Items())
			if err != nil {
				return nil, fmt.Errorf("array items: %w", err)
			}

			return &step{op: opArray, writer: w, reader: r, sub: sub}, nil

		case schema.Map:
			sub, err := b.resolve(w.Values(), r.Values())
			if err != nil {
				return nil, fmt.Errorf("map values: %w", err)
			}

			return &step{op: opMap, writer: w, reader: r, sub: sub}, nil

		case schema.Record:
			return b.resolveRecord(w, r)

		case schema.Enum:
			return b.resolveEnum(w, r)
		}
		// Same-kind pairs that are not structurally identical and carry no
		// children: fixed with a different name or size.
		return nil, mismatch(w, r)
	}

	if widensTo(wk, rk) {
		return &step{op: opWiden, writer: w, reader: r}, nil
	}

	return nil, mismatch(w, r)
}

func (b *planBuilder) resolveFromUnion(w, r schema.Schema) (*step, error) {
	st := &step{op: opFromUnion, writer: w, reader: r}
	st.branches = make([]branchStep, w.NumBranches())
	resolvable := false
	for i := range st.branches {
		sub, err := b.scoped().resolve(w.Branch(i), r)
		if err != nil {
			// Fails only if a datum takes this branch.
			st.branches[i] = branchStep{err: err}
			continue
		}
		st.branches[i] = branchStep{sub: sub}
		resolvable = true
	}
	if !resolvable {
		return nil, fmt.Errorf("%w: no writer union branch resolves into %s",
			errs.ErrSchemaMismatch, describe(r))
	}

	return st, nil
}

func (b *planBuilder) resolveIntoUnion(w, r schema.Schema) (*step, error) {
	if i := exactBranch(w, r); i >= 0 {
		if sub, err := b.scoped().resolve(w, r.Branch(i)); err == nil {
			return &step{op: opIntoUnion, writer: w, reader: r, branch: int32(i), sub: sub}, nil //nolint:gosec
		}
	}
	for i := range r.NumBranches() {
		sub, err := b.scoped().resolve(w, r.Branch(i))
		if err != nil {
			continue
		}

		return &step{op: opIntoUnion, writer: w, reader: r, branch: int32(i), sub: sub}, nil //nolint:gosec
	}

	return nil, fmt.Errorf("%w: %s does not resolve into any reader union branch",
		errs.ErrSchemaMismatch, describe(w))
}

// exactBranch returns the index of the reader union branch matching the
// writer's kind, and for named kinds its fullname, or -1 when none does.
// Union composition rules guarantee at most one candidate exists.
func exactBranch(w, r schema.Schema) int {
	wk := w.Kind()
	for i := range r.NumBranches() {
		br := r.Branch(i)
		if br.Kind() != wk {
			continue
		}
		switch wk {
		case schema.Record, schema.Enum, schema.Fixed:
			if br.Fullname() == w.Fullname() {
				return i
			}
		default:
			return i
		}
	}

	return -1
}

func (b *planBuilder) resolveRecord(w, r schema.Schema) (*step, error) {
	if w.Fullname() != r.Fullname() {
		return nil, fmt.Errorf("%w: record name %q does not match %q",
			errs.ErrSchemaMismatch, w.Fullname(), r.Fullname())
	}

	// Recursive records resolve to the step already under construction.
	pair := planPair{writer: w, reader: r}
	if st, ok := b.seen[pair]; ok {
		return st, nil
	}
	st := &step{op: opRecord, writer: w, reader: r}
	b.seen[pair] = st

	st.fields = make([]fieldStep, w.NumFields())
	taken := make([]bool, r.NumFields())
	for i := range w.NumFields() {
		wf := w.Field(i)
		rf, ok := r.FieldByName(wf.Name())
		if !ok {
			st.fields[i] = fieldStep{pos: -1, skip: wf.Schema()}
			continue
		}
		sub, err := b.resolve(wf.Schema(), rf.Schema())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", wf.Name(), err)
		}
		st.fields[i] = fieldStep{pos: int32(rf.Position()), sub: sub} //nolint:gosec
		taken[rf.Position()] = true
	}

	for i := range r.NumFields() {
		if taken[i] {
			continue
		}
		rf := r.Field(i)
		if !rf.HasDefault() {
			return nil, fmt.Errorf("%w: reader field %q has no default and no writer counterpart",
				errs.ErrSchemaMismatch, rf.Name())
		}
		// Validated here; decode materializes a fresh value per record.
		if _, err := value.FromLiteral(rf.Schema(), rf.Default()); err != nil {
			return nil, fmt.Errorf("reader field %q default: %w", rf.Name(), err)
		}
		st.tail = append(st.tail, defaultStep{pos: int32(i), name: rf.Name(), schema: rf.Schema(), literal: rf.Default()}) //nolint:gosec
	}

	return st, nil
}

func (b *planBuilder) resolveEnum(w, r schema.Schema) (*step, error) {
	if w.Fullname() != r.Fullname() {
		return nil, fmt.Errorf("%w: enum name %q does not match %q",
			errs.ErrSchemaMismatch, w.Fullname(), r.Fullname())
	}
	symbols := make([]int32, len(w.Symbols()))
	for i, sym := range w.Symbols() {
		ri, ok := r.SymbolIndex(sym)
		if !ok {
			symbols[i] = -1
			continue
		}
		symbols[i] = int32(ri) //nolint:gosec
	}

	return &step{op: opEnum, writer: w, reader: r, symbols: symbols}, nil
}

func widensTo(wk, rk schema.Kind) bool {
	switch wk {
	case schema.Int:
		return rk == schema.Long || rk == schema.Float || rk == schema.Double
	case schema.Long:
		return rk == schema.Float || rk == schema.Double
	case schema.Float:
		return rk == schema.Double
	case schema.Bytes:
		return rk == schema.String
	case schema.String:
		return rk == schema.Bytes
	default:
		return false
	}
}

func describe(s schema.Schema) string {
	switch s.Kind() {
	case schema.Record, schema.Enum, schema.Fixed:
		return fmt.Sprintf("%s %s", s.Kind(), s.Fullname())
	default:
		return s.Kind().String()
	}
}

func mismatch(w, r schema.Schema) error {
	return fmt.Errorf("%w: cannot read %s as %s", errs.ErrSchemaMismatch, describe(w), describe(r))
}

func (st *step) decode(src Source) (value.Value, error) {
	switch st.op {
	case opDirect:
		return decodeValue(src, st.reader)

	case opWiden:
		return decodeWiden(src, st.writer.Kind(), st.reader.Kind())

	case opEnum:
		return st.decodeEnum(src)

	case opArray:
		items := []value.Value{}
		for {
			count, err := readBlockCount(src)
			if err != nil {
				return value.Value{}, err
			}
			if count == 0 {
				break
			}
			if cap(items) == 0 {
				items = make([]value.Value, 0, int(min(count, blockPrealloc)))
			}
			for range count {
				item, err := st.sub.decode(src)
				if err != nil {
					return value.Value{}, fmt.Errorf("array item %d: %w", len(items), err)
				}
				items = append(items, item)
			}
		}

		return value.Array(items...), nil

	case opMap:
		entries := map[string]value.Value{}
		for {
			count, err := readBlockCount(src)
			if err != nil {
				return value.Value{}, err
			}
			if count == 0 {
				break
			}
			for range count {
				key, err := ReadString(src)
				if err != nil {
					return value.Value{}, err
				}
				item, err := st.sub.decode(src)
				if err != nil {
					return value.Value{}, fmt.Errorf("map entry %q: %w", key, err)
				}
				entries[key] = item
			}
		}

		return value.MapOf(entries), nil

	case opRecord:
		return st.decodeRecord(src)

	case opFromUnion:
		branch, err := ReadLong(src)
		if err != nil {
			return value.Value{}, err
		}
		if branch < 0 || branch >= int64(len(st.branches)) {
			return value.Value{}, fmt.Errorf("%w: union branch index %d out of range",
				errs.ErrCorruptFile, branch)
		}
		bs := st.branches[branch]
		if bs.err != nil {
			return value.Value{}, bs.err
		}

		return bs.sub.decode(src)

	case opIntoUnion:
		inner, err := st.sub.decode(src)
		if err != nil {
			return value.Value{}, err
		}

		return value.Union(int(st.branch), inner), nil

	default:
		return value.Value{}, fmt.Errorf("%w: unknown resolution step", errs.ErrSchemaMismatch)
	}
}

func (st *step) decodeEnum(src Source) (value.Value, error) {
	idx, err := ReadInt(src)
	if err != nil {
		return value.Value{}, err
	}
	if idx < 0 || int(idx) >= len(st.symbols) {
		return value.Value{}, fmt.Errorf("%w: enum %s index %d out of range",
			errs.ErrCorruptFile, st.writer.Fullname(), idx)
	}
	ri := st.symbols[idx]
	if ri < 0 {
		return value.Value{}, fmt.Errorf("%w: enum symbol %q is not in reader enum %s",
			errs.ErrSchemaMismatch, st.writer.Symbols()[idx], st.reader.Fullname())
	}

	return value.Enum(int(ri), st.reader.Symbols()[ri]), nil
}

func (st *step) decodeRecord(src Source) (value.Value, error) {
	fields := make([]value.Field, st.reader.NumFields())
	for _, fs := range st.fields {
		if fs.pos < 0 {
			if err := Skip(src, fs.skip); err != nil {
				return value.Value{}, err
			}
			continue
		}
		rf := st.reader.Field(int(fs.pos))
		fv, err := fs.sub.decode(src)
		if err != nil {
			return value.Value{}, fmt.Errorf("field %q: %w", rf.Name(), err)
		}
		fields[fs.pos] = value.NewField(rf.Name(), fv)
	}
	for _, ds := range st.tail {
		fv, err := value.FromLiteral(ds.schema, ds.literal)
		if err != nil {
			return value.Value{}, fmt.Errorf("field %q default: %w", ds.name, err)
		}
		fields[ds.pos] = value.NewField(ds.name, fv)
	}

	return value.Record(fields...), nil
}

func decodeWiden(src Source, wk, rk schema.Kind) (value.Value, error) {
	switch wk {
	case schema.Int:
		n, err := ReadInt(src)
		if err != nil {
			return value.Value{}, err
		}
		switch rk {
		case schema.Long:
			return value.Long(int64(n)), nil
		case schema.Float:
			return value.Float(float32(n)), nil
		case schema.Double:
			return value.Double(float64(n)), nil
		}

	case schema.Long:
		n, err := ReadLong(src)
		if err != nil {
			return value.Value{}, err
		}
		switch rk {
		case schema.Float:
			return value.Float(float32(n)), nil
		case schema.Double:
			return value.Double(float64(n)), nil
		}

	case schema.Float:
		f, err := ReadFloat(src)
		if err != nil {
			return value.Value{}, err
		}
		if rk == schema.Double {
			return value.Double(float64(f)), nil
		}

	case schema.Bytes:
		data, err := ReadBytes(src)
		if err != nil {
			return value.Value{}, err
		}
		if rk == schema.String {
			return value.String(string(data)), nil
		}

	case schema.String:
		data, err := ReadBytes(src)
		if err != nil {
			return value.Value{}, err
		}
		if rk == schema.Bytes {
			return value.Bytes(data), nil
		}
	}

	return value.Value{}, fmt.Errorf("%w: cannot widen %s to %s", errs.ErrSchemaMismatch, wk, rk)
}

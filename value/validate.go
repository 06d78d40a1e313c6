package value

import (
	"fmt"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/schema"
)

// Validate checks that v's shape matches s exactly: same kind at every level,
// fixed lengths equal to the declared size, enum indexes inside the symbol
// list, union branches in range with a matching inner value, and record
// fields in declared order. No numeric widening is applied; that is the
// resolver's job, not the validator's.
//
// Parameters:
//   - v: the value to check
//   - s: the schema the value claims to conform to
//
// Returns:
//   - error: errs.ErrSchemaMismatch describing the first disagreement, or nil
func Validate(v Value, s schema.Schema) error {
	kind := s.Kind()

	switch kind {
	case schema.Null, schema.Boolean, schema.Int, schema.Long,
		schema.Float, schema.Double, schema.Bytes, schema.String:
		if v.Kind() != kind {
			return fmt.Errorf("%w: expected %s, got %s", errs.ErrSchemaMismatch, kind, v.Kind())
		}

	case schema.Fixed:
		if v.Kind() != schema.Fixed {
			return fmt.Errorf("%w: expected fixed %s, got %s", errs.ErrSchemaMismatch, s.Fullname(), v.Kind())
		}
		if len(v.raw) != s.Size() {
			return fmt.Errorf("%w: fixed %s wants %d bytes, got %d", errs.ErrSchemaMismatch, s.Fullname(), s.Size(), len(v.raw))
		}

	case schema.Enum:
		if v.Kind() != schema.Enum {
			return fmt.Errorf("%w: expected enum %s, got %s", errs.ErrSchemaMismatch, s.Fullname(), v.Kind())
		}
		symbols := s.Symbols()
		if v.i < 0 || v.i >= int64(len(symbols)) {
			return fmt.Errorf("%w: enum %s index %d out of range (%d symbols)", errs.ErrSchemaMismatch, s.Fullname(), v.i, len(symbols))
		}
		if v.s != "" && v.s != symbols[v.i] {
			return fmt.Errorf("%w: enum %s index %d is %q, value claims %q", errs.ErrSchemaMismatch, s.Fullname(), v.i, symbols[v.i], v.s)
		}

	case schema.Array:
		if v.Kind() != schema.Array {
			return fmt.Errorf("%w: expected array, got %s", errs.ErrSchemaMismatch, v.Kind())
		}
		items := s.Items()
		for i, item := range v.vals {
			if err := Validate(item, items); err != nil {
				return fmt.Errorf("array item %d: %w", i, err)
			}
		}

	case schema.Map:
		if v.Kind() != schema.Map {
			return fmt.Errorf("%w: expected map, got %s", errs.ErrSchemaMismatch, v.Kind())
		}
		values := s.Values()
		for k, mv := range v.m {
			if err := Validate(mv, values); err != nil {
				return fmt.Errorf("map entry %q: %w", k, err)
			}
		}

	case schema.Union:
		if v.Kind() != schema.Union {
			return fmt.Errorf("%w: expected union, got %s", errs.ErrSchemaMismatch, v.Kind())
		}
		if v.i < 0 || v.i >= int64(s.NumBranches()) {
			return fmt.Errorf("%w: union branch %d out of range (%d branches)", errs.ErrSchemaMismatch, v.i, s.NumBranches())
		}
		if err := Validate(*v.pv, s.Branch(int(v.i))); err != nil {
			return fmt.Errorf("union branch %d: %w", v.i, err)
		}

	case schema.Record:
		if v.Kind() != schema.Record {
			return fmt.Errorf("%w: expected record %s, got %s", errs.ErrSchemaMismatch, s.Fullname(), v.Kind())
		}
		if len(v.flds) != s.NumFields() {
			return fmt.Errorf("%w: record %s wants %d fields, got %d", errs.ErrSchemaMismatch, s.Fullname(), s.NumFields(), len(v.flds))
		}
		for i, fv := range v.flds {
			f := s.Field(i)
			if fv.Name != f.Name() {
				return fmt.Errorf("%w: record %s field %d is %q, value has %q", errs.ErrSchemaMismatch, s.Fullname(), i, f.Name(), fv.Name)
			}
			if err := Validate(fv.Value, f.Schema()); err != nil {
				return fmt.Errorf("field %q: %w", fv.Name, err)
			}
		}

	default:
		return fmt.Errorf("%w: invalid schema", errs.ErrSchemaMismatch)
	}

	return nil
}

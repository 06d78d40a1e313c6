package encoding

import (
	"fmt"
	"io"

	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/schema"
)

// Skip advances r past one datum shaped by s without materializing it.
//
// Length-carrying shapes are skipped by their byte counts, and array or map
// blocks written in the negative-count form are jumped over whole using the
// embedded block byte size. Skip is how a resolving decode discards writer
// fields the reader schema no longer carries.
func Skip(r Source, s schema.Schema) error {
	switch kind := s.Kind(); kind {
	case schema.Null:
		return nil

	case schema.Boolean:
		return discard(r, 1)

	case schema.Int, schema.Long, schema.Enum:
		_, err := ReadLong(r)

		return err

	case schema.Float:
		return discard(r, 4)

	case schema.Double:
		return discard(r, 8)

	case schema.Bytes, schema.String:
		n, err := ReadLong(r)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: bytes length %d", errs.ErrNegativeLength, n)
		}

		return discard(r, n)

	case schema.Fixed:
		return discard(r, int64(s.Size()))

	case schema.Array:
		return skipBlocks(r, func() error { return Skip(r, s.Items()) })

	case schema.Map:
		return skipBlocks(r, func() error {
			if err := skipLengthPrefixed(r); err != nil {
				return err
			}

			return Skip(r, s.Values())
		})

	case schema.Union:
		branch, err := ReadLong(r)
		if err != nil {
			return err
		}
		if branch < 0 || branch >= int64(s.NumBranches()) {
			return fmt.Errorf("%w: union branch index %d out of range", errs.ErrCorruptFile, branch)
		}

		return Skip(r, s.Branch(int(branch)))

	case schema.Record:
		for i := range s.NumFields() {
			if err := Skip(r, s.Field(i).Schema()); err != nil {
				return err
			}
		}

		return nil

	default:
		return fmt.Errorf("%w: cannot skip schema kind %s", errs.ErrSchemaMismatch, kind)
	}
}

// skipBlocks walks an array or map block sequence, jumping blocks that carry
// a byte size and falling back to per-item skips otherwise.
func skipBlocks(r Source, skipItem func() error) error {
	for {
		count, err := ReadLong(r)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if count < 0 {
			size, err := ReadLong(r)
			if err != nil {
				return err
			}
			if size < 0 {
				return fmt.Errorf("%w: block byte size %d", errs.ErrNegativeLength, size)
			}
			if err := discard(r, size); err != nil {
				return err
			}

			continue
		}
		for range count {
			if err := skipItem(); err != nil {
				return err
			}
		}
	}
}

func skipLengthPrefixed(r Source) error {
	n, err := ReadLong(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: bytes length %d", errs.ErrNegativeLength, n)
	}

	return discard(r, n)
}

// discard consumes exactly n bytes from r. Skips always run inside a datum,
// so any end of input here is errs.ErrUnexpectedEOF.
func discard(r Source, n int64) error {
	if n == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return eofErr(err)
	}

	return nil
}

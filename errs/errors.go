// Package errs defines the sentinel errors shared by all rebo packages.
//
// Errors returned by rebo are wrapped with fmt.Errorf("%w: ...") so callers
// can classify failures with errors.Is while still receiving contextual
// detail in the message.
package errs

import "errors"

var (
	// ErrSchema indicates malformed or unresolvable schema text. A parse
	// that fails with ErrSchema is never partially applied.
	ErrSchema = errors.New("invalid schema")

	// ErrSchemaMismatch indicates a value whose runtime shape disagrees with
	// the schema it is being built, encoded, or resolved against. Only the
	// offending operation is rejected.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrMissingField indicates a record builder was finalized with a field
	// that has neither an explicit value nor a schema default.
	ErrMissingField = errors.New("missing record field")

	// ErrUnsupportedCodec indicates a compression codec name that is not
	// registered, either at writer configuration or in a container header.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrCorruptFile indicates container-level corruption: bad magic,
	// malformed header metadata, or a sync marker mismatch. After a sync
	// mismatch the stream position is untrustworthy and reading stops.
	ErrCorruptFile = errors.New("corrupt container file")

	// ErrUnexpectedEOF indicates the input ended in the middle of a datum or
	// block. End of input at a block boundary is a clean end, not an error.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrIntegerOverflow indicates a variable-length integer that exceeds 64
	// bits, or a value outside the 32-bit range where an int is required.
	ErrIntegerOverflow = errors.New("integer overflow")

	// ErrNegativeLength indicates a negative length prefix for bytes, string,
	// or block payloads. Lengths on the wire are never negative.
	ErrNegativeLength = errors.New("negative length")

	// ErrWriterClosed indicates an append or flush on a closed Writer.
	ErrWriterClosed = errors.New("writer is closed")
)

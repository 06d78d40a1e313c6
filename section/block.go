package section

import (
	"fmt"
	"io"

	"github.com/arloliu/rebo/encoding"
	"github.com/arloliu/rebo/errs"
)

// Block is one decoded block frame: how many records the payload holds and
// the payload bytes as stored, still compressed with the file's codec.
type Block struct {
	Count int64
	Body  []byte
}

// WriteBlock frames a block onto w: record count varint, payload byte
// length varint, the payload, then the file's sync marker.
//
// Sink errors are returned as-is; retry policy belongs to the sink.
func WriteBlock(w io.Writer, count int64, body []byte, sync SyncMarker) error {
	var hdr [2 * encoding.MaxVarintLen]byte

	frame := encoding.AppendLong(hdr[:0], count)
	frame = encoding.AppendLong(frame, int64(len(body)))

	if _, err := w.Write(frame); err != nil {
		return err
	}

	if _, err := w.Write(body); err != nil {
		return err
	}

	_, err := w.Write(sync[:])

	return err
}

// ReadBlock reads one block frame from src and verifies its sync marker
// against the file's.
//
// Parameters:
//   - src: Byte source positioned at a block boundary
//   - sync: The file's sync marker from the header
//
// Returns:
//   - Block: Record count and raw payload
//   - error: io.EOF untouched when the input ends cleanly at the boundary,
//     errs.ErrUnexpectedEOF when it ends inside the frame, and
//     errs.ErrCorruptFile for a negative count or a sync marker mismatch
func ReadBlock(src encoding.Source, sync SyncMarker) (Block, error) {
	count, err := encoding.ReadLong(src)
	if err != nil {
		// A clean end of input lands exactly here, before a would-be
		// block's first byte.
		return Block{}, err
	}

	if count < 0 {
		return Block{}, fmt.Errorf("%w: negative record count %d in block frame", errs.ErrCorruptFile, count)
	}

	body, err := encoding.ReadBytes(src)
	if err != nil {
		return Block{}, eofErr(err, "a block payload")
	}

	var marker SyncMarker
	if _, err := io.ReadFull(src, marker[:]); err != nil {
		return Block{}, eofErr(err, "a block sync marker")
	}

	if marker != sync {
		return Block{}, fmt.Errorf("%w: sync marker mismatch after block", errs.ErrCorruptFile)
	}

	return Block{Count: count, Body: body}, nil
}

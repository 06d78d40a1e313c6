package section

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/arloliu/rebo/encoding"
	"github.com/arloliu/rebo/errs"
)

// Header is the once-per-file preamble of a container: the magic bytes, a
// metadata map carrying at least the writer schema text and the codec name,
// and the file's sync marker.
//
// A Header is created when a Writer opens a file and is immutable
// afterward; Readers parse it once at open time.
type Header struct {
	Meta map[string][]byte
	Sync SyncMarker
}

// SchemaText returns the embedded writer schema text.
func (h *Header) SchemaText() (string, bool) {
	v, ok := h.Meta[MetaSchemaKey]

	return string(v), ok
}

// CodecName returns the name of the codec the file's blocks are compressed
// with.
func (h *Header) CodecName() (string, bool) {
	v, ok := h.Meta[MetaCodecKey]

	return string(v), ok
}

// Bytes serializes the header.
//
// Metadata pairs are emitted in sorted key order so the same header always
// produces the same bytes.
func (h *Header) Bytes() []byte {
	size := MagicSize + 2*encoding.MaxVarintLen + SyncMarkerSize
	for k, v := range h.Meta {
		size += len(k) + len(v) + 2*encoding.MaxVarintLen
	}

	b := make([]byte, 0, size)
	b = append(b, Magic[:]...)

	if len(h.Meta) > 0 {
		b = encoding.AppendLong(b, int64(len(h.Meta)))
		for _, k := range slices.Sorted(maps.Keys(h.Meta)) {
			b = encoding.AppendString(b, k)
			b = encoding.AppendBytes(b, h.Meta[k])
		}
	}
	b = encoding.AppendLong(b, 0)

	return append(b, h.Sync[:]...)
}

// ReadHeader parses a container header from src.
//
// Parameters:
//   - src: Byte source positioned at the start of the file
//
// Returns:
//   - Header: Parsed header with metadata and sync marker
//   - error: errs.ErrCorruptFile for bad magic or missing required keys,
//     errs.ErrUnexpectedEOF if the input ends inside the header
func ReadHeader(src encoding.Source) (Header, error) {
	var magic [MagicSize]byte
	if _, err := io.ReadFull(src, magic[:]); err != nil {
		return Header{}, eofErr(err, "the container magic")
	}

	if magic != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", errs.ErrCorruptFile, magic[:])
	}

	meta := make(map[string][]byte)
	for {
		count, err := encoding.ReadLong(src)
		if err != nil {
			return Header{}, eofErr(err, "the header metadata")
		}

		if count == 0 {
			break
		}

		// Negative counts carry a byte-size hint for skipping, which a
		// header parse has no use for.
		if count < 0 {
			if count == math.MinInt64 {
				return Header{}, fmt.Errorf("%w: header metadata count %d", errs.ErrCorruptFile, count)
			}
			count = -count
			if _, err := encoding.ReadLong(src); err != nil {
				return Header{}, eofErr(err, "the header metadata")
			}
		}

		for range count {
			key, err := encoding.ReadString(src)
			if err != nil {
				return Header{}, eofErr(err, "a header metadata key")
			}

			val, err := encoding.ReadBytes(src)
			if err != nil {
				return Header{}, eofErr(err, fmt.Sprintf("header metadata %q", key))
			}

			meta[key] = val
		}
	}

	var sync SyncMarker
	if _, err := io.ReadFull(src, sync[:]); err != nil {
		return Header{}, eofErr(err, "the sync marker")
	}

	for _, key := range []string{MetaSchemaKey, MetaCodecKey} {
		if _, ok := meta[key]; !ok {
			return Header{}, fmt.Errorf("%w: header metadata is missing required key %q", errs.ErrCorruptFile, key)
		}
	}

	return Header{Meta: meta, Sync: sync}, nil
}

// eofErr converts end-of-input errors into ErrUnexpectedEOF. Nothing inside
// a header or block frame may end early; the only clean end of a container
// is before a block's record count.
func eofErr(err error, inside string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: input ended inside %s", errs.ErrUnexpectedEOF, inside)
	}

	return err
}

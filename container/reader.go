package container

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/arloliu/rebo/compress"
	"github.com/arloliu/rebo/encoding"
	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/format"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/section"
	"github.com/arloliu/rebo/value"
)

// readerState is the position of the Reader inside the container stream.
type readerState uint8

const (
	// stateAwaitingBlock means the next source byte begins a block frame, or
	// the source ends cleanly.
	stateAwaitingBlock readerState = iota

	// stateDecodingBlock means a decompressed block is in hand with records
	// still to decode.
	stateDecodingBlock

	// stateExhausted means the source ended cleanly at a block boundary.
	stateExhausted

	// stateFailed means an error was latched; iteration is over.
	stateFailed
)

// Reader iterates over the values of a container file.
//
// The header is read at open time; blocks are then read, decompressed, and
// decoded lazily as Next advances. Iteration is forward-only: to restart,
// open a new Reader on a fresh copy of the source.
//
// The zero Value of a decode error is never yielded: after Next returns
// false, Err distinguishes clean exhaustion (nil) from failure. A Reader
// that has failed stays failed; it never resynchronizes by scanning for the
// next sync marker, since skipping bytes could hide data loss.
//
// Note: The Reader is NOT thread-safe. Multiple Readers over independent
// copies of the same source may run concurrently.
type Reader struct {
	src       encoding.Source
	header    section.Header
	writer    schema.Schema
	resolver  *encoding.Resolver
	decomp    compress.Decompressor
	codecName format.Codec

	state     readerState
	blockSrc  *bytes.Reader
	remaining int64
	current   value.Value
	err       error
}

// NewReader opens a container file and decodes records with the schema
// embedded in its header. No external schema is required.
//
// Parameters:
//   - src: Container byte stream positioned at the magic bytes
//
// Returns:
//   - *Reader: Reader positioned before the first block
//   - error: errs.ErrCorruptFile or errs.ErrUnexpectedEOF for a bad header,
//     errs.ErrSchema if the embedded schema does not parse, or
//     errs.ErrUnsupportedCodec for an unknown codec name
func NewReader(src io.Reader) (*Reader, error) {
	return openReader(src, schema.Schema{}, false)
}

// NewReaderWithSchema opens a container file and decodes records by
// resolving the embedded writer schema against the supplied reader schema:
// record fields match by name, missing reader fields fill from defaults,
// and the promotions and union matching rules apply.
//
// Parameters:
//   - src: Container byte stream positioned at the magic bytes
//   - reader: Schema to decode into
//
// Returns:
//   - *Reader: Reader positioned before the first block
//   - error: a header error as for NewReader, or errs.ErrSchemaMismatch when
//     the two schemas cannot be resolved
func NewReaderWithSchema(src io.Reader, reader schema.Schema) (*Reader, error) {
	return openReader(src, reader, true)
}

func openReader(r io.Reader, readerSchema schema.Schema, resolve bool) (*Reader, error) {
	src := asSource(r)

	header, err := section.ReadHeader(src)
	if err != nil {
		return nil, err
	}

	// ReadHeader guarantees both required keys are present.
	text, _ := header.SchemaText()
	writer, err := schema.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("embedded schema: %w", err)
	}

	name, _ := header.CodecName()
	codec, err := compress.Get(format.Codec(name))
	if err != nil {
		return nil, err
	}

	rd := &Reader{
		src:       src,
		header:    header,
		writer:    writer,
		decomp:    codec,
		codecName: format.Codec(name),
		blockSrc:  bytes.NewReader(nil),
		state:     stateAwaitingBlock,
	}
	if resolve {
		rd.resolver, err = encoding.NewResolver(writer, readerSchema)
		if err != nil {
			return nil, err
		}
	}

	return rd, nil
}

// asSource adapts an arbitrary io.Reader to the decoder's byte source.
func asSource(r io.Reader) encoding.Source {
	if src, ok := r.(encoding.Source); ok {
		return src
	}

	return bufio.NewReader(r)
}

// Next advances to the next record, reading and decompressing block frames
// as needed. It returns false when the file is exhausted or an error is
// latched; check Err to tell the two apart.
func (r *Reader) Next() bool {
	for {
		switch r.state {
		case stateAwaitingBlock:
			r.openBlock()
		case stateDecodingBlock:
			if r.remaining == 0 {
				r.finishBlock()
				continue
			}

			return r.decodeRecord()
		case stateExhausted, stateFailed:
			return false
		}
	}
}

// openBlock reads one block frame and decompresses its payload. A clean end
// of input on the frame's first byte exhausts the reader; end of input
// anywhere else inside the frame is already classified by section.ReadBlock.
func (r *Reader) openBlock() {
	block, err := section.ReadBlock(r.src, r.header.Sync)
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.state = stateExhausted

			return
		}
		r.fail(err)

		return
	}

	body, err := r.decomp.Decompress(block.Body)
	if err != nil {
		r.fail(fmt.Errorf("%w: decompress block: %v", errs.ErrCorruptFile, err))

		return
	}

	r.blockSrc.Reset(body)
	r.remaining = block.Count
	r.state = stateDecodingBlock
}

// finishBlock closes out a fully decoded block. Payload bytes left over
// after the declared record count mean the count and the payload disagree.
func (r *Reader) finishBlock() {
	if r.blockSrc.Len() > 0 {
		r.fail(fmt.Errorf("%w: block payload has %d bytes after final record", errs.ErrCorruptFile, r.blockSrc.Len()))

		return
	}
	r.state = stateAwaitingBlock
}

// decodeRecord decodes one record from the current block, through the
// resolver when a reader schema was supplied.
func (r *Reader) decodeRecord() bool {
	var (
		v   value.Value
		err error
	)
	if r.resolver != nil {
		v, err = r.resolver.Decode(r.blockSrc)
	} else {
		v, err = encoding.Decode(r.blockSrc, r.writer)
	}
	if err != nil {
		r.fail(err)

		return false
	}

	r.current = v
	r.remaining--

	return true
}

func (r *Reader) fail(err error) {
	r.err = err
	r.state = stateFailed
}

// Value returns the record decoded by the last successful Next.
func (r *Reader) Value() value.Value {
	return r.current
}

// Err returns the error that stopped iteration, or nil after a clean end of
// file. It never returns io.EOF.
func (r *Reader) Err() error {
	return r.err
}

// All returns an iterator over the remaining records of the file. A decode
// error is yielded once as the final pair and ends the sequence.
//
// Example usage:
//
//	for v, err := range reader.All() {
//	    if err != nil {
//	        return err
//	    }
//	    process(v)
//	}
func (r *Reader) All() iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		for r.Next() {
			if !yield(r.current, nil) {
				return
			}
		}
		if r.err != nil {
			yield(value.Value{}, r.err)
		}
	}
}

// Schema returns the writer schema embedded in the container header.
func (r *Reader) Schema() schema.Schema {
	return r.writer
}

// Codec returns the name of the codec the file's blocks are compressed with.
func (r *Reader) Codec() format.Codec {
	return r.codecName
}

// Metadata returns the header metadata map, including the required "schema"
// and "codec" keys. The map is shared with the Reader; callers must not
// modify it.
func (r *Reader) Metadata() map[string][]byte {
	return r.header.Meta
}

package container

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/arloliu/rebo/compress"
	"github.com/arloliu/rebo/encoding"
	"github.com/arloliu/rebo/errs"
	"github.com/arloliu/rebo/format"
	"github.com/arloliu/rebo/internal/options"
	"github.com/arloliu/rebo/internal/pool"
	"github.com/arloliu/rebo/schema"
	"github.com/arloliu/rebo/section"
	"github.com/arloliu/rebo/value"
)

// Writer appends schema-validated values to a container file.
//
// Values are encoded into an in-memory block; the block is compressed and
// framed onto the sink when it crosses the configured byte or record
// threshold, on Flush, and on Close. The header (magic, embedded schema,
// codec name, sync marker) is written once when the Writer is opened.
//
// Note: The Writer is NOT thread-safe. Each instance must be driven by a
// single goroutine at a time.
//
// Note: A Writer that is dropped without Close loses its buffered records.
// Close on every normal completion path is the caller's responsibility.
type Writer struct {
	*WriterConfig

	sink   io.Writer
	schema schema.Schema
	codec  compress.Compressor

	block  *pool.ByteBuffer
	count  int64
	closed bool
}

// NewWriter opens a container file on sink bound to schema s and writes the
// header immediately.
//
// The header embeds the schema's canonical text under the "schema" key and
// the codec name under the "codec" key, followed by the file's 16-byte sync
// marker. The marker is generated randomly per file unless pinned with
// WithSyncMarker.
//
// Parameters:
//   - sink: Destination byte stream; the Writer never seeks
//   - s: Schema every appended value must conform to
//   - opts: Optional configuration (codec, thresholds, sync marker, metadata)
//
// Returns:
//   - *Writer: Open writer with the header already on the sink
//   - error: errs.ErrSchema for an unset schema, errs.ErrUnsupportedCodec for
//     an unknown codec name, an option error, or a sink write error
func NewWriter(sink io.Writer, s schema.Schema, opts ...WriterOption) (*Writer, error) {
	if s.Kind() == schema.Invalid {
		return nil, fmt.Errorf("%w: writer schema is unset", errs.ErrSchema)
	}

	config := newWriterConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.Get(config.codecName)
	if err != nil {
		return nil, err
	}

	if !config.syncSet {
		config.sync = section.SyncMarker(uuid.New())
	}

	w := &Writer{
		WriterConfig: config,
		sink:         sink,
		schema:       s,
		codec:        codec,
		block:        pool.GetBlockBuffer(),
	}

	header := section.Header{Meta: w.headerMeta(), Sync: config.sync}
	if _, err := sink.Write(header.Bytes()); err != nil {
		pool.PutBlockBuffer(w.block)
		w.block = nil
		w.closed = true

		return nil, fmt.Errorf("write container header: %w", err)
	}

	return w, nil
}

// headerMeta assembles the header metadata map: user pairs first, then the
// required keys so they cannot be shadowed.
func (w *Writer) headerMeta() map[string][]byte {
	meta := make(map[string][]byte, len(w.meta)+2)
	for k, v := range w.meta {
		meta[k] = v
	}
	meta[section.MetaSchemaKey] = []byte(w.schema.String())
	meta[section.MetaCodecKey] = []byte(w.codecName)

	return meta
}

// Append validates v against the writer schema, encodes it, and adds it to
// the buffered block. Crossing the byte or record threshold after the append
// flushes the block to the sink.
//
// A failed append leaves the buffered block untouched: the value is encoded
// into scratch space first and committed only on success, so the caller may
// correct the value and retry.
//
// Parameters:
//   - v: Value conforming to the writer schema
//
// Returns:
//   - error: errs.ErrWriterClosed after Close, errs.ErrSchemaMismatch when v
//     does not conform, or a compression/sink error from an automatic flush
func (w *Writer) Append(v value.Value) error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	if err := value.Validate(v, w.schema); err != nil {
		return err
	}

	scratch := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(scratch)

	if err := encoding.Encode(scratch, w.schema, v); err != nil {
		return err
	}

	w.block.MustWrite(scratch.Bytes())
	w.count++

	if w.block.Len() >= w.maxBytes || w.count >= int64(w.maxRecords) {
		return w.Flush()
	}

	return nil
}

// AppendBatch appends values in order, stopping at the first failure.
//
// Values appended before the failing one stay committed to the buffered
// block; the returned error names the offending index.
func (w *Writer) AppendBatch(values []value.Value) error {
	for i, v := range values {
		if err := w.Append(v); err != nil {
			return fmt.Errorf("batch value %d: %w", i, err)
		}
	}

	return nil
}

// Flush compresses the buffered block and writes one block frame (record
// count, compressed length, payload, sync marker) to the sink. An empty
// block writes nothing, so no empty frames appear in the file.
//
// Returns:
//   - error: errs.ErrWriterClosed after Close, a codec error, or a sink
//     write error
func (w *Writer) Flush() error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	if w.count == 0 {
		return nil
	}

	body, err := w.codec.Compress(w.block.Bytes())
	if err != nil {
		return fmt.Errorf("compress block: %w", err)
	}
	if err := section.WriteBlock(w.sink, w.count, body, w.sync); err != nil {
		return fmt.Errorf("write block: %w", err)
	}

	w.block.Reset()
	w.count = 0

	return nil
}

// Close flushes the buffered block and releases the Writer. Close is
// idempotent; Append and Flush after Close fail with errs.ErrWriterClosed.
//
// A failed Close loses the buffered records and leaves the sink in an
// undefined position. Close does not close the underlying sink.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	err := w.Flush()
	w.closed = true
	pool.PutBlockBuffer(w.block)
	w.block = nil

	return err
}

// Schema returns the schema every appended value is validated against.
func (w *Writer) Schema() schema.Schema {
	return w.schema
}

// Codec returns the name of the block compression codec.
func (w *Writer) Codec() format.Codec {
	return w.codecName
}

// Sync returns the file's sync marker.
func (w *Writer) Sync() section.SyncMarker {
	return w.sync
}

// BufferedRecords returns the number of records appended since the last
// flush. They are not yet on the sink.
func (w *Writer) BufferedRecords() int64 {
	return w.count
}

// Package container writes and reads block-framed container files.
//
// A container file is self-describing: its header embeds the writer schema
// and the name of the compression codec, so the file can be decoded with no
// external schema distribution. Records are batched into blocks, each block
// independently compressed and terminated by the file's 16-byte sync marker.
//
// # Writing
//
// A Writer validates and encodes values against its schema, buffering them
// into an in-memory block. The block is flushed as one frame when it crosses
// the configured byte or record threshold, and on Flush or Close:
//
//	w, err := container.NewWriter(f, s, container.WithCodec(format.CodecZstandard))
//	if err != nil { ... }
//	for _, v := range values {
//	    if err := w.Append(v); err != nil { ... }
//	}
//	if err := w.Close(); err != nil { ... }
//
// Close flushes the final partial block. A Writer abandoned without Close
// loses whatever the last flush did not cover.
//
// # Reading
//
// A Reader decodes records lazily, one block frame at a time. NewReader uses
// the schema embedded in the header; NewReaderWithSchema additionally
// resolves it against a caller-supplied reader schema, applying field
// matching by name, reader-side defaults, and type promotions:
//
//	r, err := container.NewReader(f)
//	if err != nil { ... }
//	for v, err := range r.All() {
//	    if err != nil { ... }
//	    process(v)
//	}
//
// The Next/Value/Err form of the same loop suits callers that need explicit
// control over advancement.
//
// # Corruption Handling
//
// Every block frame must end with the sync marker declared in the header. A
// mismatch fails iteration with errs.ErrCorruptFile and the Reader stays
// failed: it never scans ahead for the next marker, because silently
// skipping bytes could hide data loss. Input that ends exactly at a block
// boundary is a clean end of file; input that ends anywhere inside a header,
// frame, or record fails with errs.ErrUnexpectedEOF.
package container

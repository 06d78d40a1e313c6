package container

import (
	"fmt"

	"github.com/arloliu/rebo/compress"
	"github.com/arloliu/rebo/format"
	"github.com/arloliu/rebo/internal/options"
	"github.com/arloliu/rebo/section"
)

// Block flush thresholds. Crossing either one after an append triggers an
// automatic flush of the buffered block.
const (
	// DefaultMaxBlockBytes is the default uncompressed byte size at which a
	// buffered block is flushed.
	DefaultMaxBlockBytes = 64 * 1024

	// DefaultMaxBlockRecords is the default record count at which a buffered
	// block is flushed.
	DefaultMaxBlockRecords = 10000
)

// WriterConfig holds the tunable parts of a Writer: the compression codec,
// the block flush thresholds, the sync marker, and user header metadata.
//
// A config is built from defaults and mutated through WriterOption values;
// callers never construct one directly.
type WriterConfig struct {
	codecName  format.Codec
	maxBytes   int
	maxRecords int
	sync       section.SyncMarker
	syncSet    bool
	meta       map[string][]byte
}

func newWriterConfig() *WriterConfig {
	return &WriterConfig{
		codecName:  format.CodecNull,
		maxBytes:   DefaultMaxBlockBytes,
		maxRecords: DefaultMaxBlockRecords,
	}
}

// setCodec selects the block compression codec by name.
func (c *WriterConfig) setCodec(name format.Codec) error {
	if _, err := compress.Get(name); err != nil {
		return err
	}
	c.codecName = name

	return nil
}

// setMaxBlockBytes sets the uncompressed byte threshold for automatic flushes.
func (c *WriterConfig) setMaxBlockBytes(n int) error {
	if n <= 0 {
		return fmt.Errorf("max block bytes must be positive, got %d", n)
	}
	c.maxBytes = n

	return nil
}

// setMaxBlockRecords sets the record count threshold for automatic flushes.
func (c *WriterConfig) setMaxBlockRecords(n int) error {
	if n <= 0 {
		return fmt.Errorf("max block records must be positive, got %d", n)
	}
	c.maxRecords = n

	return nil
}

// setSyncMarker pins the file's sync marker instead of generating a random one.
func (c *WriterConfig) setSyncMarker(marker section.SyncMarker) {
	c.sync = marker
	c.syncSet = true
}

// setMetadata adds one user metadata pair to the header. The required keys
// carry the schema and codec name and cannot be overridden.
func (c *WriterConfig) setMetadata(key string, val []byte) error {
	if key == section.MetaSchemaKey || key == section.MetaCodecKey {
		return fmt.Errorf("metadata key %q is reserved", key)
	}
	if c.meta == nil {
		c.meta = make(map[string][]byte)
	}
	c.meta[key] = val

	return nil
}

// WriterOption represents a functional option for configuring a Writer.
// This is a type alias for the generic Option interface specialized for WriterConfig.
type WriterOption = options.Option[*WriterConfig]

// WithCodec sets the compression codec applied to each block before it is
// written. The name must identify a registered codec; unknown names fail
// NewWriter with errs.ErrUnsupportedCodec.
//
// The default is format.CodecNull (no compression).
func WithCodec(name format.Codec) WriterOption {
	return options.New(func(c *WriterConfig) error {
		return c.setCodec(name)
	})
}

// WithMaxBlockBytes sets the uncompressed byte size at which a buffered block
// is automatically flushed. Larger blocks compress better; smaller blocks
// bound the memory held between flushes and the data lost on a crash.
func WithMaxBlockBytes(n int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		return c.setMaxBlockBytes(n)
	})
}

// WithMaxBlockRecords sets the record count at which a buffered block is
// automatically flushed.
func WithMaxBlockRecords(n int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		return c.setMaxBlockRecords(n)
	})
}

// WithSyncMarker pins the 16-byte sync marker instead of generating a random
// one per file. Pinned markers make output byte-for-byte reproducible; the
// default random marker minimizes accidental collision with data bytes.
func WithSyncMarker(marker section.SyncMarker) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.setSyncMarker(marker)
	})
}

// WithMetadata adds a user metadata pair to the container header. The pair is
// written once at open time and exposed to readers through Reader.Metadata.
// The reserved keys "schema" and "codec" cannot be set this way.
func WithMetadata(key string, value []byte) WriterOption {
	return options.New(func(c *WriterConfig) error {
		return c.setMetadata(key, value)
	})
}

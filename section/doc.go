// Package section defines the low-level binary structures of container
// files: the once-per-file header and the repeated block frame.
//
// # Container Layout
//
// A container file is a header followed by zero or more block frames:
//
//	┌─────────────────────────────────────────────────┐
//	│ Magic: 'O' 'b' 'j' 0x01                         │
//	│ Metadata map: {count, (key, value)...} 0        │
//	│ Sync marker: 16 random bytes                    │
//	├─────────────────────────────────────────────────┤
//	│ Block frame (repeated):                         │
//	│   record count        (zig-zag varint)          │
//	│   payload byte length (zig-zag varint)          │
//	│   payload             (codec-compressed)        │
//	│   sync marker         (same 16 bytes)           │
//	└─────────────────────────────────────────────────┘
//
// Metadata keys are strings, values raw bytes, encoded with the same map
// wire form records use. Two keys are required: "schema" holds the writer
// schema text, "codec" the name of the block compression codec. Everything
// else is caller metadata and passes through untouched.
//
// # Corruption and Truncation
//
// ReadHeader and ReadBlock distinguish three failure classes:
//
//   - errs.ErrCorruptFile: wrong magic, missing required metadata keys, a
//     negative block record count, or a sync marker mismatch. After a sync
//     mismatch the stream position is untrustworthy and reading must stop;
//     scanning ahead for the next marker could silently skip data.
//   - errs.ErrUnexpectedEOF: the input ended inside the header or a frame.
//   - io.EOF: returned bare by ReadBlock only when the input ends exactly
//     at a block boundary, which is the one clean way a container ends.
//
// The sync marker doubles as the corruption tripwire: every block must be
// followed by the exact 16 bytes announced in the header, so a length
// corrupted anywhere upstream is caught at the next marker check.
//
// # Integration
//
// The container package drives this one: its Writer emits Header.Bytes()
// once and WriteBlock per flush, its Reader parses with ReadHeader and
// ReadBlock. The payload inside a frame is opaque here; framing never
// inspects compressed bytes.
package section

// Package endian provides byte order utilities for the rebo wire format.
//
// The binary encoding fixes byte order per field rather than per file:
// float and double values are always little-endian IEEE-754, while the
// snappy codec's trailing CRC32 is big-endian. This package exposes both
// orders through a single EndianEngine interface so encoders and codecs
// can share append-style helpers without touching encoding/binary
// directly.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface for convenient byte order operations.
//
// The interface is satisfied by binary.LittleEndian and binary.BigEndian,
// so engines are immutable, stateless, and safe for concurrent use.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine. Float and double
// wire encodings use this order.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine. The snappy block codec
// uses this order for its trailing CRC32.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

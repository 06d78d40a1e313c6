package endian

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.LittleEndian, engine)

	// Little endian puts the LSB first.
	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x02), bytes[0])
	require.Equal(t, byte(0x01), bytes[1])

	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.BigEndian, engine)

	// Big endian puts the MSB first.
	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x01), bytes[0])
	require.Equal(t, byte(0x02), bytes[1])

	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestEngineAppend(t *testing.T) {
	little := GetLittleEndianEngine()
	big := GetBigEndianEngine()

	var testUint32 uint32 = 0x01020304
	littleBytes := little.AppendUint32(nil, testUint32)
	bigBytes := big.AppendUint32(nil, testUint32)

	require.NotEqual(t, littleBytes, bigBytes)
	require.Equal(t, testUint32, little.Uint32(littleBytes))
	require.Equal(t, testUint32, big.Uint32(bigBytes))

	var testUint64 uint64 = 0x0102030405060708
	littleBytes64 := little.AppendUint64(nil, testUint64)
	bigBytes64 := big.AppendUint64(nil, testUint64)

	require.NotEqual(t, littleBytes64, bigBytes64)
	require.Equal(t, testUint64, little.Uint64(littleBytes64))
	require.Equal(t, testUint64, big.Uint64(bigBytes64))
}

func TestFloatRoundTripThroughEngine(t *testing.T) {
	// The wire format stores float/double as little-endian IEEE-754 bits.
	engine := GetLittleEndianEngine()

	f32 := float32(3.14159)
	buf := engine.AppendUint32(nil, math.Float32bits(f32))
	require.Len(t, buf, 4)
	require.Equal(t, f32, math.Float32frombits(engine.Uint32(buf)))

	f64 := 2.718281828459045
	buf = engine.AppendUint64(nil, math.Float64bits(f64))
	require.Len(t, buf, 8)
	require.Equal(t, f64, math.Float64frombits(engine.Uint64(buf)))
}

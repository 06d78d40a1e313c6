package section

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebo/errs"
)

func TestWriteBlock_WireForm(t *testing.T) {
	var buf bytes.Buffer
	sync := testSync()

	err := WriteBlock(&buf, 2, []byte{0xaa, 0xbb}, sync)
	require.NoError(t, err)

	want := []byte{0x04, 0x04, 0xaa, 0xbb}
	want = append(want, sync[:]...)
	require.Equal(t, want, buf.Bytes())
}

func TestWriteBlock_ReadBlock_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sync := testSync()
	body := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 100)

	require.NoError(t, WriteBlock(&buf, 25, body, sync))

	block, err := ReadBlock(&buf, sync)
	require.NoError(t, err)
	require.Equal(t, int64(25), block.Count)
	require.Equal(t, body, block.Body)
}

func TestReadBlock_SequentialThenCleanEOF(t *testing.T) {
	var buf bytes.Buffer
	sync := testSync()

	require.NoError(t, WriteBlock(&buf, 1, []byte{0x01}, sync))
	require.NoError(t, WriteBlock(&buf, 2, []byte{0x02, 0x03}, sync))

	first, err := ReadBlock(&buf, sync)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Count)

	second, err := ReadBlock(&buf, sync)
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Count)
	require.Equal(t, []byte{0x02, 0x03}, second.Body)

	// The input ending before another count byte is the clean end of the
	// container, not a truncation.
	_, err = ReadBlock(&buf, sync)
	require.ErrorIs(t, err, io.EOF)
	require.NotErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestReadBlock_TruncatedFrame(t *testing.T) {
	sync := testSync()

	var full bytes.Buffer
	require.NoError(t, WriteBlock(&full, 3, []byte{0x10, 0x20, 0x30}, sync))
	frame := full.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "count only", data: frame[:1]},
		{name: "partial payload", data: frame[:3]},
		{name: "missing sync marker", data: frame[:5]},
		{name: "partial sync marker", data: frame[:len(frame)-7]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBlock(bytes.NewReader(tt.data), sync)
			require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
		})
	}
}

func TestReadBlock_SyncMismatch(t *testing.T) {
	sync := testSync()

	var buf bytes.Buffer
	require.NoError(t, WriteBlock(&buf, 1, []byte{0x42}, sync))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xff

	_, err := ReadBlock(bytes.NewReader(data), sync)
	require.ErrorIs(t, err, errs.ErrCorruptFile)
	require.ErrorContains(t, err, "sync marker")
}

func TestReadBlock_NegativeCount(t *testing.T) {
	sync := testSync()

	// Zig-zag 0x01 decodes to -1.
	data := []byte{0x01, 0x02, 0xaa}
	data = append(data, sync[:]...)

	_, err := ReadBlock(bytes.NewReader(data), sync)
	require.ErrorIs(t, err, errs.ErrCorruptFile)
	require.ErrorContains(t, err, "negative record count")
}

func TestReadBlock_NegativeBodyLength(t *testing.T) {
	_, err := ReadBlock(bytes.NewReader([]byte{0x04, 0x01}), testSync())
	require.ErrorIs(t, err, errs.ErrNegativeLength)
}

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(nil)
	w.WriteUvarint(42)
	w.WriteVarint(-17)
	w.WriteFixed([]byte{0xde, 0xad})
	w.WriteBytes([]byte("hello"))
	w.WriteString("world")
	w.WriteBool(true)
	w.WriteBool(false)

	r := NewReader(w.Bytes())

	u, err := r.ReadUvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(42), u)

	v, err := r.ReadVarint()
	require.NoError(t, err)
	require.Equal(t, int64(-17), v)

	fixed, err := r.ReadFixed(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad}, fixed)

	blob, err := r.ReadBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), blob)

	str, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "world", str)

	b1, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, b1)

	b2, err := r.ReadBool()
	require.NoError(t, err)
	require.False(t, b2)

	require.True(t, r.Done())
}

func TestZigZagRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 1 << 40, -(1 << 40)}
	for _, v := range values {
		require.Equal(t, v, zigzagDecode(zigzagEncode(v)))
	}
}

func TestReadTruncatedVarintFails(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80})
	_, err := r.ReadUvarint()
	require.Error(t, err)
}

func TestReadFixedOverrunFails(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadFixed(10)
	require.Error(t, err)
}

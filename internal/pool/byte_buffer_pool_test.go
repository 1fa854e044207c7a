package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferBasics(t *testing.T) {
	bb := NewByteBuffer(64)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 64, bb.Cap())

	n, err := bb.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{1, 2, 3}, bb.Bytes())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 64, bb.Cap())
}

func TestByteBufferSetLength(t *testing.T) {
	bb := NewByteBuffer(8)

	bb.SetLength(4)
	require.Equal(t, 4, bb.Len())

	// growing past the capacity keeps the prefix
	copy(bb.B, []byte{9, 9, 9, 9})
	bb.SetLength(1024)
	require.Equal(t, 1024, bb.Len())
	require.Equal(t, []byte{9, 9, 9, 9}, bb.B[:4])
}

func TestByteBufferWriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
	require.Equal(t, "payload", out.String())
}

func TestPoolReuse(t *testing.T) {
	p := NewByteBufferPool(16, 1024)

	bb := p.Get()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte{1, 2, 3})
	p.Put(bb)

	got := p.Get()
	require.Equal(t, 0, got.Len())
}

func TestPoolDiscardsOversized(t *testing.T) {
	p := NewByteBufferPool(16, 32)

	bb := p.Get()
	bb.SetLength(64)
	p.Put(bb) // over the threshold, dropped

	got := p.Get()
	require.LessOrEqual(t, got.Cap(), 64)

	p.Put(nil) // must not panic
}

func TestDefaultPools(t *testing.T) {
	mb := GetMessageBuffer()
	require.NotNil(t, mb)
	PutMessageBuffer(mb)

	sb := GetStagingBuffer()
	require.NotNil(t, sb)
	require.GreaterOrEqual(t, sb.Cap(), StagingBufferDefaultSize)
	PutStagingBuffer(sb)
}

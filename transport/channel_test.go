package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quarklab/datadist/errs"
)

func TestPipeSendReceive(t *testing.T) {
	p := NewPipe(4)

	b1 := Batch{NewMessageFromBytes([]byte{1})}
	b2 := Batch{NewMessageFromBytes([]byte{2}), NewMessageFromBytes([]byte{3})}

	require.NoError(t, p.Send(b1))
	require.NoError(t, p.Send(b2))

	got, err := p.Receive()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte{1}, got[0].Data())

	got, err = p.Receive()
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestPipeCloseDrains(t *testing.T) {
	p := NewPipe(4)
	require.NoError(t, p.Send(Batch{NewMessageFromBytes([]byte{1})}))
	require.NoError(t, p.Close())

	// buffered batches survive the close
	got, err := p.Receive()
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = p.Receive()
	require.ErrorIs(t, err, errs.ErrChannelClosed)

	require.ErrorIs(t, p.Send(Batch{}), errs.ErrChannelClosed)
	require.NoError(t, p.Close())
}

func TestPipeCloseWakesBlockedReceiver(t *testing.T) {
	p := NewPipe(1)

	done := make(chan error, 1)
	go func() {
		_, err := p.Receive()
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Close())

	select {
	case err := <-done:
		require.ErrorIs(t, err, errs.ErrChannelClosed)
	case <-time.After(time.Second):
		t.Fatal("receiver not woken by close")
	}
}

func TestMessageLifecycle(t *testing.T) {
	m := NewMessage(16)
	require.EqualValues(t, 16, m.Size())
	for _, b := range m.Data() {
		require.Zero(t, b)
	}

	m.Data()[0] = 0xab
	require.Equal(t, byte(0xab), m.Data()[0])
	m.Release()
	require.Nil(t, m.Data())

	wrapped := NewMessageFromBytes([]byte{1, 2, 3})
	require.EqualValues(t, 3, wrapped.Size())
	wrapped.Release()
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	p := NewPipe(1)
	r.Add(7, p)

	got, err := r.Get(7)
	require.NoError(t, err)
	require.Same(t, p, got)

	_, err = r.Get(8)
	require.ErrorIs(t, err, errs.ErrNoSuchChannel)
}

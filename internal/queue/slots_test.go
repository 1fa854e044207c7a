package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func alwaysRunning() bool { return true }
func notRunning() bool    { return false }

func TestSendSlotsAcquireRelease(t *testing.T) {
	s := NewSendSlots(2)
	require.Equal(t, 2, s.Capacity())
	require.Equal(t, 2, s.Available())

	require.True(t, s.Acquire(alwaysRunning))
	require.True(t, s.Acquire(alwaysRunning))
	require.Equal(t, 0, s.Available())

	s.Release()
	require.Equal(t, 1, s.Available())
	require.True(t, s.Acquire(alwaysRunning))
}

func TestSendSlotsConservation(t *testing.T) {
	s := NewSendSlots(1)

	require.True(t, s.Acquire(alwaysRunning))
	s.Release()
	// surplus releases must not widen the bound
	s.Release()
	s.Release()
	require.Equal(t, 1, s.Available())
}

func TestSendSlotsBlockedAcquireObservesRelease(t *testing.T) {
	s := NewSendSlots(1)
	require.True(t, s.Acquire(alwaysRunning))

	done := make(chan bool, 1)
	go func() {
		done <- s.Acquire(alwaysRunning)
	}()

	select {
	case <-done:
		t.Fatal("acquire succeeded without a free slot")
	case <-time.After(50 * time.Millisecond):
	}

	s.Release()

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("acquire did not observe the release")
	}
}

func TestSendSlotsAcquireStopsWhenNotRunning(t *testing.T) {
	s := NewSendSlots(1)
	require.True(t, s.Acquire(alwaysRunning))

	start := time.Now()
	require.False(t, s.Acquire(notRunning))
	// the running predicate is polled on a one second period
	require.GreaterOrEqual(t, time.Since(start), time.Second)
	require.Less(t, time.Since(start), 3*time.Second)
}

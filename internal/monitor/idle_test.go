package monitor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleMonitor_FiresAfterWindow(t *testing.T) {
	fired := make(chan struct{}, 1)
	m := NewIdleMonitor(30*time.Millisecond, func() { fired <- struct{}{} })
	m.Start()
	defer m.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("idle callback did not fire")
	}
}

func TestIdleMonitor_SignalRestartsWindow(t *testing.T) {
	var count atomic.Int32
	m := NewIdleMonitor(80*time.Millisecond, func() { count.Add(1) })
	m.Start()
	defer m.Stop()

	// Keep signaling inside the window; the timer must never elapse.
	for range 5 {
		time.Sleep(30 * time.Millisecond)
		m.Signal()
	}
	assert.Equal(t, int32(0), count.Load(), "activity inside the window must hold off the callback")

	// Go quiet and let the window elapse.
	assert.Eventually(t, func() bool { return count.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestIdleMonitor_FiresOnceThenStaysStopped(t *testing.T) {
	var count atomic.Int32
	m := NewIdleMonitor(20*time.Millisecond, func() { count.Add(1) })
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return count.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	// Signals after firing are ignored; no second window opens.
	m.Signal()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestIdleMonitor_StartRearms(t *testing.T) {
	var count atomic.Int32
	m := NewIdleMonitor(20*time.Millisecond, func() { count.Add(1) })
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return count.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	m.Start()
	require.Eventually(t, func() bool { return count.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestIdleMonitor_StopCancelsPendingWindow(t *testing.T) {
	var count atomic.Int32
	m := NewIdleMonitor(30*time.Millisecond, func() { count.Add(1) })
	m.Start()
	m.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())

	// Stop is idempotent, and signals on a stopped monitor are ignored.
	m.Stop()
	m.Signal()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
}

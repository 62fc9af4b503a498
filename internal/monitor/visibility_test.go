package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingCallback(count *atomic.Int32) func(context.Context) error {
	return func(context.Context) error {
		count.Add(1)
		return nil
	}
}

func TestVisibilityMonitor_FiresOnStableVisibleEdge(t *testing.T) {
	var count atomic.Int32
	m := NewVisibilityMonitor(30*time.Millisecond, countingCallback(&count), nil)
	defer m.Stop()

	m.Set(false)
	m.Set(true)

	assert.Eventually(t, func() bool { return count.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestVisibilityMonitor_HiddenEdgeNeverFires(t *testing.T) {
	var count atomic.Int32
	m := NewVisibilityMonitor(20*time.Millisecond, countingCallback(&count), nil)
	defer m.Stop()

	m.Set(false)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
}

func TestVisibilityMonitor_SameStateRepeatsIgnored(t *testing.T) {
	var count atomic.Int32
	m := NewVisibilityMonitor(20*time.Millisecond, countingCallback(&count), nil)
	defer m.Stop()

	// The page starts visible; repeating it is not an edge.
	m.Set(true)
	m.Set(true)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
}

func TestVisibilityMonitor_FlickerInsideDebounceCancels(t *testing.T) {
	var count atomic.Int32
	m := NewVisibilityMonitor(80*time.Millisecond, countingCallback(&count), nil)
	defer m.Stop()

	m.Set(false)
	m.Set(true)
	// Back to hidden inside the window: the pending call must die.
	time.Sleep(20 * time.Millisecond)
	m.Set(false)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())

	// A later stable edge still works.
	m.Set(true)
	assert.Eventually(t, func() bool { return count.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestVisibilityMonitor_EdgesDuringCallbackDropped(t *testing.T) {
	var count atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	m := NewVisibilityMonitor(10*time.Millisecond, func(context.Context) error {
		count.Add(1)
		close(started)
		<-release
		return nil
	}, nil)
	defer m.Stop()

	m.Set(false)
	m.Set(true)
	<-started

	// Edges while the callback runs are dropped, not queued.
	m.Set(false)
	m.Set(true)
	m.Set(false)
	m.Set(true)
	close(release)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestVisibilityMonitor_CallbackErrorDoesNotWedge(t *testing.T) {
	var count atomic.Int32
	m := NewVisibilityMonitor(10*time.Millisecond, func(context.Context) error {
		count.Add(1)
		return errors.New("refresh failed")
	}, nil)
	defer m.Stop()

	m.Set(false)
	m.Set(true)
	require.Eventually(t, func() bool { return count.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	// The failure cleared the in-flight state; the next edge fires again.
	m.Set(false)
	m.Set(true)
	assert.Eventually(t, func() bool { return count.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestVisibilityMonitor_CallbackPanicIsContained(t *testing.T) {
	var count atomic.Int32
	m := NewVisibilityMonitor(10*time.Millisecond, func(context.Context) error {
		count.Add(1)
		panic("boom")
	}, nil)
	defer m.Stop()

	m.Set(false)
	m.Set(true)
	require.Eventually(t, func() bool { return count.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	m.Set(false)
	m.Set(true)
	assert.Eventually(t, func() bool { return count.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestVisibilityMonitor_StopCancelsPending(t *testing.T) {
	var count atomic.Int32
	m := NewVisibilityMonitor(50*time.Millisecond, countingCallback(&count), nil)

	m.Set(false)
	m.Set(true)
	m.Stop()
	m.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())

	// Edges after Stop are ignored.
	m.Set(false)
	m.Set(true)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
}

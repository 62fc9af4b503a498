// Package monitor provides the ephemeral activity detectors feeding the
// session controller: a rolling inactivity timer and a debounced
// visibility edge detector. Both are torn down on controller shutdown;
// a leaked timer is a defect, not an acceptable cost.
package monitor

import (
	"sync"
	"time"
)

// IdleMonitor fires a callback once after a rolling window of inactivity.
// Every qualifying activity signal cancels and restarts the window; the
// timeout is a rolling inactivity window, not a fixed deadline. After
// firing, the monitor stays stopped until the caller restarts it.
//
// The callback runs on the timer goroutine. The monitor does not guard
// against the callback panicking; the caller wraps it.
type IdleMonitor struct {
	timeout time.Duration
	onIdle  func()

	mu      sync.Mutex
	timer   *time.Timer
	running bool
}

// NewIdleMonitor constructs a stopped monitor. Call Start to arm it.
func NewIdleMonitor(timeout time.Duration, onIdle func()) *IdleMonitor {
	return &IdleMonitor{timeout: timeout, onIdle: onIdle}
}

// Start arms the inactivity window. Calling Start on a running monitor
// restarts the window from zero.
func (m *IdleMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.resetLocked()
}

// Signal records a qualifying activity event: the pending window is
// cancelled and restarted from zero. Signals on a stopped monitor are
// ignored.
func (m *IdleMonitor) Signal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.resetLocked()
}

// Stop cancels the pending window. Idempotent.
func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *IdleMonitor) resetLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.timeout, m.fire)
}

// fire delivers the idle callback exactly once per elapsed window and
// stops the monitor; it does not auto-repeat.
func (m *IdleMonitor) fire() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.timer = nil
	onIdle := m.onIdle
	m.mu.Unlock()

	if onIdle != nil {
		onIdle()
	}
}

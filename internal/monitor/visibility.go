package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// visState is the visibility monitor's explicit state machine. Keeping
// the three states named (rather than ad hoc boolean flags) keeps the
// edge, debounce, and re-entrancy invariants mechanically checkable.
type visState int

const (
	visIdle visState = iota // no pending or running callback
	visWaiting
	visRunning
)

// DefaultVisibilityDebounce is the quiet interval a hidden→visible edge
// must survive before the callback runs.
const DefaultVisibilityDebounce = 500 * time.Millisecond

// VisibilityMonitor invokes a callback once per stable hidden→visible
// transition. Reverse edges inside the debounce window cancel the pending
// invocation, and edges observed while a callback is still running are
// dropped, not queued. Callback errors and panics are caught and logged
// here so a failed refresh never wedges the monitor; the in-flight state
// clears on every outcome.
type VisibilityMonitor struct {
	debounce time.Duration
	callback func(ctx context.Context) error
	logger   *slog.Logger

	mu      sync.Mutex
	visible bool // last-known visibility, defaults to visible on start
	state   visState
	timer   *time.Timer
	stopped bool
}

// NewVisibilityMonitor constructs a monitor assuming the page starts
// visible. A non-positive debounce falls back to the default.
func NewVisibilityMonitor(debounce time.Duration, callback func(ctx context.Context) error, logger *slog.Logger) *VisibilityMonitor {
	if debounce <= 0 {
		debounce = DefaultVisibilityDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisibilityMonitor{
		debounce: debounce,
		callback: callback,
		logger:   logger.With("component", "visibility_monitor"),
		visible:  true,
	}
}

// Set records a visibility transition. Only a hidden→visible edge can
// schedule the callback; visible→hidden cancels a pending one; repeats of
// the same state are ignored.
func (m *VisibilityMonitor) Set(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || visible == m.visible {
		return
	}
	m.visible = visible

	if !visible {
		// Going hidden cancels a pending invocation; a running one is
		// left to finish.
		if m.state == visWaiting {
			m.cancelTimerLocked()
			m.state = visIdle
		}
		return
	}

	switch m.state {
	case visIdle:
		m.state = visWaiting
		m.timer = time.AfterFunc(m.debounce, m.fire)
	case visWaiting:
		// A flicker landed back on visible inside the window; restart it
		// so only the final stable edge triggers a call.
		m.cancelTimerLocked()
		m.timer = time.AfterFunc(m.debounce, m.fire)
	case visRunning:
		// Re-entrancy guard: silently dropped, not queued.
	}
}

// Stop cancels any pending invocation and detaches the monitor.
// Idempotent.
func (m *VisibilityMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.cancelTimerLocked()
	if m.state == visWaiting {
		m.state = visIdle
	}
}

func (m *VisibilityMonitor) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *VisibilityMonitor) fire() {
	m.mu.Lock()
	if m.stopped || m.state != visWaiting || !m.visible {
		if m.state == visWaiting {
			m.state = visIdle
		}
		m.mu.Unlock()
		return
	}
	m.state = visRunning
	m.timer = nil
	m.mu.Unlock()

	m.run()
}

// run executes the callback and clears the in-flight state on success,
// error, and panic alike.
func (m *VisibilityMonitor) run() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("visibility callback panicked", "panic", r)
		}
		m.mu.Lock()
		m.state = visIdle
		m.mu.Unlock()
	}()

	if m.callback == nil {
		return
	}
	if err := m.callback(context.Background()); err != nil {
		m.logger.Error("visibility refresh failed", "error", err)
	}
}

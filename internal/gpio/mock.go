package gpio

import (
	"log/slog"
	"sync"
	"time"
)

// Mock implements Device without hardware. Used by tests and by the --mock
// flag for development off-device.
type Mock struct {
	logger *slog.Logger

	mu     sync.Mutex
	writes [][3]float64
	err    error

	onPress   func()
	onRelease func()
	debounce  time.Duration
}

// NewMock creates a mock GPIO device.
func NewMock(logger *slog.Logger) *Mock {
	return &Mock{
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// SetRGB records the write. Values are clamped like the real driver.
func (m *Mock) SetRGB(r, g, b float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes = append(m.writes, [3]float64{clamp(r), clamp(g), clamp(b)})
	if m.logger != nil {
		m.logger.Debug("Mock LED write", "r", r, "g", g, "b", b)
	}
	return nil
}

// OnPress registers the press handler.
func (m *Mock) OnPress(fn func()) { m.onPress = fn }

// OnRelease registers the release handler.
func (m *Mock) OnRelease(fn func()) { m.onRelease = fn }

// SetDebounce records the debounce interval.
func (m *Mock) SetDebounce(d time.Duration) {
	m.mu.Lock()
	m.debounce = d
	m.mu.Unlock()
}

// Debounce returns the currently configured debounce interval.
func (m *Mock) Debounce() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debounce
}

// Start is a no-op; the mock has no background activity.
func (m *Mock) Start() error { return nil }

// Close is a no-op.
func (m *Mock) Close() error { return nil }

// FailWith makes subsequent SetRGB calls return err (nil to clear).
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Press invokes the registered press handler, simulating a debounced press.
func (m *Mock) Press() {
	if m.onPress != nil {
		m.onPress()
	}
}

// Release invokes the registered release handler.
func (m *Mock) Release() {
	if m.onRelease != nil {
		m.onRelease()
	}
}

// Writes returns a copy of all recorded channel writes.
func (m *Mock) Writes() [][3]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][3]float64, len(m.writes))
	copy(out, m.writes)
	return out
}

// Last returns the most recent write, or zeros if none happened.
func (m *Mock) Last() [3]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return [3]float64{}
	}
	return m.writes[len(m.writes)-1]
}

// Reset clears the recorded writes.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.writes = nil
	m.mu.Unlock()
}

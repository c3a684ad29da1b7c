package actuator

import (
	"sync"
	"time"
)

// Call is one recorded driver call. Stop calls have Stop set and no Duration.
type Call struct {
	At       time.Time
	Duration time.Duration
	Stop     bool
}

// MemoryDriver records calls instead of moving hardware. Tests and the
// shell's "dry" mode use it.
type MemoryDriver struct {
	name string
	now  func() time.Time
	err  error

	mu    sync.Mutex
	calls []Call
}

// NewMemoryDriver stamps calls with now; a nil now uses time.Now.
func NewMemoryDriver(name string, now func() time.Time) *MemoryDriver {
	if now == nil {
		now = time.Now
	}
	return &MemoryDriver{name: name, now: now}
}

func (m *MemoryDriver) Name() string { return m.name }

// FailWith makes subsequent calls return err.
func (m *MemoryDriver) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryDriver) Buzz(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{At: m.now(), Duration: d})
	return m.err
}

func (m *MemoryDriver) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{At: m.now(), Stop: true})
	return m.err
}

// Calls returns a copy of everything recorded so far.
func (m *MemoryDriver) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Buzzes returns only the Buzz durations, in call order.
func (m *MemoryDriver) Buzzes() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Duration
	for _, c := range m.calls {
		if !c.Stop {
			out = append(out, c.Duration)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (m *MemoryDriver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

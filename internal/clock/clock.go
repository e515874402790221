// Package clock abstracts the wall clock so the schedule engine can be
// driven by a settable time source in tests and by a debug offset in
// development builds.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// System is the production clock. Offset shifts the reported time by a
// fixed amount; it is only ever set from the --time-offset debug flag.
type System struct {
	Offset time.Duration
}

// Now returns the system time plus the configured offset.
func (s System) Now() time.Time {
	return time.Now().Add(s.Offset)
}

// Mock is a settable clock for tests.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock creates a Mock frozen at t.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the mock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the mock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

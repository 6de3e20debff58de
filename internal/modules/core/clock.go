package core

import "time"

// Clock provides the current time to handlers that record timestamps,
// so tests can control think-time and submission ordering.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ Clock = (*SystemClock)(nil)

// MockClock is a Clock fixed to a settable instant.
type MockClock struct {
	CurrentTime time.Time
}

var _ Clock = (*MockClock)(nil)

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration.
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time.
func (c *MockClock) Set(t time.Time) {
	c.CurrentTime = t
}

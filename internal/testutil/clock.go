package testutil

import (
	"sync"
	"time"
)

// DefaultEpochMillis is where a new DeterministicClock starts:
// 2024-01-01T00:00:00Z.
const DefaultEpochMillis int64 = 1704067200000

// DeterministicClock is a thread-safe clock for tests that advances by one
// millisecond on every reading.
//
// Every store insert that defaults its timestamp reads the clock once, so
// records inserted in order get strictly increasing timestamps and recency
// ordering is deterministic.
type DeterministicClock struct {
	mu     sync.Mutex
	epoch  int64
	millis int64
}

// NewDeterministicClock creates a clock starting at DefaultEpochMillis.
//
// The first call to Next() returns DefaultEpochMillis+1.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultEpochMillis)
}

// NewDeterministicClockAt creates a clock starting at epochMillis.
func NewDeterministicClockAt(epochMillis int64) *DeterministicClock {
	return &DeterministicClock{epoch: epochMillis, millis: epochMillis}
}

// Next advances the clock by one millisecond and returns the new reading.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.millis++
	return c.millis
}

// Current returns the current reading without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.millis
}

// Reset moves the clock back to its starting epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.millis = c.epoch
}

// Now advances the clock and returns it as a time.Time.
// Matches the store.Options.Now signature.
func (c *DeterministicClock) Now() time.Time {
	return time.UnixMilli(c.Next())
}

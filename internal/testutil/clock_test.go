package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, DefaultEpochMillis, clock.Current())
}

func TestDeterministicClock_NextIncrementsMonotonically(t *testing.T) {
	clock := NewDeterministicClockAt(100)

	assert.Equal(t, int64(101), clock.Next())
	assert.Equal(t, int64(101), clock.Current())

	assert.Equal(t, int64(102), clock.Next())
	assert.Equal(t, int64(103), clock.Next())
	assert.Equal(t, int64(103), clock.Current())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClockAt(10)

	clock.Next()
	clock.Next()
	assert.Equal(t, int64(12), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(10), clock.Current())
	assert.Equal(t, int64(11), clock.Next())
}

func TestDeterministicClock_Now(t *testing.T) {
	clock := NewDeterministicClockAt(5000)

	first := clock.Now()
	second := clock.Now()

	assert.Equal(t, int64(5001), first.UnixMilli())
	assert.Equal(t, int64(5002), second.UnixMilli())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClockAt(0)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	var mu sync.Mutex
	seen := make(map[int64]bool, numGoroutines*callsPerGoroutine)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				v := clock.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, numGoroutines*callsPerGoroutine, "every reading must be unique")
	assert.Equal(t, int64(numGoroutines*callsPerGoroutine), clock.Current())
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "deck-1", ids.NewID())
	assert.Equal(t, "deck-2", ids.NewID())

	custom := NewSequentialIDs("arena")
	assert.Equal(t, "arena-1", custom.NewID())
}

package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepClock_StartsAtEpoch(t *testing.T) {
	clock := NewStepClock(time.Second)
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, Epoch.Add(time.Second), clock.Now())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, Epoch, clock.Now())
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(time.Millisecond)
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var mu sync.Mutex
	seen := make(map[time.Time]bool)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				now := clock.Now()
				mu.Lock()
				seen[now] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, numGoroutines*callsPerGoroutine)
}

func TestFixedIDGenerator(t *testing.T) {
	gen := NewFixedIDGenerator("batch-1", "batch-2")
	assert.Equal(t, "batch-1", gen.Generate())
	assert.Equal(t, "batch-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestNewModels(t *testing.T) {
	m := NewModels()

	assert.Equal(t, []string{"id_a", "id_b", "id_c"}, m.C.PrimaryKey().ColumnNames())
	assert.Equal(t, []string{"id_a", "id_b"}, m.D.PrimaryKey().ColumnNames())
	assert.Same(t, m.A, m.D.Parent())
	assert.Empty(t, m.D.Indices())
	assert.Len(t, m.All(), 4)
}

package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_Frozen(t *testing.T) {
	at := time.Date(2026, 10, 14, 10, 15, 0, 0, JST)
	clock := NewFixedClock(at)

	assert.True(t, clock.Now().Equal(at))
	assert.True(t, clock.Now().Equal(at), "repeated reads return the same instant")
}

func TestFixedClock_AdvanceAndReset(t *testing.T) {
	at := time.Date(2026, 10, 14, 10, 15, 0, 0, JST)
	clock := NewFixedClock(at)

	clock.Advance(45 * time.Minute)
	assert.Equal(t, "11:00", clock.Now().Format("15:04"))

	clock.Set(at.AddDate(0, 0, 1))
	assert.Equal(t, "2026-10-15", clock.Now().Format("2006-01-02"))

	clock.Reset()
	assert.True(t, clock.Now().Equal(at))
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, JST))
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(time.Minute)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, "00:50", clock.Now().Format("15:04"))
}

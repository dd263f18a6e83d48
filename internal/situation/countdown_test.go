package situation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdownTicksToZeroAndStops(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	c := newCountdownWithInterval(3, time.Millisecond, func(remaining int) {
		mu.Lock()
		seen = append(seen, remaining)
		mu.Unlock()
	})
	c.Start()
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 1, 0}, seen)
	assert.Equal(t, 0, c.Remaining())
}

func TestCountdownStopCancelsTicking(t *testing.T) {
	c := newCountdownWithInterval(1000, time.Millisecond, nil)
	c.Start()

	time.Sleep(5 * time.Millisecond)
	c.Stop()
	c.Wait()

	remaining := c.Remaining()
	assert.Greater(t, remaining, 0, "a canceled countdown keeps its last value")

	// Stop is idempotent.
	c.Stop()
}

func TestCountdownAtZeroCompletesImmediately(t *testing.T) {
	ticked := false
	c := NewCountdown(0, func(int) { ticked = true })
	c.Start()
	c.Wait()

	assert.False(t, ticked)
	assert.Equal(t, 0, c.Remaining())
}

package situation

import (
	"sync"
	"time"
)

// Countdown ticks a display value down to zero, once per second. It is
// purely presentational: reaching zero stops the ticker and nothing else.
// The vehicle record has to be refreshed externally before a new countdown
// makes sense.
type Countdown struct {
	interval time.Duration
	onTick   func(remaining int)

	mu        sync.Mutex
	remaining int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCountdown creates a countdown from seconds. onTick is invoked after
// every tick with the updated value, including the final zero. A nil onTick
// is allowed.
func NewCountdown(seconds int, onTick func(remaining int)) *Countdown {
	return newCountdownWithInterval(seconds, time.Second, onTick)
}

func newCountdownWithInterval(seconds int, interval time.Duration, onTick func(remaining int)) *Countdown {
	return &Countdown{
		interval:  interval,
		onTick:    onTick,
		remaining: seconds,
		done:      make(chan struct{}),
	}
}

// Start begins ticking. A countdown that starts at or below zero completes
// immediately.
func (c *Countdown) Start() {
	if c.Remaining() <= 0 {
		c.Stop()
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.tick() {
					c.Stop()
					return
				}
			case <-c.done:
				return
			}
		}
	}()
}

// tick decrements and reports whether the countdown has finished.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(remaining)
	}
	return remaining <= 0
}

// Remaining returns the current display value in seconds.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop cancels the countdown. Safe to call multiple times and after
// completion.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// Wait blocks until the ticking goroutine has exited.
func (c *Countdown) Wait() {
	c.wg.Wait()
}

package session

import (
	"context"
	"sync"
	"time"
)

type tickerFunc func(d time.Duration) (ticks <-chan time.Time, stop func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// countdown is the per-question timer. It counts whole seconds down from
// full while running and unpaused, and calls onExpire exactly once when it
// reaches zero unless rearmed. Only one ticking task exists at a time. The
// context passed to onExpire is the task's own and is cancelled by stop.
type countdown struct {
	full      int
	newTicker tickerFunc
	onTick    func(left int)
	onExpire  func(ctx context.Context)

	mu      sync.Mutex
	left    int
	paused  bool
	expired bool
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

func newCountdown(full int, onTick func(int), onExpire func(context.Context)) *countdown {
	return &countdown{
		full:      full,
		left:      full,
		newTicker: realTicker,
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// restart resets to the full duration and starts a fresh task, cancelling
// the previous one without waiting for it.
func (c *countdown) restart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.left = c.full
	c.paused = false
	c.expired = false

	ctx, cancel := context.WithCancel(context.Background())
	ticks, stopTicker := c.newTicker(time.Second)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	gen := c.gen

	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				c.tick(ctx, gen)
			}
		}
	}()
}

func (c *countdown) tick(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.paused || c.expired {
		c.mu.Unlock()
		return
	}
	if c.left > 0 {
		c.left--
	}
	left := c.left
	fire := left == 0
	if fire {
		c.expired = true
	}
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(left)
	}
	if fire && c.onExpire != nil {
		c.onExpire(ctx)
	}
}

// rearm lets the next tick at zero call onExpire again. It is for an expiry
// that could not act, and does nothing once the countdown has restarted.
func (c *countdown) rearm() {
	c.mu.Lock()
	if c.left == 0 {
		c.expired = false
	}
	c.mu.Unlock()
}

func (c *countdown) pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *countdown) resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// stop cancels the running task, keeps the remaining time and returns a
// channel closed once the task has exited.
func (c *countdown) stop() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

// reset stops the task and restores the full duration.
func (c *countdown) reset() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := c.stopLocked()
	c.left = c.full
	c.paused = false
	c.expired = false
	return done
}

func (c *countdown) stopLocked() <-chan struct{} {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	done := c.done
	c.done = nil
	if done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return done
}

func (c *countdown) remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}

package threads

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/runtime-analysis/pkg/utils"
)

// ContextSwitcher periodically asks the thread holding the runtime lock
// to yield, by raising the preempt interrupt on the stack guard. It is a
// cancellable timer task owned by the runtime: starting it twice only
// updates the interval, and stopping joins the timer goroutine.
type ContextSwitcher struct {
	guard  *StackGuard
	clock  utils.Clock
	logger utils.Logger

	interval atomic.Int64

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewContextSwitcher creates a stopped switcher.
func NewContextSwitcher(guard *StackGuard, clock utils.Clock, logger utils.Logger) *ContextSwitcher {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}
	return &ContextSwitcher{guard: guard, clock: clock, logger: logger}
}

// StartPreemption starts preempting the lock holder every interval. If
// preemption is already running, only the interval changes; it takes
// effect after the current tick.
func (c *ContextSwitcher) StartPreemption(interval time.Duration) {
	c.interval.Store(int64(interval))
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
	c.logger.Debug("preemption started, interval %s", interval)
}

// StopPreemption stops the timer and waits for the goroutine to exit.
// Stopping a stopped switcher is a no-op.
func (c *ContextSwitcher) StopPreemption() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	<-done
	c.logger.Debug("preemption stopped")
}

// Running reports whether the timer goroutine is active.
func (c *ContextSwitcher) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *ContextSwitcher) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		interval := time.Duration(c.interval.Load())
		select {
		case <-stop:
			return
		case <-c.clock.After(interval):
			c.guard.Preempt()
		}
	}
}

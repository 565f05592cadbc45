// Package clock models the monotonically increasing tick counter spec.md
// §2 item 1 describes as advanced "by the timer interrupt handler", and
// the single accounting hook invoked from it.
package clock

import "sync"

// Hook is invoked once per tick, after Clock has advanced Ticks, with the
// new tick value. The core registers its accounting sweep (spec.md §4.4)
// here; the CLI's benchmark harness and the ui package's refresh timer can
// register their own observers the same way.
type Hook func(tick int64)

// Clock is the tick source. It is deliberately not a real-time ticker:
// spec.md models ticks as an abstract monotonic counter driven by
// whatever timer-interrupt analog the caller provides (here, explicit
// Tick() calls from the scheduler's simulation driver, paced by a
// time.Ticker loop in the CLI).
type Clock struct {
	mu    sync.Mutex
	ticks int64
	hooks []Hook
}

// New returns a Clock starting at tick 0.
func New() *Clock { return &Clock{} }

// Register adds a hook to be invoked on every subsequent Tick, in
// registration order.
func (c *Clock) Register(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Tick advances the clock by one and invokes every registered hook with
// the new value, in order. The ordering guarantee in spec.md §5 ("ticks
// are totally ordered; per-tick updates appear atomic to observers") is
// satisfied because hooks run synchronously and in sequence here.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	c.ticks++
	now := c.ticks
	hooks := c.hooks
	c.mu.Unlock()

	for _, h := range hooks {
		h(now)
	}
	return now
}

// Now returns the current tick value without advancing it.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Package clock provides the single process-wide ticking source every
// time-dependent component subscribes to. Exactly one timer runs no matter
// how many sessions are on screen; it starts with the first subscriber and
// stops with the last.
package clock

import (
	"sync"
	"time"
)

type Clock struct {
	mu       sync.Mutex
	interval time.Duration
	subs     map[int]func(now time.Time)
	nextID   int

	ticker *time.Ticker
	stopCh chan struct{}
}

// Subscription is the disposable handle returned by Subscribe. Disposal is
// idempotent; dropping the last subscription stops the underlying timer.
type Subscription struct {
	once  sync.Once
	clock *Clock
	id    int
}

func New(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = time.Second
	}
	return &Clock{
		interval: interval,
		subs:     make(map[int]func(time.Time)),
	}
}

func (c *Clock) Now() time.Time {
	return time.Now()
}

// Subscribe registers fn to run on every tick. The first subscriber starts
// the timer lazily.
func (c *Clock) Subscribe(fn func(now time.Time)) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	if len(c.subs) == 1 {
		c.start()
	}

	return &Subscription{clock: c, id: id}
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.clock.remove(s.id)
	})
}

func (c *Clock) remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.subs[id]; !ok {
		return
	}
	delete(c.subs, id)

	if len(c.subs) == 0 {
		c.stop()
	}
}

func (c *Clock) SubscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Running reports whether the underlying timer is live. Exposed for tests
// and diagnostics.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticker != nil
}

// start and stop require c.mu held.
func (c *Clock) start() {
	c.ticker = time.NewTicker(c.interval)
	c.stopCh = make(chan struct{})

	go c.loop(c.ticker, c.stopCh)
}

func (c *Clock) stop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.stopCh)
	c.ticker = nil
	c.stopCh = nil
}

func (c *Clock) loop(ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case now := <-ticker.C:
			c.fanout(now)
		case <-stopCh:
			return
		}
	}
}

// fanout snapshots the subscriber set and invokes callbacks outside the
// lock, so a callback may unsubscribe (itself included) without
// deadlocking. Consumers must tolerate coarse ticks; every callback gets
// the same now.
func (c *Clock) fanout(now time.Time) {
	c.mu.Lock()
	fns := make([]func(time.Time), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(now)
	}
}

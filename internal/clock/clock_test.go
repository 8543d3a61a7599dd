package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeStartsAndStopsTheTicker(t *testing.T) {
	c := New(10 * time.Millisecond)
	assert.False(t, c.Running(), "no subscribers, no timer")

	sub1 := c.Subscribe(func(time.Time) {})
	assert.True(t, c.Running())
	assert.Equal(t, 1, c.SubscriberCount())

	sub2 := c.Subscribe(func(time.Time) {})
	assert.True(t, c.Running())
	assert.Equal(t, 2, c.SubscriberCount())

	sub1.Unsubscribe()
	assert.True(t, c.Running(), "one subscriber remains")

	sub2.Unsubscribe()
	assert.False(t, c.Running(), "last unsubscribe stops the timer")
	assert.Zero(t, c.SubscriberCount())
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	c := New(10 * time.Millisecond)

	sub1 := c.Subscribe(func(time.Time) {})
	sub2 := c.Subscribe(func(time.Time) {})

	sub1.Unsubscribe()
	sub1.Unsubscribe()
	sub1.Unsubscribe()

	// Double disposal of sub1 must not have evicted sub2.
	assert.Equal(t, 1, c.SubscriberCount())
	assert.True(t, c.Running())

	sub2.Unsubscribe()
	assert.False(t, c.Running())
}

func TestAllSubscribersReceiveTicks(t *testing.T) {
	c := New(5 * time.Millisecond)

	var first, second atomic.Int32
	sub1 := c.Subscribe(func(time.Time) { first.Add(1) })
	sub2 := c.Subscribe(func(time.Time) { second.Add(1) })
	defer sub1.Unsubscribe()
	defer sub2.Unsubscribe()

	require.Eventually(t, func() bool {
		return first.Load() >= 2 && second.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestCallbackMayUnsubscribeItself(t *testing.T) {
	c := New(5 * time.Millisecond)

	var fired atomic.Int32
	var sub *Subscription
	sub = c.Subscribe(func(time.Time) {
		fired.Add(1)
		sub.Unsubscribe()
	})

	require.Eventually(t, func() bool {
		return fired.Load() >= 1 && !c.Running()
	}, time.Second, 5*time.Millisecond)

	ticks := fired.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticks, fired.Load(), "no ticks after self-unsubscribe")
}

func TestResubscribeRestartsTheTicker(t *testing.T) {
	c := New(5 * time.Millisecond)

	sub := c.Subscribe(func(time.Time) {})
	sub.Unsubscribe()
	require.False(t, c.Running())

	var fired atomic.Int32
	sub = c.Subscribe(func(time.Time) { fired.Add(1) })
	defer sub.Unsubscribe()

	assert.True(t, c.Running())
	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestNewDefaultsNonPositiveInterval(t *testing.T) {
	c := New(0)
	assert.Equal(t, time.Second, c.interval)

	c = New(-time.Minute)
	assert.Equal(t, time.Second, c.interval)
}

package feed

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/revealboard/revealboard/pkg/types"
)

// ErrUnknownSide is returned by Increment for a side other than "a" or "b".
var ErrUnknownSide = errors.New("side must be a or b")

// Counter holds the current pair and fans changes out to subscribers.
// UpdatedAt never moves backwards, even if the clock does.
type Counter struct {
	mu   sync.Mutex
	pair types.ValuePair
	subs map[chan types.ValuePair]struct{}
	now  func() time.Time
}

// NewCounter creates a Counter starting at a, b. A nil now uses time.Now.
func NewCounter(a, b float64, now func() time.Time) *Counter {
	if now == nil {
		now = time.Now
	}
	return &Counter{
		pair: types.ValuePair{A: a, B: b, UpdatedAt: now().UTC()},
		subs: make(map[chan types.ValuePair]struct{}),
		now:  now,
	}
}

// Get returns the current pair.
func (c *Counter) Get() types.ValuePair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pair
}

// Set replaces both values.
func (c *Counter) Set(a, b float64) (types.ValuePair, error) {
	if err := checkValue(a); err != nil {
		return types.ValuePair{}, fmt.Errorf("a: %w", err)
	}
	if err := checkValue(b); err != nil {
		return types.ValuePair{}, fmt.Errorf("b: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pair.A, c.pair.B = a, b
	c.publishLocked()
	return c.pair, nil
}

// Increment adds by to one side.
func (c *Counter) Increment(side string, by float64) (types.ValuePair, error) {
	if math.IsNaN(by) || math.IsInf(by, 0) {
		return types.ValuePair{}, fmt.Errorf("by: must be finite")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.pair
	switch side {
	case "a":
		next.A += by
	case "b":
		next.B += by
	default:
		return types.ValuePair{}, ErrUnknownSide
	}
	if next.A < 0 || next.B < 0 {
		return types.ValuePair{}, fmt.Errorf("%s: must not go below zero", side)
	}
	c.pair = next
	c.publishLocked()
	return c.pair, nil
}

// Subscribe returns a channel that receives the pair after every change.
// A slow subscriber only sees the latest pair. The returned function
// unsubscribes and closes the channel.
func (c *Counter) Subscribe() (<-chan types.ValuePair, func()) {
	ch := make(chan types.ValuePair, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of active subscribers.
func (c *Counter) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// publishLocked stamps the pair and delivers it. Callers hold c.mu.
func (c *Counter) publishLocked() {
	ts := c.now().UTC()
	if ts.Before(c.pair.UpdatedAt) {
		ts = c.pair.UpdatedAt
	}
	c.pair.UpdatedAt = ts

	for ch := range c.subs {
		select {
		case ch <- c.pair:
		default:
			// Replace the undelivered pair with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- c.pair
		}
	}
}

func checkValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("must be finite")
	}
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

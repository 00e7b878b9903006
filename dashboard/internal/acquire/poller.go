package acquire

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/revealboard/revealboard/dashboard/internal/store"
)

// DefaultPollInterval is the delay between the end of one attempt and the
// start of the next.
const DefaultPollInterval = 5 * time.Second

// Poller runs a Fetcher in a sequential loop. The next attempt is scheduled
// only after the previous one settles, so requests never overlap.
type Poller struct {
	fetcher   Fetcher
	store     *store.Store
	interval  time.Duration
	transport string

	running atomic.Bool
}

// NewPoller returns a Poller that records results in st under the given
// transport name. A non-positive interval falls back to DefaultPollInterval.
func NewPoller(f Fetcher, st *store.Store, interval time.Duration, transport string) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetcher:   f,
		store:     st,
		interval:  interval,
		transport: transport,
	}
}

// Interval returns the delay between attempts.
func (p *Poller) Interval() time.Duration { return p.interval }

// Tick performs one attempt and records the outcome. An attempt whose
// context is cancelled while in flight leaves the store untouched.
func (p *Poller) Tick(ctx context.Context) error {
	pair, err := p.fetcher.Fetch(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		msg := Message(err)
		p.store.Fail(msg)
		slog.Warn("acquire: poll failed", "transport", p.transport, "err", msg)
		return err
	}
	p.store.Update(pair)
	slog.Debug("acquire: poll succeeded", "transport", p.transport, "a", pair.A, "b", pair.B)
	return nil
}

// Run ticks immediately, then once per interval after each attempt
// completes, until ctx is cancelled. Only one loop may run at a time; a
// concurrent call returns ErrRunning without issuing a request.
func (p *Poller) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer p.running.Store(false)

	p.store.SetTransport(p.transport)

	for {
		p.Tick(ctx) //nolint:errcheck // recorded in the store
		if ctx.Err() != nil {
			return nil
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

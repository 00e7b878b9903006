package acquire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/store"
)

// Selector owns the acquisition lifecycle: push first when a Stream is
// configured, then polling for the rest of its lifetime.
type Selector struct {
	stream *Stream // nil in poll and sheet modes
	poller *Poller
	store  *store.Store
}

// NewSelector wires a Selector. stream may be nil.
func NewSelector(st *store.Store, stream *Stream, poller *Poller) *Selector {
	return &Selector{stream: stream, poller: poller, store: st}
}

// New builds the Selector for src's mode.
func New(src config.Source, st *store.Store) (*Selector, error) {
	pollClient := buildHTTPClient(src, src.RequestTimeout)

	switch src.Mode {
	case config.ModeStream:
		stream := NewStream(src.StreamURL(), buildHTTPClient(src, 0), st)
		stream.SetIdleTimeout(src.StreamIdleTimeout)
		poller := NewPoller(NewValuesFetcher(src.ValuesURL(), pollClient), st, src.PollInterval, store.TransportPoll)
		return NewSelector(st, stream, poller), nil
	case config.ModePoll:
		poller := NewPoller(NewValuesFetcher(src.ValuesURL(), pollClient), st, src.PollInterval, store.TransportPoll)
		return NewSelector(st, nil, poller), nil
	case config.ModeSheet:
		poller := NewPoller(NewSheetFetcher(src.Sheet, pollClient), st, src.Sheet.Interval, store.TransportSheet)
		return NewSelector(st, nil, poller), nil
	default:
		return nil, fmt.Errorf("acquire: unsupported mode %q", src.Mode)
	}
}

// Run acquires until ctx is cancelled. When the push channel fails, the
// failure is recorded as LastError and polling starts at once, without the
// initial delay. The push channel is never retried. The store is closed
// when Run returns, so no mutation can follow teardown.
func (s *Selector) Run(ctx context.Context) error {
	defer s.store.Close()

	if s.stream != nil {
		err := s.stream.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		s.store.Fail(Message(err))
		slog.Warn("acquire: push channel failed, falling back to polling",
			"err", err, "poll_interval", s.poller.Interval())
	}

	return s.poller.Run(ctx)
}

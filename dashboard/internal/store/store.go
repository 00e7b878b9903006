package store

import (
	"sync"
	"time"

	"github.com/revealboard/revealboard/pkg/types"
)

// Transport names recorded in State.Transport.
const (
	TransportStream = "stream"
	TransportPoll   = "poll"
	TransportSheet  = "sheet"
)

// State is an immutable copy of the acquisition state.
type State struct {
	// Current is nil until the first successful acquisition.
	Current *types.ValuePair

	// LastError is empty when the most recent attempt succeeded.
	LastError string

	// Transport is the acquisition path currently feeding the store.
	Transport string

	// ChangedAt is when any field of the state last changed.
	ChangedAt time.Time

	Updates  uint64 // pairs applied
	Failures uint64 // failed attempts
	Dropped  uint64 // malformed stream messages ignored
	Stale    uint64 // out-of-order pairs, not applied
}

// MaxFutureSkew is how far ahead of the store clock a pair's timestamp may
// be and still order later pairs. A pair stamped further ahead is applied
// but does not become the out-of-order reference.
const MaxFutureSkew = time.Minute

// Store is a thread-safe holder for State. All mutations replace the state
// as a whole under the lock. After Close every mutation is a no-op.
type Store struct {
	mu     sync.RWMutex
	state  State
	closed bool
	mark   time.Time // newest trusted UpdatedAt; older pairs are stale
	subs   map[chan struct{}]struct{}
	now    func() time.Time // injectable for deterministic tests
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		subs: make(map[chan struct{}]struct{}),
		now:  time.Now,
	}
}

// NewWithClock creates a Store that uses now for ChangedAt and for stamping
// pairs without a timestamp.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Update applies a successfully acquired pair and clears LastError. A pair
// without a timestamp is stamped with the store clock. A pair older than
// the newest trusted timestamp is counted as stale and not applied;
// LastError is still cleared because the source answered. Timestamps more
// than MaxFutureSkew ahead of the clock are applied but never trusted, so a
// source with a bad clock cannot freeze the display. Update reports whether
// the pair was applied.
func (s *Store) Update(p types.ValuePair) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	now := s.now()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now.UTC()
	}

	next := s.state
	applied := true
	if p.UpdatedAt.Before(s.mark) {
		applied = false
		next.Stale++
	} else {
		pair := p
		next.Current = &pair
		next.Updates++
		if !p.UpdatedAt.After(now.Add(MaxFutureSkew)) {
			s.mark = p.UpdatedAt
		}
	}
	next.LastError = ""
	next.ChangedAt = now
	s.state = next
	s.mu.Unlock()

	s.notify()
	return applied
}

// Fail records a failed attempt. Current is left untouched.
func (s *Store) Fail(msg string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next := s.state
	next.LastError = msg
	next.Failures++
	next.ChangedAt = s.now()
	s.state = next
	s.mu.Unlock()

	s.notify()
}

// Drop counts a malformed push message. It does not touch LastError and
// does not notify subscribers since nothing visible changed.
func (s *Store) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.Dropped++
}

// SetTransport records which acquisition path is active.
func (s *Store) SetTransport(name string) {
	s.mu.Lock()
	if s.closed || s.state.Transport == name {
		s.mu.Unlock()
		return
	}
	next := s.state
	next.Transport = name
	next.ChangedAt = s.now()
	s.state = next
	s.mu.Unlock()

	s.notify()
}

// Close freezes the store. Snapshot keeps returning the last state and
// subscriber channels are closed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subs {
		close(ch)
		delete(s.subs, ch)
	}
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Subscribe returns a channel that receives a signal after every visible
// state change. Signals coalesce: a slow reader sees at most one pending
// signal. The returned function unsubscribes. On a closed store the channel
// is returned already closed.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func copyState(st State) State {
	if st.Current != nil {
		pair := *st.Current
		st.Current = &pair
	}
	return st
}

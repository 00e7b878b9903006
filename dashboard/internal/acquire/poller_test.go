package acquire_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/revealboard/revealboard/dashboard/internal/acquire"
	"github.com/revealboard/revealboard/dashboard/internal/store"
	"github.com/revealboard/revealboard/pkg/types"
)

func TestPoller_TickSuccess(t *testing.T) {
	st := store.New()
	st.Fail("earlier")
	f := &fakeFetcher{pair: types.ValuePair{A: 2, B: 3, UpdatedAt: t0}}
	p := acquire.NewPoller(f, st, testInterval, store.TransportPoll)

	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	s := st.Snapshot()
	if s.Current == nil || s.Current.A != 2 || s.Current.B != 3 {
		t.Fatalf("Current: got %+v", s.Current)
	}
	if s.LastError != "" {
		t.Errorf("LastError: got %q, want empty", s.LastError)
	}
}

func TestPoller_TickFailureKeepsCurrent(t *testing.T) {
	st := store.New()
	st.Update(types.ValuePair{A: 7, B: 1, UpdatedAt: t0})

	f := &fakeFetcher{err: &acquire.FetchError{Status: http.StatusBadGateway}}
	p := acquire.NewPoller(f, st, testInterval, store.TransportPoll)
	if err := p.Tick(context.Background()); err == nil {
		t.Fatal("Tick: expected error")
	}

	s := st.Snapshot()
	if s.Current == nil || s.Current.A != 7 || s.Current.B != 1 {
		t.Errorf("Current: got %+v, want unchanged 7/1", s.Current)
	}
	if s.LastError != "HTTP 502" {
		t.Errorf("LastError: got %q, want HTTP 502", s.LastError)
	}
}

func TestPoller_TickEmptyErrorUsesFallback(t *testing.T) {
	st := store.New()
	p := acquire.NewPoller(&fakeFetcher{err: errors.New("")}, st, testInterval, store.TransportPoll)
	p.Tick(context.Background()) //nolint:errcheck

	if got := st.Snapshot().LastError; got != "fetch error" {
		t.Errorf("LastError: got %q, want fetch error", got)
	}
}

func TestPoller_HTTP500ScheduledAfterDelay(t *testing.T) {
	b := newBackend(t)
	b.setValues(
		[]int{http.StatusOK, http.StatusInternalServerError},
		[]string{`{"a":3,"b":5,"updatedAt":"2024-01-01T00:00:00Z"}`, `oops`},
	)

	st := store.New()
	interval := 60 * time.Millisecond
	p := acquire.NewPoller(acquire.NewValuesFetcher(b.srv.URL+"/api/values", b.srv.Client()), st, interval, store.TransportPoll)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, "HTTP 500 recorded", func() bool { return st.Snapshot().LastError == "HTTP 500" })
	s := st.Snapshot()
	if s.Current == nil || s.Current.A != 3 || s.Current.B != 5 {
		t.Errorf("Current after 500: got %+v, want 3/5", s.Current)
	}

	waitFor(t, "third poll", func() bool { return b.polls.Load() >= 3 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	times := b.times()
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < interval {
			t.Errorf("poll %d started %v after previous, want >= %v", i, gap, interval)
		}
	}
}

func TestPoller_RunIsIdempotent(t *testing.T) {
	st := store.New()
	f := &fakeFetcher{started: make(chan struct{}, 4), release: make(chan struct{})}
	p := acquire.NewPoller(f, st, time.Hour, store.TransportPoll)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- p.Run(ctx) }()
	}

	select {
	case err := <-errs:
		if !errors.Is(err, acquire.ErrRunning) {
			t.Fatalf("second Run: got %v, want ErrRunning", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second Run did not return")
	}
	<-f.started
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetch calls: got %d, want 1", n)
	}

	cancel()
	if err := <-errs; err != nil {
		t.Errorf("first Run: got %v, want nil", err)
	}
}

func TestPoller_TeardownStopsRequestsAndMutations(t *testing.T) {
	st := store.New()
	f := &fakeFetcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	p := acquire.NewPoller(f, st, testInterval, store.TransportPoll)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	<-f.started // request in flight
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := st.Snapshot()
	if s.LastError != "" || s.Failures != 0 || s.Current != nil {
		t.Errorf("store mutated by cancelled attempt: %+v", s)
	}

	time.Sleep(3 * testInterval)
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetch calls after teardown: got %d, want 1", n)
	}
}

func TestPoller_RestartAfterTeardown(t *testing.T) {
	st := store.New()
	f := &fakeFetcher{pair: types.ValuePair{A: 1, B: 2}}
	p := acquire.NewPoller(f, st, time.Hour, store.TransportPoll)

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx) }()
		waitFor(t, "tick", func() bool { return f.calls.Load() == int32(i+1) })
		cancel()
		if err := <-done; err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}
}

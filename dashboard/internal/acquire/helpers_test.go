package acquire_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/revealboard/revealboard/dashboard/internal/store"
	"github.com/revealboard/revealboard/pkg/types"
)

const testInterval = 30 * time.Millisecond

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// backend is a scripted test server for /api/values and /api/stream.
type backend struct {
	srv *httptest.Server

	mu         sync.Mutex
	valueCodes []int    // status per poll request; the last entry repeats
	valueBody  []string // body per poll request; the last entry repeats
	pollTimes  []time.Time

	polls   atomic.Int32
	streams atomic.Int32

	// stream writes the push response; nil means 404.
	stream func(w http.ResponseWriter, r *http.Request)
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/values", b.serveValues)
	mux.HandleFunc("/api/stream", func(w http.ResponseWriter, r *http.Request) {
		b.streams.Add(1)
		b.mu.Lock()
		handler := b.stream
		b.mu.Unlock()
		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) serveValues(w http.ResponseWriter, r *http.Request) {
	n := int(b.polls.Add(1)) - 1

	b.mu.Lock()
	b.pollTimes = append(b.pollTimes, time.Now())
	code, body := http.StatusOK, `{"a":1,"b":1}`
	if len(b.valueCodes) > 0 {
		code = b.valueCodes[min(n, len(b.valueCodes)-1)]
	}
	if len(b.valueBody) > 0 {
		body = b.valueBody[min(n, len(b.valueBody)-1)]
	}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprint(w, body)
}

func (b *backend) setStream(h func(http.ResponseWriter, *http.Request)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stream = h
}

func (b *backend) setValues(codes []int, bodies []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.valueCodes, b.valueBody = codes, bodies
}

func (b *backend) times() []time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]time.Time(nil), b.pollTimes...)
}

// sse returns a stream handler that writes frames then holds the connection
// open until the client goes away.
func sse(frames ...string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fl := w.(http.Flusher)
		for _, f := range frames {
			fmt.Fprint(w, f)
			fl.Flush()
		}
		<-r.Context().Done()
	}
}

// fakeFetcher returns scripted results and counts calls.
type fakeFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{} // when non-nil, Fetch blocks until closed or ctx done

	pair types.ValuePair
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context) (types.ValuePair, error) {
	f.calls.Add(1)
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return types.ValuePair{}, ctx.Err()
		}
	}
	return f.pair, f.err
}

func current(st *store.Store) *types.ValuePair { return st.Snapshot().Current }

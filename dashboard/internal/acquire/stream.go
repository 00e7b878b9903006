package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/store"
	"github.com/revealboard/revealboard/pkg/types"
)

// errClosedByServer is the cause reported when the backend ends the stream.
var errClosedByServer = errors.New("connection closed by server")

// errIdle is the cause reported when the channel stays silent too long.
var errIdle = errors.New("no data received")

// Stream consumes the push channel and writes every valid pair to the store.
type Stream struct {
	url    string
	client *http.Client
	store  *store.Store
	idle   time.Duration
}

// NewStream returns a Stream for url. client must not carry an overall
// timeout, or the connection is cut after it elapses.
func NewStream(url string, client *http.Client, st *store.Store) *Stream {
	return &Stream{url: url, client: client, store: st, idle: config.DefaultStreamIdleTimeout}
}

// SetIdleTimeout sets how long the channel may go without any bytes,
// keep-alive comments included, before Run gives up on it. Zero disables
// the check. It must be called before Run.
func (s *Stream) SetIdleTimeout(d time.Duration) { s.idle = d }

// Run opens the channel and consumes it until it fails or ctx is cancelled.
// It returns nil on cancellation and a *TransportError on any channel
// failure, including the server closing the stream. The connection is
// closed before Run returns.
func (s *Stream) Run(ctx context.Context) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := newRequest(connCtx, s.url, "text/event-stream")
	if err != nil {
		return &TransportError{Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return &TransportError{Err: fmt.Errorf("connect: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Err: fmt.Errorf("handshake: HTTP %d", resp.StatusCode)}
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		return &TransportError{Err: fmt.Errorf("handshake: unexpected content type %q", resp.Header.Get("Content-Type"))}
	}

	s.store.SetTransport(store.TransportStream)
	slog.Info("acquire: stream connected", "url", s.url)

	var body io.Reader = resp.Body
	var watchdog *idleReader
	if s.idle > 0 {
		watchdog = newIdleReader(resp.Body, s.idle, cancel)
		defer watchdog.stop()
		body = watchdog
	}

	err = readEvents(body, func(ev event) { s.handle(ctx, ev) })
	if ctx.Err() != nil {
		return nil
	}
	if watchdog != nil && watchdog.expired() {
		err = fmt.Errorf("%w for %s", errIdle, s.idle)
	} else if err == nil {
		err = errClosedByServer
	}
	return &TransportError{Err: err}
}

// handle applies one event. Malformed payloads are dropped without
// touching LastError.
func (s *Stream) handle(ctx context.Context, ev event) {
	if ctx.Err() != nil || !ev.valueEvent() {
		return
	}
	pair, err := types.ParseValuePair([]byte(ev.Data))
	if err != nil {
		s.store.Drop()
		slog.Debug("acquire: dropped malformed stream message", "err", err)
		return
	}
	s.store.Update(pair)
}

// idleReader calls cancel when no bytes arrive for d.
type idleReader struct {
	r     io.Reader
	d     time.Duration
	timer *time.Timer
	fired atomic.Bool
}

func newIdleReader(r io.Reader, d time.Duration, cancel context.CancelFunc) *idleReader {
	ir := &idleReader{r: r, d: d}
	ir.timer = time.AfterFunc(d, func() {
		ir.fired.Store(true)
		cancel()
	})
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 && !ir.fired.Load() {
		ir.timer.Reset(ir.d)
	}
	return n, err
}

func (ir *idleReader) expired() bool { return ir.fired.Load() }

func (ir *idleReader) stop() { ir.timer.Stop() }

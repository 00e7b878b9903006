package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// KeepAliveInterval is how often an idle stream receives a comment line.
const KeepAliveInterval = 15 * time.Second

// Server serves a Counter over HTTP.
type Server struct {
	addr      string
	counter   *Counter
	keepAlive time.Duration
	startTime time.Time
}

// NewServer creates a Server for c listening on addr.
func NewServer(addr string, c *Counter) *Server {
	if addr == "" {
		addr = "0.0.0.0:8081"
	}
	return &Server{addr: addr, counter: c, keepAlive: KeepAliveInterval, startTime: time.Now()}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/values", s.handleValues)
	r.POST("/api/values", s.handleSet)
	r.POST("/api/values/:side/increment", s.handleIncrement)
	r.GET("/api/stream", s.handleStream)

	return r
}

// Run listens on the server's address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. Open streams end with ctx
// because every request context derives from it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("feed: listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// --- handlers ---------------------------------------------------------------

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"subscribers":    s.counter.Subscribers(),
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleValues(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, s.counter.Get())
}

type setRequest struct {
	A *float64 `json:"a" binding:"required"`
	B *float64 `json:"b" binding:"required"`
}

func (s *Server) handleSet(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing a/b field"})
		return
	}
	pair, err := s.counter.Set(*req.A, *req.B)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pair)
}

type incrementRequest struct {
	By *float64 `json:"by"`
}

func (s *Server) handleIncrement(c *gin.Context) {
	by := 1.0
	if c.Request.ContentLength != 0 {
		var req incrementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		if req.By != nil {
			by = *req.By
		}
	}

	pair, err := s.counter.Increment(c.Param("side"), by)
	switch {
	case errors.Is(err, ErrUnknownSide):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, pair)
	}
}

// handleStream sends the current pair at once, then one "values" event per
// change until the client goes away.
func (s *Server) handleStream(c *gin.Context) {
	updates, unsubscribe := s.counter.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	first := true
	c.Stream(func(w io.Writer) bool {
		if first {
			first = false
			return sse.Encode(w, sse.Event{Event: "values", Data: s.counter.Get()}) == nil
		}
		select {
		case <-ctx.Done():
			return false
		case pair, ok := <-updates:
			if !ok {
				return false
			}
			return sse.Encode(w, sse.Event{Event: "values", Data: pair}) == nil
		case <-keepAlive.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}

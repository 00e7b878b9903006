package config

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events one editor save produces.
const reloadDelay = 100 * time.Millisecond

// Reloader keeps the active Config in step with the file at path.
// Presentation settings (title, labels, chart colours) apply live and are
// handed to the apply callback. Every other setting is read once at
// startup: a change to one is logged and left out of the active Config
// until the process restarts.
type Reloader struct {
	path  string
	apply func(*Config)
	delay time.Duration

	mu     sync.Mutex
	active *Config
}

// NewReloader returns a Reloader for path starting from initial. apply is
// called with the new active Config whenever a reload changes a live setting.
func NewReloader(path string, initial *Config, apply func(*Config)) *Reloader {
	return &Reloader{path: path, apply: apply, delay: reloadDelay, active: initial}
}

// Active returns the Config currently in effect.
func (r *Reloader) Active() *Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Reload reads the file once and merges it into the active Config. It
// reports whether apply was called. On a load error the active Config is
// kept.
func (r *Reloader) Reload() (bool, error) {
	loaded, err := Load(r.path)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	old := r.active
	if fields := startupChanges(old, loaded); len(fields) > 0 {
		slog.Warn("config: restart to apply", "path", r.path, "fields", fields)
	}
	if liveEqual(old, loaded) {
		r.mu.Unlock()
		slog.Debug("config: reloaded, no live changes", "path", r.path)
		return false, nil
	}
	next := *old
	next.Dashboard.Title = loaded.Dashboard.Title
	next.Labels = loaded.Labels
	next.Chart = loaded.Chart
	r.active = &next
	r.mu.Unlock()

	slog.Info("config: reloaded", "path", r.path, "title", next.Dashboard.Title)
	r.apply(&next)
	return true, nil
}

// Watch reloads the file each time it is written until ctx is cancelled.
// Failed reloads are logged and the previous config stays active.
func (r *Reloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(r.path); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", r.path)

	timer := time.NewTimer(r.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so Create counts as a write.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(r.delay)
			}

		case <-timer.C:
			if _, err := r.Reload(); err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", r.path, "err", err)
			}
			// An atomic save replaces the inode.
			_ = watcher.Add(r.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func liveEqual(a, b *Config) bool {
	return a.Dashboard.Title == b.Dashboard.Title &&
		a.Labels == b.Labels &&
		a.Chart.DefaultColor == b.Chart.DefaultColor &&
		maps.Equal(a.Chart.Colors, b.Chart.Colors)
}

// startupChanges lists the YAML keys of startup-only settings that differ
// between old and updated.
func startupChanges(old, updated *Config) []string {
	var out []string
	diff := func(key string, changed bool) {
		if changed {
			out = append(out, key)
		}
	}
	diff("dashboard.http_port", old.Dashboard.HTTPPort != updated.Dashboard.HTTPPort)
	diff("dashboard.broadcast_interval", old.Dashboard.BroadcastInterval != updated.Dashboard.BroadcastInterval)

	a, b := old.Source, updated.Source
	diff("source.mode", a.Mode != b.Mode)
	diff("source.base_url", a.Base() != b.Base())
	diff("source.poll_interval", a.PollInterval != b.PollInterval)
	diff("source.request_timeout", a.RequestTimeout != b.RequestTimeout)
	diff("source.handshake_timeout", a.HandshakeTimeout != b.HandshakeTimeout)
	diff("source.stream_idle_timeout", a.StreamIdleTimeout != b.StreamIdleTimeout)
	diff("source.tls", a.TLS != b.TLS)
	diff("source.sheet", a.Sheet != b.Sheet)
	return out
}

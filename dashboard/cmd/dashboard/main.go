package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/revealboard/revealboard/dashboard/internal/acquire"
	"github.com/revealboard/revealboard/dashboard/internal/api"
	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/metrics"
	"github.com/revealboard/revealboard/dashboard/internal/store"
	"github.com/revealboard/revealboard/dashboard/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	watch := flag.Bool("watch", true, "reload title, labels and colours when the config file changes")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("revealboard-dashboard starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Dashboard.HTTPPort,
		"mode", cfg.Source.Mode,
		"base_url", cfg.Source.Base(),
		"poll_interval", cfg.Source.PollInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New()
	sel, err := acquire.New(cfg.Source, st)
	if err != nil {
		slog.Error("failed to build acquisition", "err", err)
		os.Exit(1)
	}

	presenter := api.NewPresenter(st, api.ViewFromConfig(cfg))
	hub := ws.New(presenter, cfg.Dashboard.BroadcastInterval)

	httpMux := http.NewServeMux()
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", metrics.Handler(presenter, hub.Count))
	httpMux.Handle("/", api.New(presenter))

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Dashboard.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sel.Run(gctx)
	})

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Dashboard.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if *watch {
		reloader := config.NewReloader(*configPath, cfg, func(updated *config.Config) {
			presenter.SetView(api.ViewFromConfig(updated))
		})
		g.Go(func() error {
			if err := reloader.Watch(gctx); err != nil {
				// Hot reload is optional; keep serving without it.
				slog.Warn("config: watch disabled", "err", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("revealboard-dashboard stopped with error", "err", err)
		os.Exit(1)
	}
	slog.Info("revealboard-dashboard shut down")
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/revealboard/revealboard/feed/internal/feed"
)

func main() {
	addr := flag.String("addr", "0.0.0.0:8081", "listen address")
	a := flag.Float64("a", 0, "initial value for a")
	b := flag.Float64("b", 0, "initial value for b")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	counter := feed.NewCounter(*a, *b, nil)
	if _, err := counter.Set(*a, *b); err != nil {
		slog.Error("invalid initial values", "err", err)
		os.Exit(1)
	}

	slog.Info("revealboard-feed starting", "addr", *addr, "a", *a, "b", *b)
	if err := feed.NewServer(*addr, counter).Run(ctx); err != nil {
		slog.Error("feed stopped with error", "err", err)
		os.Exit(1)
	}
	slog.Info("revealboard-feed shut down")
}

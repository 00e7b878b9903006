package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/revealboard/revealboard/dashboard/internal/acquire"
	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/store"
	"github.com/revealboard/revealboard/dashboard/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults are used when empty)")
	logPath := flag.String("log", "", "write JSON logs to this file; logs are discarded when empty")
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Without a file the defaults still need REVEAL_API_BASE to validate.
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Parse(nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	st := store.New()
	sel, err := acquire.New(cfg.Source, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build acquisition: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sel.Run(gctx)
	})

	prog := tea.NewProgram(tui.New(st, cfg, tui.DefaultRefresh), tea.WithAltScreen(), tea.WithContext(gctx))
	_, runErr := prog.Run()

	cancel()
	if err := g.Wait(); err != nil {
		slog.Error("acquisition stopped with error", "err", err)
	}
	if runErr != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "terminal UI: %v\n", runErr)
		os.Exit(1)
	}
}

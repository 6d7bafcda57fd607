package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/recall/internal/app"
	"github.com/felixgeelhaar/recall/internal/config"
	mcpserver "github.com/felixgeelhaar/recall/internal/mcp"
)

// cmdMCP serves the progress tools over stdio. It opens the configured
// storage directly, so it works without the daemon.
func cmdMCP() error {
	if _, err := config.EnsureRecallDir(); err != nil {
		return fmt.Errorf("setup recall directory: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries the protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, app.Options{SkipReminder: true, Logger: logger})
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer application.Close()

	mcpSrv, err := mcpserver.NewServer(mcpserver.Config{
		Progress: application.Progress,
		Version:  Version,
	})
	if err != nil {
		return fmt.Errorf("create mcp server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return mcpSrv.ServeStdio(ctx)
}

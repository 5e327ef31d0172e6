// Command mcp serves the match-context tools over MCP stdio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/okian/robonalysis/internal/adapters/mcp"
	app "github.com/okian/robonalysis/internal/app"
	"github.com/okian/robonalysis/internal/config"
	"github.com/okian/robonalysis/pkg/logger"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Stdout carries the protocol.
	if err := logger.InitWithWriter(os.Stderr, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	log := logger.Get()

	app.ConfigureMetrics(cfg)
	svc, store, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "bootstrap failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "service start failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = svc.Stop(stopCtx)
	}()

	mcpServer := mcpadapter.NewServer(svc, version, log.Named("mcp"))

	log.Info(ctx, "starting MCP server on stdio", logger.String("cache", cfg.CacheBackend))
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Error(ctx, "MCP server failed", logger.Error(err))
	}
}

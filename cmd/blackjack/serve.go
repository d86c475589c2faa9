package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/blackjack/internal/server"
)

// ServeCmd shares one table with every websocket client
type ServeCmd struct {
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	var w io.Writer = os.Stderr
	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := g.newLogger(w, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, closeTable, err := openTable(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTable()

	logger.Info("Starting blackjack server",
		"addr", addr,
		"storage", cfg.Storage.Driver,
		"players", session.Snapshot().PlayerCount,
		"settle_delay", cfg.Table.SettleDelay)

	return server.NewServer(addr, session, cfg.Table.Chips, logger).Run(ctx)
}

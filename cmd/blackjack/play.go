package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs the terminal client against a local table
type PlayCmd struct {
	Players int    `short:"p" help:"Seat 1 or 2 players when nothing is saved (overrides config)"`
	Seed    int64  `help:"Deterministic RNG seed (overrides config)"`
	LogFile string `default:"blackjack.log" help:"Log file, used unless the config names one"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Players != 0 {
		cfg.Table.Players = c.Players
	}
	if c.Seed != 0 {
		cfg.Table.Seed = c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to bubbletea, so logs go to a file
	logFile := cfg.Server.LogFile
	if logFile == "" {
		logFile = c.LogFile
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	logger := g.newLogger(f, cfg.Server.LogLevel)
	logger.Info("Starting table", "config", g.Config, "storage", cfg.Storage.Driver, "players", cfg.Table.Players)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, closeTable, err := openTable(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTable()

	return tui.Run(ctx, session, logger, tui.WithChips(cfg.Table.Chips))
}

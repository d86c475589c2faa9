package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/table"
)

// openTable opens the configured store and restores the session from it.
// The returned func saves the table and closes the store.
func openTable(ctx context.Context, cfg *config.Config, logger *log.Logger) (*table.Session, func(), error) {
	delay, err := cfg.SettleDelay()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	if cfg.Table.Seed != 0 {
		logger.Info("Using deterministic seed", "seed", cfg.Table.Seed)
	}

	session := table.NewSession(ctx, randutil.FromConfig(cfg.Table.Seed),
		table.WithStore(st),
		table.WithSettleDelay(delay),
		table.WithLogger(logger),
		table.WithPlayerCount(cfg.Table.Players),
		table.WithStartingBankroll(cfg.Table.StartingBankroll),
	)

	closeFn := func() {
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Error("Failed to save table", "error", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}
	return session, closeFn, nil
}

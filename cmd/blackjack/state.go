package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/blackjack/internal/store"
)

// StateCmd groups the saved-state commands
type StateCmd struct {
	Show  StateShowCmd  `cmd:"" default:"1" help:"Print saved bankrolls and stats"`
	Clear StateClearCmd `cmd:"" help:"Forget saved bankrolls and stats"`
}

type StateShowCmd struct {
	JSON bool `help:"Print the raw saved document"`
}

func (c *StateShowCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	out := g.stdout()
	state, err := st.Load(context.Background())
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(out, "No saved table in %s storage.\n", cfg.Storage.Driver)
		return nil
	}
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	fmt.Fprintf(out, "Players seated: %d\n", state.PlayerCount)
	for i, p := range state.Players {
		fmt.Fprintf(out, "Player %d: $%d  %s\n", i+1, p.Bankroll, p.Stats)
	}
	return nil
}

type StateClearCmd struct{}

func (c *StateClearCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Cleared saved table. New tables start with $%d.\n", cfg.Table.StartingBankroll)
	return nil
}

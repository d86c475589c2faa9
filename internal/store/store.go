// Package store persists the table's bankrolls, stats and player count.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
)

// ErrNotFound is returned by Load when nothing has been saved yet
var ErrNotFound = errors.New("saved state not found")

// Store loads and saves a game.SavedState
type Store interface {
	Load(ctx context.Context) (game.SavedState, error)
	Save(ctx context.Context, state game.SavedState) error
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the store selected by the storage block
func Open(cfg *config.Storage) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.Path), nil
	case config.DriverSQLite, config.DriverPostgres:
		dsn := cfg.DSN
		if dsn == "" && cfg.Driver == config.DriverSQLite {
			dsn = cfg.Key + ".db"
		}
		return OpenSQL(cfg.Driver, dsn, cfg.Key)
	case config.DriverRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.Key), nil
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// LoadOrDefault loads the saved state, falling back to a fresh table when
// nothing was saved or the save is unusable
func LoadOrDefault(ctx context.Context, s Store, bankroll int) (game.SavedState, error) {
	state, err := s.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return game.DefaultSavedState(bankroll), nil
	}
	if err != nil {
		return game.DefaultSavedState(bankroll), err
	}
	if err := state.Validate(); err != nil {
		return game.DefaultSavedState(bankroll), fmt.Errorf("saved state is invalid: %w", err)
	}
	return state, nil
}

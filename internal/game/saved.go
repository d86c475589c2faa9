package game

import (
	"errors"
	"fmt"

	"github.com/lox/blackjack/internal/statistics"
)

// SavedPlayer is the part of a seat that outlives a round
type SavedPlayer struct {
	Bankroll int              `json:"bankroll"`
	Stats    statistics.Stats `json:"stats"`
}

// SavedState is the persisted table: bankrolls and stats per seat plus the
// player count. Hands and bets are never saved.
type SavedState struct {
	Players     []SavedPlayer `json:"players"`
	PlayerCount int           `json:"playerCount"`
}

// DefaultSavedState is a new table with every seat at bankroll
func DefaultSavedState(bankroll int) SavedState {
	s := SavedState{PlayerCount: 1, Players: make([]SavedPlayer, MaxPlayers)}
	for i := range s.Players {
		s.Players[i].Bankroll = bankroll
	}
	return s
}

// Validate rejects saves that cannot be restored
func (s SavedState) Validate() error {
	if s.PlayerCount < 1 || s.PlayerCount > MaxPlayers {
		return fmt.Errorf("player count %d out of range", s.PlayerCount)
	}
	if len(s.Players) == 0 || len(s.Players) > MaxPlayers {
		return fmt.Errorf("saved state has %d players", len(s.Players))
	}
	var errs []error
	for i, p := range s.Players {
		if p.Bankroll < 0 {
			errs = append(errs, fmt.Errorf("player %d: negative bankroll %d", i+1, p.Bankroll))
		}
		if p.Stats.Wins < 0 || p.Stats.Losses < 0 || p.Stats.Ties < 0 {
			errs = append(errs, fmt.Errorf("player %d: negative stats %s", i+1, p.Stats))
		}
	}
	return errors.Join(errs...)
}

// Package table runs a blackjack Round for one or more front ends.
package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
)

const saveTimeout = 5 * time.Second

// Update is sent to every subscriber after the round changes
type Update struct {
	Snapshot game.Snapshot
	Events   []game.GameEvent
	Lines    []string // Events rendered by game.EventFormatter
	Command  *Command // nil when the automatic reset fired
	Err      error    // Rejection of Command, if any
}

// Option configures a Session
type Option func(*Session)

// WithClock replaces the real clock, used for the settle timer
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithStore persists the table after every accepted command
func WithStore(st store.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithSettleDelay resets a settled round after d. Zero leaves it on the
// table until a player acts.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Session) { s.settleDelay = d }
}

// WithLogger sets the session logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithPlayerCount seats n players when nothing was saved
func WithPlayerCount(n int) Option {
	return func(s *Session) { s.playerCount = n }
}

// WithStartingBankroll sets the bankroll for seats with nothing saved
func WithStartingBankroll(amount int) Option {
	return func(s *Session) { s.bankroll = amount }
}

// WithRoundOptions passes extra options through to game.NewRound
func WithRoundOptions(opts ...game.RoundOption) Option {
	return func(s *Session) { s.roundOpts = append(s.roundOpts, opts...) }
}

// Session serialises every caller onto one Round. Each Apply runs one
// operation to completion, saves the table and notifies subscribers before
// the next is accepted.
type Session struct {
	mu          sync.Mutex
	round       *game.Round
	pending     []game.GameEvent
	subscribers map[int]func(Update)
	nextSubID   int

	store       store.Store
	clock       quartz.Clock
	settleDelay time.Duration
	resetTimer  *quartz.Timer
	timerGen    int

	playerCount int
	bankroll    int
	roundOpts   []game.RoundOption

	formatter *game.EventFormatter
	logger    *log.Logger
}

// NewSession restores the saved table, if any, and opens it for betting.
// A store that cannot be read is logged and the table starts fresh.
func NewSession(ctx context.Context, rng *rand.Rand, opts ...Option) *Session {
	s := &Session{
		subscribers: make(map[int]func(Update)),
		store:       store.NewMemoryStore(),
		clock:       quartz.NewReal(),
		playerCount: 1,
		bankroll:    game.DefaultStartingBankroll,
		formatter:   game.NewEventFormatter(game.FormattingOptions{}),
		logger:      log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
	}
	for _, opt := range opts {
		opt(s)
	}

	bus := game.NewEventBus()
	bus.Subscribe(game.EventSubscriberFunc(func(e game.GameEvent) {
		s.pending = append(s.pending, e)
	}))

	roundOpts := []game.RoundOption{
		game.WithEventBus(bus),
		game.WithLogger(s.logger.WithPrefix("round")),
		game.WithStartingBankroll(s.bankroll),
		game.WithPlayerCount(s.playerCount),
	}

	saved, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Info("No saved table, starting fresh", "players", s.playerCount, "bankroll", s.bankroll)
	case err != nil:
		s.logger.Warn("Could not load saved table, starting fresh", "error", err)
	default:
		s.logger.Info("Restored saved table", "players", saved.PlayerCount)
		roundOpts = append(roundOpts, game.WithSavedState(saved))
	}

	s.round = game.NewRound(rng, append(roundOpts, s.roundOpts...)...)
	s.pending = nil
	return s
}

// Apply runs cmd against the round. A rule violation is returned as the
// error and reflected in the snapshot's status; the round is unchanged.
func (s *Session) Apply(ctx context.Context, cmd Command) (game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return game.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopResetTimer()
	err := s.dispatch(cmd)
	if err != nil {
		s.logger.Debug("Command rejected", "command", cmd, "error", err)
	} else {
		s.logger.Debug("Command applied", "command", cmd, "phase", s.round.Phase())
		s.save(ctx)
		s.scheduleReset()
	}

	snap := s.round.Snapshot()
	s.notify(Update{Snapshot: snap, Command: &cmd, Err: err})
	return snap, err
}

func (s *Session) dispatch(cmd Command) error {
	r := s.round
	switch cmd.Action {
	case ActionSetPlayerCount:
		return r.SetPlayerCount(cmd.Count)
	case ActionBet:
		player := cmd.Player
		if player == CurrentBettor {
			player = r.Bettor()
		}
		return r.PlaceBet(player, cmd.Amount)
	case ActionDeal:
		return r.Deal()
	case ActionHit:
		return r.Hit()
	case ActionStand:
		return r.Stand()
	case ActionDouble:
		return r.Double()
	case ActionSplit:
		return r.Split()
	case ActionNextPlayer:
		return r.AdvanceToNextPlayer()
	case ActionReset:
		return r.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Action)
	}
}

// Snapshot returns the current table state
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Snapshot()
}

// Saved returns the persistable part of the table
func (s *Session) Saved() game.SavedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Saved()
}

// Subscribe registers fn for every Update. fn runs with the session locked
// and must not call back into the Session; hand the update to another
// goroutine instead. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Update)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close stops the settle timer and saves the table one last time
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopResetTimer()
	return s.store.Save(ctx, s.round.Saved())
}

func (s *Session) notify(u Update) {
	u.Events = s.pending
	s.pending = nil
	for _, e := range u.Events {
		if line := s.formatter.Format(e); line != "" {
			u.Lines = append(u.Lines, line)
		}
	}
	for _, fn := range s.subscribers {
		fn(u)
	}
}

func (s *Session) save(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, s.round.Saved()); err != nil {
		s.logger.Error("Failed to save table", "error", err)
	}
}

func (s *Session) scheduleReset() {
	if s.settleDelay <= 0 || s.round.Phase() != game.Settlement {
		return
	}
	gen := s.timerGen
	s.resetTimer = s.clock.AfterFunc(s.settleDelay, func() {
		s.autoReset(gen)
	}, "table", "settle")
}

func (s *Session) stopResetTimer() {
	s.timerGen++
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func (s *Session) autoReset(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen || s.round.Phase() != game.Settlement {
		return
	}
	s.resetTimer = nil

	s.logger.Debug("Settle delay elapsed, clearing table")
	_ = s.round.Reset()
	s.save(context.Background())
	s.notify(Update{Snapshot: s.round.Snapshot()})
}

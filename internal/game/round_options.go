package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/roundid"
)

// DefaultStartingBankroll is each seat's bankroll when nothing was saved
const DefaultStartingBankroll = 500

// RoundOption configures a Round during creation.
type RoundOption func(*roundConfig)

// roundConfig holds all configuration for creating a round.
type roundConfig struct {
	playerCount      int
	startingBankroll int
	bankrolls        []int       // If nil, every seat starts with startingBankroll
	saved            *SavedState // Overrides playerCount, bankrolls and stats
	shoe             CardSource  // If provided, replaces the rng-built shoe
	bus              EventBus
	logger           *log.Logger
	roundIDs         func() string
}

// WithPlayerCount sets how many seats are in play (1 or 2)
func WithPlayerCount(n int) RoundOption {
	return func(c *roundConfig) {
		c.playerCount = n
	}
}

// WithStartingBankroll sets the bankroll of seats with nothing saved
func WithStartingBankroll(amount int) RoundOption {
	return func(c *roundConfig) {
		c.startingBankroll = amount
	}
}

// WithBankrolls sets explicit bankrolls, one per seat
func WithBankrolls(bankrolls ...int) RoundOption {
	return func(c *roundConfig) {
		c.bankrolls = bankrolls
	}
}

// WithSavedState restores bankrolls, stats and player count from a save
func WithSavedState(s SavedState) RoundOption {
	return func(c *roundConfig) {
		c.saved = &s
	}
}

// WithShoe uses a prepared shoe, typically one with stacked fills
func WithShoe(s CardSource) RoundOption {
	return func(c *roundConfig) {
		c.shoe = s
	}
}

// WithEventBus publishes round events to bus
func WithEventBus(bus EventBus) RoundOption {
	return func(c *roundConfig) {
		c.bus = bus
	}
}

// WithLogger sets the logger used for round transitions
func WithLogger(logger *log.Logger) RoundOption {
	return func(c *roundConfig) {
		c.logger = logger
	}
}

// WithRoundIDs replaces the UUIDv7 round id generator
func WithRoundIDs(next func() string) RoundOption {
	return func(c *roundConfig) {
		c.roundIDs = next
	}
}

func defaultRoundConfig() *roundConfig {
	return &roundConfig{
		playerCount:      1,
		startingBankroll: DefaultStartingBankroll,
		logger:           log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
		roundIDs:         roundid.Generate,
	}
}


// Package game implements the blackjack round engine for one or two players
// against a single dealer.
//
// The main type is Round, which owns the seats, the dealer hand and the shoe
// and moves through Betting, Dealing, PlayerTurn, DealerTurn and Settlement.
//
// # Basic Usage
//
//	r := game.NewRound(randutil.New(42), game.WithPlayerCount(1))
//	if err := r.PlaceBet(0, 50); err != nil { ... }
//	r.Deal()
//	r.Hit()
//	r.Stand() // the dealer plays and the round settles
//	fmt.Println(r.Status())
//	r.Reset()
//
// Rejected operations return a *RuleError wrapping ErrInvalidBet,
// ErrNoBetPlaced or ErrIllegalAction and leave the round unchanged apart
// from its status line.
//
// # Deterministic Testing
//
// Inject a seeded rng, or a shoe with a stacked fill to script the deal:
//
//	shoe := deck.NewShoe(randutil.New(1))
//	shoe.Stack(deck.MustParseCards("Th6c7dTs")...) // P1, dealer, P1, dealer
//	r := game.NewRound(nil, game.WithShoe(shoe))
//
// # Events
//
// A Round publishes a GameEvent for every card, turn change, reveal,
// settlement and reset on the EventBus given by WithEventBus. Each event is
// published after the state it describes is already applied.
package game

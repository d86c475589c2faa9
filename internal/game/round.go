package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/statistics"
)

const statusPlaceBet = "Place your bet to begin."

// Round is the table aggregate: seats, dealer, shoe and the phase machine
// Betting → Dealing → PlayerTurn → DealerTurn → Settlement.
//
// Every operation runs to completion before returning. A rejected operation
// returns a *RuleError and leaves everything except the status line as it
// was. Round is not safe for concurrent use; table.Session serialises
// callers onto it.
type Round struct {
	shoe        CardSource
	players     [MaxPlayers]*Player
	playerCount int
	dealer      Dealer

	phase   Phase
	active  int // Acting player during PlayerTurn
	bettor  int // Seat allowed to bet during Betting
	roundID string
	results []SlotResult
	status  string

	reshuffled bool // Set when a draw in the current operation refilled the shoe

	bus      EventBus
	logger   *log.Logger
	roundIDs func() string
}

// NewRound creates a table in Betting. The rng shuffles every shoe fill;
// it may be nil only when WithShoe supplies the shoe.
func NewRound(rng *rand.Rand, opts ...RoundOption) *Round {
	cfg := defaultRoundConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.shoe == nil {
		if rng == nil {
			panic("rng is required for round creation")
		}
		cfg.shoe = deck.NewShoe(rng)
	}
	if cfg.playerCount < 1 || cfg.playerCount > MaxPlayers {
		panic("player count must be 1 or 2")
	}
	if len(cfg.bankrolls) > MaxPlayers {
		panic("more bankrolls than seats")
	}

	r := &Round{
		shoe:        cfg.shoe,
		playerCount: cfg.playerCount,
		status:      statusPlaceBet,
		bus:         cfg.bus,
		logger:      cfg.logger,
		roundIDs:    cfg.roundIDs,
	}
	for i := range r.players {
		bankroll := cfg.startingBankroll
		if i < len(cfg.bankrolls) {
			bankroll = cfg.bankrolls[i]
		}
		r.players[i] = NewPlayer(i, bankroll, statistics.Stats{})
	}

	if cfg.saved != nil {
		if err := cfg.saved.Validate(); err != nil {
			r.logger.Warn("Ignoring saved state", "error", err)
		} else {
			r.restore(*cfg.saved)
		}
	}
	return r
}

func (r *Round) restore(s SavedState) {
	r.playerCount = s.PlayerCount
	for i, sp := range s.Players {
		r.players[i] = NewPlayer(i, sp.Bankroll, sp.Stats)
	}
}

// Phase returns the current phase
func (r *Round) Phase() Phase { return r.phase }

// PlayerCount returns how many seats are in play
func (r *Round) PlayerCount() int { return r.playerCount }

// Status returns the message describing the latest transition or rejection
func (r *Round) Status() string { return r.status }

// RoundID returns the id of the current or last dealt round
func (r *Round) RoundID() string { return r.roundID }

// Bettor returns the seat whose bet is being taken
func (r *Round) Bettor() int { return r.bettor }

// ActivePlayer returns the seat acting during PlayerTurn
func (r *Round) ActivePlayer() int { return r.active }

// Pot is the sum of every in-play seat's outstanding stake
func (r *Round) Pot() int {
	pot := 0
	for _, p := range r.inPlay() {
		pot += p.TotalBet()
	}
	return pot
}

func (r *Round) inPlay() []*Player {
	return r.players[:r.playerCount]
}

// SetPlayerCount seats one or two players. The table is reset, returning any
// pending bets, so it is only allowed between rounds.
func (r *Round) SetPlayerCount(n int) error {
	r.begin()
	if n < 1 || n > MaxPlayers {
		return r.reject(ruleError(ErrIllegalAction, fmt.Sprintf("Player count must be 1 or %d.", MaxPlayers)))
	}
	if !r.betweenRounds() {
		return r.reject(ruleError(ErrIllegalAction, "Finish the round before changing players."))
	}

	r.playerCount = n
	r.logger.Info("Player count changed", "players", n)
	r.reset()
	return nil
}

// PlaceBet adds amount to player's pending bet. In two-player mode only the
// designated bettor may bet. Betting after a settled round clears the table
// first.
func (r *Round) PlaceBet(player, amount int) error {
	r.begin()
	if !r.betweenRounds() {
		return r.reject(ruleError(ErrInvalidBet, "Round in progress — cannot bet now."))
	}
	if player < 0 || player >= r.playerCount {
		return r.reject(ruleError(ErrInvalidBet, fmt.Sprintf("Player %d is not seated.", player+1)))
	}
	if player != r.bettor {
		return r.reject(ruleError(ErrInvalidBet, fmt.Sprintf("It's Player %d's turn to bet.", r.bettor+1)))
	}
	p := r.players[player]
	if err := stake(p, amount); err != nil {
		return r.reject(err)
	}
	if r.phase == Settlement {
		r.clearTable()
	}

	r.logger.Debug("Bet placed", "player", player, "amount", amount, "bet", p.Bet, "bankroll", p.Bankroll)
	r.publish(BetPlacedEvent{Player: player, Amount: amount, TotalBet: p.Bet, Bankroll: p.Bankroll, timestamp: time.Now()})
	r.setStatus(fmt.Sprintf("%s bet $%d. Click Deal when ready.", p.Name, p.Bet))
	return nil
}

// AdvanceToNextPlayer hands the bet to the other seat in two-player mode
func (r *Round) AdvanceToNextPlayer() error {
	r.begin()
	if !r.betweenRounds() {
		return r.reject(ruleError(ErrIllegalAction, "Round in progress — finish the current hand first."))
	}
	if r.playerCount < 2 {
		return r.reject(ruleError(ErrIllegalAction, "Only one player is seated."))
	}
	if r.phase == Settlement {
		r.clearTable()
	}

	r.bettor = (r.bettor + 1) % r.playerCount
	r.setStatus(fmt.Sprintf("%s, place your bet.", r.players[r.bettor].Name))
	return nil
}

// Deal starts a round: a fresh shoe, then two cards each to the players
// and the dealer in the order P1, P2, dealer, P1, P2, dealer. The dealer's
// first card is the hole card. Play starts with player 1's primary slot.
func (r *Round) Deal() error {
	r.begin()
	if !r.betweenRounds() {
		return r.reject(ruleError(ErrIllegalAction, "Round in progress — cannot deal now."))
	}
	if r.Pot() == 0 {
		return r.reject(ruleError(ErrNoBetPlaced, "Place a bet first."))
	}

	r.clearTable()
	for _, p := range r.players[r.playerCount:] {
		refund(p)
	}
	r.phase = Dealing
	r.bettor = 0
	r.roundID = r.roundIDs()
	r.shoe.Fresh()
	r.logger.Info("Dealing round", "round", r.roundID, "players", r.playerCount, "pot", r.Pot())
	r.publish(RoundStartEvent{RoundID: r.roundID, PlayerCount: r.playerCount, Pot: r.Pot(), timestamp: time.Now()})

	for range 2 {
		for _, p := range r.inPlay() {
			r.dealTo(p, SlotPrimary)
		}
		r.dealToDealer()
	}

	r.phase = PlayerTurn
	r.active = 0
	r.publish(TurnChangeEvent{Player: 0, Slot: SlotPrimary, timestamp: time.Now()})
	r.setStatus(r.turnPrompt())
	return nil
}

// Hit draws one card into the active slot. A bust ends the slot.
func (r *Round) Hit() error {
	r.begin()
	if err := r.requireTurn(); err != nil {
		return r.reject(err)
	}

	p := r.players[r.active]
	hand := r.dealTo(p, p.ActiveSlot())
	score := hand.Value()
	r.logger.Debug("Hit", "player", p.Seat, "slot", p.ActiveSlot(), "score", score)

	if hand.IsBust() {
		r.setStatus(r.finishSlot(fmt.Sprintf("%s busted!", p.Name)))
		return nil
	}
	r.setStatus(fmt.Sprintf("%s — Score: %d.", p.Name, score))
	return nil
}

// Stand ends the active slot
func (r *Round) Stand() error {
	r.begin()
	if err := r.requireTurn(); err != nil {
		return r.reject(err)
	}

	p := r.players[r.active]
	score := p.ActiveHand().Value()
	r.logger.Debug("Stand", "player", p.Seat, "slot", p.ActiveSlot(), "score", score)
	r.setStatus(r.finishSlot(fmt.Sprintf("%s stands on %d.", p.Name, score)))
	return nil
}

// Double doubles the active slot's bet, draws exactly one card and ends the
// slot. Only a two-card hand that has not been split may double.
func (r *Round) Double() error {
	r.begin()
	if err := r.requireTurn(); err != nil {
		return r.reject(err)
	}

	p := r.players[r.active]
	slot := p.ActiveSlot()
	switch {
	case p.HasSplit():
		return r.reject(ruleError(ErrIllegalAction, "Cannot double after a split."))
	case len(*p.ActiveHand()) != 2:
		return r.reject(ruleError(ErrIllegalAction, "Double is only allowed on your first two cards."))
	}
	bet := p.SlotBet(slot)
	if err := raise(p, bet, Double); err != nil {
		return r.reject(err)
	}
	p.addToSlotBet(slot, bet)
	r.publish(BetPlacedEvent{Player: p.Seat, Amount: bet, TotalBet: p.TotalBet(), Bankroll: p.Bankroll, timestamp: time.Now()})

	hand := r.dealTo(p, slot)
	r.logger.Debug("Double", "player", p.Seat, "bet", p.SlotBet(slot), "score", hand.Value())
	r.setStatus(r.finishSlot(fmt.Sprintf("%s doubles to $%d and has %d.", p.Name, p.SlotBet(slot), hand.Value())))
	return nil
}

// Split moves the second card of a pair into a split slot carrying an equal
// bet. Play continues on the primary slot; no further split is allowed.
func (r *Round) Split() error {
	r.begin()
	if err := r.requireTurn(); err != nil {
		return r.reject(err)
	}

	p := r.players[r.active]
	switch {
	case p.HasSplit():
		return r.reject(ruleError(ErrIllegalAction, "Only one split per hand."))
	case !p.Primary.IsPair():
		return r.reject(ruleError(ErrIllegalAction, "Split needs two cards of the same rank."))
	}
	if err := raise(p, p.Bet, Split); err != nil {
		return r.reject(err)
	}

	first, second := p.Primary[0], p.Primary[1]
	p.Primary = Hand{first}
	p.Split = &SplitHand{Hand: Hand{second}, Bet: p.Bet}
	p.State = PlayingPrimary

	r.logger.Debug("Split", "player", p.Seat, "bet", p.Bet, "bankroll", p.Bankroll)
	r.publish(SplitEvent{Player: p.Seat, Bet: p.Split.Bet, Primary: first, Second: second, timestamp: time.Now()})
	r.setStatus(fmt.Sprintf("%s splits %s. Playing the first hand.", p.Name, first.Rank))
	return nil
}

// Reset returns the table to Betting from any phase. Bets not yet dealt go
// back to their bankrolls. Once cards are out the stakes are forfeited and
// no result is recorded. Bankrolls and stats are otherwise kept.
func (r *Round) Reset() error {
	r.begin()
	r.reset()
	return nil
}

func (r *Round) reset() {
	refunded, forfeited := 0, 0
	for _, p := range r.players {
		if r.phase == Betting {
			refunded += refund(p)
		} else {
			forfeited += forfeit(p)
		}
	}
	r.clearTable()
	r.bettor = 0
	if refunded > 0 || forfeited > 0 {
		r.logger.Info("Table reset", "refunded", refunded, "forfeited", forfeited)
	}
	r.publish(RoundResetEvent{Refunded: refunded, Forfeited: forfeited, timestamp: time.Now()})
	r.setStatus(statusPlaceBet)
}

// clearTable drops hands and results and opens betting. Stakes are kept.
func (r *Round) clearTable() {
	for _, p := range r.players {
		p.clearHands()
	}
	r.dealer = Dealer{}
	r.results = nil
	r.phase = Betting
	r.active = 0
}

func (r *Round) betweenRounds() bool {
	return r.phase == Betting || r.phase == Settlement
}

func (r *Round) requireTurn() error {
	if r.phase != PlayerTurn {
		return ruleError(ErrIllegalAction, "No hand in play — place a bet and deal.")
	}
	return nil
}

// begin starts an operation
func (r *Round) begin() {
	r.reshuffled = false
}

func (r *Round) reject(err error) error {
	if re, ok := err.(*RuleError); ok {
		r.status = re.Message
	} else {
		r.status = err.Error()
	}
	r.logger.Debug("Rejected", "phase", r.phase, "error", err)
	return err
}

func (r *Round) setStatus(s string) {
	if r.reshuffled {
		s = "Reshuffling deck... " + s
	}
	r.status = s
}

// noteDraw records an implicit reshuffle caused by d
func (r *Round) noteDraw(d deck.Draw) {
	if !d.Reshuffled {
		return
	}
	r.reshuffled = true
	r.logger.Info("Reshuffling deck", "fills", r.shoe.Fills())
	r.publish(ReshuffleEvent{Fills: r.shoe.Fills(), timestamp: time.Now()})
}

// dealTo draws one card into a player's slot
func (r *Round) dealTo(p *Player, slot Slot) *Hand {
	d := r.shoe.Draw()
	r.noteDraw(d)
	hand := p.Hand(slot)
	hand.Add(d.Card)
	r.publish(CardDealtEvent{
		RoundID:    r.roundID,
		Player:     p.Seat,
		Slot:       slot,
		Card:       d.Card,
		Reshuffled: d.Reshuffled,
		Value:      hand.Value(),
		timestamp:  time.Now(),
	})
	return hand
}

func (r *Round) dealToDealer() {
	d := r.shoe.Draw()
	r.noteDraw(d)
	r.dealer.Hand.Add(d.Card)
	e := CardDealtEvent{
		RoundID:    r.roundID,
		Player:     DealerSeat,
		Card:       d.Card,
		Reshuffled: d.Reshuffled,
		timestamp:  time.Now(),
	}
	if len(r.dealer.Hand) == 1 {
		e.Hidden = true
	}
	r.publish(e)
}

// finishSlot ends the active slot and moves play on. note describes the
// action that ended it and is prefixed to the next prompt.
func (r *Round) finishSlot(note string) string {
	p := r.players[r.active]
	if p.State == PlayingPrimary && p.HasSplit() && !p.Split.Played {
		p.State = PlayingSplit
		r.publish(TurnChangeEvent{Player: p.Seat, Slot: SlotSplit, timestamp: time.Now()})
		return note + " " + r.turnPrompt()
	}
	if p.State == PlayingSplit {
		p.Split.Played = true
	}
	p.State = Finished
	return r.advance(note)
}

// advance moves to the next unfinished player, or plays the dealer and
// settles when every player is done
func (r *Round) advance(note string) string {
	for i := r.active + 1; i < r.playerCount; i++ {
		if !r.players[i].TurnDone() {
			r.active = i
			r.publish(TurnChangeEvent{Player: i, Slot: SlotPrimary, timestamp: time.Now()})
			return note + " " + r.turnPrompt()
		}
	}
	r.playDealer()
	return r.settle()
}

func (r *Round) turnPrompt() string {
	p := r.players[r.active]
	if p.State == PlayingSplit {
		return fmt.Sprintf("%s's split hand — Hit or Stand.", p.Name)
	}
	return fmt.Sprintf("%s's turn — Hit or Stand.", p.Name)
}

func (r *Round) playDealer() {
	r.phase = DealerTurn
	r.dealer.Revealed = true
	r.publish(DealerRevealEvent{
		HoleCard:  r.dealer.Hand[0],
		Cards:     r.dealer.Hand.Cards(),
		Value:     r.dealer.Hand.Value(),
		timestamp: time.Now(),
	})

	playDealer(&r.dealer.Hand, r.shoe, func(d deck.Draw) {
		r.noteDraw(d)
		r.publish(CardDealtEvent{
			RoundID:    r.roundID,
			Player:     DealerSeat,
			Card:       d.Card,
			Reshuffled: d.Reshuffled,
			Value:      r.dealer.Hand.Value(),
			timestamp:  time.Now(),
		})
	})
	r.logger.Debug("Dealer stands", "score", r.dealer.Hand.Value(), "cards", r.dealer.Hand)
}

// settle resolves every slot against the dealer, zeroes the bets and
// returns the round summary
func (r *Round) settle() string {
	r.phase = Settlement
	dealerScore := r.dealer.Hand.Value()

	parts := make([]string, 0, r.playerCount)
	for _, p := range r.inPlay() {
		slots := []Slot{SlotPrimary}
		if p.HasSplit() {
			slots = append(slots, SlotSplit)
		}
		var hands []string
		for _, slot := range slots {
			res := settleSlot(p, slot, dealerScore)
			r.results = append(r.results, res)
			hands = append(hands, fmt.Sprintf("%d — %s", res.Score, res.Outcome.Label()))
			r.publish(HandSettledEvent{Result: res, Bankroll: p.Bankroll, timestamp: time.Now()})
		}
		p.Bet = 0
		if p.HasSplit() {
			p.Split.Bet = 0
		}
		parts = append(parts, fmt.Sprintf("P%d: %s", p.Seat+1, strings.Join(hands, " / ")))
	}

	summary := fmt.Sprintf("Round over. Dealer: %d. Results: %s", dealerScore, strings.Join(parts, " | "))
	r.logger.Info("Round settled", "round", r.roundID, "dealer", dealerScore, "results", len(r.results))
	r.publish(RoundEndEvent{
		RoundID:     r.roundID,
		DealerScore: dealerScore,
		Results:     append([]SlotResult(nil), r.results...),
		Summary:     summary,
		timestamp:   time.Now(),
	})
	return summary
}

func (r *Round) publish(e GameEvent) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}

// Saved returns the persistable part of the table. Hands are never saved, so
// bets still waiting for a deal are counted back into the bankrolls while
// stakes already dealt on are left out, as a mid-round Reset would.
func (r *Round) Saved() SavedState {
	s := SavedState{PlayerCount: r.playerCount, Players: make([]SavedPlayer, MaxPlayers)}
	for i, p := range r.players {
		bankroll := p.Bankroll
		if r.phase == Betting {
			bankroll += p.TotalBet()
		}
		s.Players[i] = SavedPlayer{Bankroll: bankroll, Stats: p.Stats.Stats}
	}
	return s
}

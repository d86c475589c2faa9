package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/statistics"
)

// Outcome is how one slot resolved against the dealer
type Outcome int

const (
	Bust Outcome = iota
	DealerBust
	Push
	Win
	Lose
)

var outcomeNames = []string{"bust", "dealer-bust", "push", "win", "lose"}

func (o Outcome) String() string {
	return outcomeNames[o]
}

// MarshalText renders the outcome by name in JSON snapshots
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	i, err := parseName("outcome", outcomeNames, text)
	*o = Outcome(i)
	return err
}

// Label is the wording used in the round summary
func (o Outcome) Label() string {
	return [...]string{"Busted", "Dealer busted — Win", "Tie", "Win", "Loss"}[o]
}

// IsWin reports whether the slot was paid out
func (o Outcome) IsWin() bool { return o == DealerBust || o == Win }

// IsLoss reports whether the stake was lost
func (o Outcome) IsLoss() bool { return o == Bust || o == Lose }

// Result maps the outcome onto the stats counter it increments
func (o Outcome) Result() statistics.Result {
	switch {
	case o.IsWin():
		return statistics.Win
	case o == Push:
		return statistics.Tie
	default:
		return statistics.Loss
	}
}

// Settlement is the outcome of one slot and the bankroll credit it earns.
// The stake was debited when it was placed, so a win credits 2×bet, a push
// returns the bet and a loss credits nothing.
type Settlement struct {
	Outcome Outcome `json:"outcome"`
	Credit  int     `json:"credit"`
}

// Settle decides one slot from its score p, the dealer's score d and the bet
func Settle(p, d, bet int) Settlement {
	switch {
	case p > Blackjack:
		return Settlement{Outcome: Bust}
	case d > Blackjack:
		return Settlement{Outcome: DealerBust, Credit: 2 * bet}
	case p > d:
		return Settlement{Outcome: Win, Credit: 2 * bet}
	case p == d:
		return Settlement{Outcome: Push, Credit: bet}
	default:
		return Settlement{Outcome: Lose}
	}
}

// SlotResult records how one slot was settled
type SlotResult struct {
	Player      int     `json:"player"`
	Slot        Slot    `json:"slot"`
	Score       int     `json:"score"`
	DealerScore int     `json:"dealerScore"`
	Bet         int     `json:"bet"`
	Outcome     Outcome `json:"outcome"`
	Credit      int     `json:"credit"`
}

// Net is the bankroll change over the whole hand, stake included
func (r SlotResult) Net() int {
	return r.Credit - r.Bet
}

// stake moves amount from the bankroll onto the player's pending bet
func stake(p *Player, amount int) error {
	if amount <= 0 {
		return ruleError(ErrInvalidBet, "Bet must be a positive amount.")
	}
	if amount > p.Bankroll {
		return ruleError(ErrInvalidBet, "You don't have enough for that bet.")
	}
	p.Bankroll -= amount
	p.Bet += amount
	return nil
}

// raise debits a further amount for a double or split; the caller decides
// where the extra stake is recorded
func raise(p *Player, amount int, action Action) error {
	if amount > p.Bankroll {
		return ruleError(ErrIllegalAction, fmt.Sprintf("Not enough bankroll to %s.", action))
	}
	p.Bankroll -= amount
	return nil
}

// settleSlot credits the bankroll for one slot and counts it in the stats
func settleSlot(p *Player, slot Slot, dealerScore int) SlotResult {
	hand := p.Hand(slot)
	bet := p.SlotBet(slot)
	score := hand.Value()
	s := Settle(score, dealerScore, bet)

	p.Bankroll += s.Credit
	p.Stats.Record(s.Outcome.Result(), s.Credit-bet)

	return SlotResult{
		Player:      p.Seat,
		Slot:        slot,
		Score:       score,
		DealerScore: dealerScore,
		Bet:         bet,
		Outcome:     s.Outcome,
		Credit:      s.Credit,
	}
}

// refund returns every outstanding stake to the bankroll
func refund(p *Player) int {
	amount := forfeit(p)
	p.Bankroll += amount
	return amount
}

// forfeit drops every outstanding stake and returns how much was lost
func forfeit(p *Player) int {
	amount := p.TotalBet()
	p.Bet = 0
	if p.Split != nil {
		p.Split.Bet = 0
	}
	return amount
}

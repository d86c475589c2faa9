package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/statistics"
)

// SplitHand is the second slot created by a split
type SplitHand struct {
	Hand   Hand
	Bet    int
	Played bool
}

// Player is a seat at the table. Bankroll and Stats carry across rounds; the
// hands, bets and turn state are cleared every round.
type Player struct {
	Seat     int
	Name     string
	Bankroll int
	Bet      int // Stake on the primary slot
	Primary  Hand
	Split    *SplitHand
	State    TurnState
	Stats    *statistics.Tracker
}

// NewPlayer creates a seat with a bankroll and previously saved counters
func NewPlayer(seat, bankroll int, saved statistics.Stats) *Player {
	return &Player{
		Seat:     seat,
		Name:     fmt.Sprintf("Player %d", seat+1),
		Bankroll: bankroll,
		Stats:    statistics.NewTracker(saved),
	}
}

// HasSplit reports whether the player split this round
func (p *Player) HasSplit() bool {
	return p.Split != nil
}

// TurnDone reports whether the player has finished acting this round
func (p *Player) TurnDone() bool {
	return p.State == Finished
}

// ActiveSlot is the slot the player is acting on
func (p *Player) ActiveSlot() Slot {
	if p.State == PlayingSplit {
		return SlotSplit
	}
	return SlotPrimary
}

// Hand returns the hand held in slot
func (p *Player) Hand(slot Slot) *Hand {
	if slot == SlotSplit && p.Split != nil {
		return &p.Split.Hand
	}
	return &p.Primary
}

// ActiveHand returns the hand the player is acting on
func (p *Player) ActiveHand() *Hand {
	return p.Hand(p.ActiveSlot())
}

// SlotBet returns the stake riding on slot
func (p *Player) SlotBet(slot Slot) int {
	if slot == SlotSplit {
		if p.Split == nil {
			return 0
		}
		return p.Split.Bet
	}
	return p.Bet
}

// TotalBet is the player's stake across both slots
func (p *Player) TotalBet() int {
	return p.SlotBet(SlotPrimary) + p.SlotBet(SlotSplit)
}

// addToSlotBet records extra stake on slot
func (p *Player) addToSlotBet(slot Slot, amount int) {
	if slot == SlotSplit {
		p.Split.Bet += amount
		return
	}
	p.Bet += amount
}

// clearHands drops this round's cards and turn progress but keeps stakes
func (p *Player) clearHands() {
	p.Primary = nil
	p.Split = nil
	p.State = PlayingPrimary
}

package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/statistics"
)

// HandView is a read-only view of one player slot
type HandView struct {
	Slot   Slot        `json:"slot"`
	Cards  []deck.Card `json:"cards"`
	Value  int         `json:"value"`
	Soft   bool        `json:"soft"`
	Bust   bool        `json:"bust"`
	Bet    int         `json:"bet"`
	Played bool        `json:"played"`
}

// PlayerView is a read-only view of a seat
type PlayerView struct {
	Seat       int              `json:"seat"`
	Name       string           `json:"name"`
	Bankroll   int              `json:"bankroll"`
	Bet        int              `json:"bet"`
	Hands      []HandView       `json:"hands"`
	State      TurnState        `json:"state"`
	ActiveSlot Slot             `json:"activeSlot"`
	TurnDone   bool             `json:"turnDone"`
	Stats      statistics.Stats `json:"stats"`
	Summary    string           `json:"summary"`
}

// DealerView is the dealer's hand. While HoleHidden is set, Value is 0 and
// Showing is the total of the face-up cards.
type DealerView struct {
	Cards      []deck.Card `json:"cards"`
	HoleHidden bool        `json:"holeHidden"`
	Value      int         `json:"value"`
	Showing    int         `json:"showing"`
}

// Snapshot is everything a renderer or client needs after an operation
type Snapshot struct {
	RoundID       string       `json:"roundId,omitempty"`
	Phase         Phase        `json:"phase"`
	PlayerCount   int          `json:"playerCount"`
	Bettor        int          `json:"bettor"`
	ActivePlayer  int          `json:"activePlayer"`
	ActiveSlot    Slot         `json:"activeSlot"`
	Players       []PlayerView `json:"players"`
	Dealer        DealerView   `json:"dealer"`
	Pot           int          `json:"pot"`
	Status        string       `json:"status"`
	Results       []SlotResult `json:"results,omitempty"`
	ShoeRemaining int          `json:"shoeRemaining"`
}

// Snapshot returns a copy of the table state. The hole card is included;
// use Masked before sending it to players.
func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		RoundID:       r.roundID,
		Phase:         r.phase,
		PlayerCount:   r.playerCount,
		Bettor:        r.bettor,
		ActivePlayer:  r.active,
		Pot:           r.Pot(),
		Status:        r.status,
		Results:       append([]SlotResult(nil), r.results...),
		ShoeRemaining: r.shoe.Remaining(),
		Dealer:        r.dealerView(),
	}
	if r.phase == PlayerTurn {
		s.ActiveSlot = r.players[r.active].ActiveSlot()
	}
	for _, p := range r.inPlay() {
		s.Players = append(s.Players, playerView(p))
	}
	return s
}

func (r *Round) dealerView() DealerView {
	hand := r.dealer.Hand
	v := DealerView{Cards: hand.Cards()}
	if len(hand) > 0 && !r.dealer.Revealed {
		v.HoleHidden = true
		v.Showing = Value(hand[1:])
		return v
	}
	v.Value = hand.Value()
	v.Showing = v.Value
	return v
}

func playerView(p *Player) PlayerView {
	v := PlayerView{
		Seat:       p.Seat,
		Name:       p.Name,
		Bankroll:   p.Bankroll,
		Bet:        p.TotalBet(),
		State:      p.State,
		ActiveSlot: p.ActiveSlot(),
		TurnDone:   p.TurnDone(),
		Stats:      p.Stats.Stats,
		Summary:    p.Stats.Summary(),
	}
	if len(p.Primary) > 0 {
		v.Hands = append(v.Hands, handView(SlotPrimary, p.Primary, p.Bet, p.State == Finished || p.State == PlayingSplit))
	}
	if p.Split != nil {
		v.Hands = append(v.Hands, handView(SlotSplit, p.Split.Hand, p.Split.Bet, p.Split.Played))
	}
	return v
}

func handView(slot Slot, h Hand, bet int, played bool) HandView {
	return HandView{
		Slot:   slot,
		Cards:  h.Cards(),
		Value:  h.Value(),
		Soft:   h.IsSoft(),
		Bust:   h.IsBust(),
		Bet:    bet,
		Played: played,
	}
}

// Masked returns a copy safe to show players: the hole card is blanked
// while it is face down
func (s Snapshot) Masked() Snapshot {
	if !s.Dealer.HoleHidden || len(s.Dealer.Cards) == 0 {
		return s
	}
	cards := append([]deck.Card(nil), s.Dealer.Cards...)
	cards[0] = deck.Card{}
	s.Dealer.Cards = cards
	return s
}

// Player returns the view of seat, or false when it is not in play
func (s Snapshot) Player(seat int) (PlayerView, bool) {
	if seat < 0 || seat >= len(s.Players) {
		return PlayerView{}, false
	}
	return s.Players[seat], true
}

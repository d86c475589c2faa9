package game

import "github.com/lox/blackjack/internal/deck"

// DealerStandsOn is the total at which the dealer stops drawing. Soft and
// hard totals are treated alike.
const DealerStandsOn = 17

// Dealer is the house hand. The first card is the hole card and stays hidden
// from observers until the dealer's turn reveals it.
type Dealer struct {
	Hand     Hand
	Revealed bool
}

// CardSource is what a Round deals from; *deck.Shoe is the usual one
type CardSource interface {
	Fresh()
	Draw() deck.Draw
	Remaining() int
	Fills() int
}

// PlayDealer draws for hand until it reaches DealerStandsOn and returns the
// draws in order
func PlayDealer(hand *Hand, shoe CardSource) []deck.Draw {
	return playDealer(hand, shoe, nil)
}

func playDealer(hand *Hand, shoe CardSource, onDraw func(deck.Draw)) []deck.Draw {
	var draws []deck.Draw
	for hand.Value() < DealerStandsOn {
		d := shoe.Draw()
		hand.Add(d.Card)
		draws = append(draws, d)
		if onDraw != nil {
			onDraw(d)
		}
	}
	return draws
}

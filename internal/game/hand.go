package game

import (
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Blackjack is the highest total that does not bust
const Blackjack = 21

// Hand is an ordered run of cards held by a player slot or the dealer.
// Its value is always derived from the cards and never stored.
type Hand []deck.Card

// Value returns the best blackjack total for cards: faces count 10, aces 11,
// then one ace at a time drops to 1 while the total is over 21.
func Value(cards []deck.Card) int {
	total, _ := evaluate(cards)
	return total
}

// IsBust reports whether the best total is over 21
func IsBust(cards []deck.Card) bool {
	return Value(cards) > Blackjack
}

// IsSoft reports whether the best total still counts an ace as 11
func IsSoft(cards []deck.Card) bool {
	_, soft := evaluate(cards)
	return soft > 0
}

func evaluate(cards []deck.Card) (total, softAces int) {
	for _, c := range cards {
		total += c.Points()
		if c.IsAce() {
			softAces++
		}
	}
	for total > Blackjack && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Value returns the hand's best total
func (h Hand) Value() int { return Value(h) }

// IsBust reports whether the hand is over 21
func (h Hand) IsBust() bool { return IsBust(h) }

// IsSoft reports whether an ace in the hand still counts 11
func (h Hand) IsSoft() bool { return IsSoft(h) }

// IsPair reports whether the hand is exactly two cards of equal rank
func (h Hand) IsPair() bool {
	return len(h) == 2 && h[0].Rank == h[1].Rank
}

// Add appends a card
func (h *Hand) Add(c deck.Card) {
	*h = append(*h, c)
}

// Cards returns a copy of the cards for read-only views
func (h Hand) Cards() []deck.Card {
	return append([]deck.Card{}, h...)
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

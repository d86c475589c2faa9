package deck

import (
	"fmt"
	"math/rand/v2"
)

// ShoeSize is the number of cards in one fill of the shoe
const ShoeSize = 52

// Draw is the result of taking one card from the shoe. Reshuffled is set when
// the shoe was exhausted and had to be refilled before this card could be drawn.
type Draw struct {
	Card       Card
	Reshuffled bool
}

// Shoe holds a single 52-card fill. Cards are drawn from the top; when the fill
// runs out the next Draw refills and reshuffles it first.
type Shoe struct {
	cards   [ShoeSize]Card
	next    int
	fills   int
	rng     *rand.Rand
	stacked [][]Card
}

// ShoeOption configures a Shoe during creation
type ShoeOption func(*Shoe)

// WithStackedFill queues a prearranged top of shoe for an upcoming fill. Each
// call queues one fill; the cards are drawn in the given order and the rest of
// that fill is shuffled behind them.
func WithStackedFill(top ...Card) ShoeOption {
	seen := make(map[Card]bool, len(top))
	for _, c := range top {
		if seen[c] {
			panic(fmt.Sprintf("stacked fill repeats %s", c))
		}
		seen[c] = true
	}
	return func(s *Shoe) {
		s.stacked = append(s.stacked, append([]Card(nil), top...))
	}
}

// NewShoe creates a shoe with a fresh shuffled fill. The RNG is required so
// that every shuffle is reproducible from a seed.
func NewShoe(rng *rand.Rand, opts ...ShoeOption) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}

	s := &Shoe{rng: rng}
	for _, opt := range opts {
		opt(s)
	}
	s.Fresh()
	return s
}

// Stack queues another prearranged fill on an existing shoe
func (s *Shoe) Stack(top ...Card) {
	WithStackedFill(top...)(s)
}

// Fresh discards whatever is left of the current fill and replaces it with
// all 52 cards in a uniformly random order.
func (s *Shoe) Fresh() {
	i := 0
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			s.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	// Fisher-Yates
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}

	if len(s.stacked) > 0 {
		s.arrange(s.stacked[0])
		s.stacked = s.stacked[1:]
	}

	s.next = 0
	s.fills++
}

// arrange moves top to the front of the fill in order, keeping the shuffled
// order of everything else.
func (s *Shoe) arrange(top []Card) {
	for want, card := range top {
		for i := want; i < len(s.cards); i++ {
			if s.cards[i] == card {
				s.cards[want], s.cards[i] = s.cards[i], s.cards[want]
				break
			}
		}
	}
}

// Draw removes and returns the top card, refilling the shoe first if it is empty
func (s *Shoe) Draw() Draw {
	var d Draw
	if s.next >= len(s.cards) {
		s.Fresh()
		d.Reshuffled = true
	}
	d.Card = s.cards[s.next]
	s.next++
	return d
}

// Peek returns the top card without removing it
func (s *Shoe) Peek() (Card, bool) {
	if s.next >= len(s.cards) {
		return Card{}, false
	}
	return s.cards[s.next], true
}

// Remaining returns the number of cards left in the current fill
func (s *Shoe) Remaining() int {
	return len(s.cards) - s.next
}

// Drawn returns the number of cards taken from the current fill
func (s *Shoe) Drawn() int {
	return s.next
}

// Fills returns how many times the shoe has been filled, including the first
func (s *Shoe) Fills() int {
	return s.fills
}

package game

import (
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round events. Renderers use them to pace card
// animation; the round's state is already final when an event is published.
const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeBetPlaced    EventType = "bet_placed"
	EventTypeCardDealt    EventType = "card_dealt"
	EventTypeSplit        EventType = "split"
	EventTypeTurnChange   EventType = "turn_change"
	EventTypeDealerReveal EventType = "dealer_reveal"
	EventTypeReshuffle    EventType = "reshuffle"
	EventTypeHandSettled  EventType = "hand_settled"
	EventTypeRoundEnd     EventType = "round_end"
	EventTypeRoundReset   EventType = "round_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens during a round
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// DealerSeat is the Player value used for cards dealt to the dealer
const DealerSeat = -1

// RoundStartEvent is published when Deal starts a new round
type RoundStartEvent struct {
	RoundID     string
	PlayerCount int
	Pot         int
	timestamp   time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// BetPlacedEvent is published when a stake is accepted
type BetPlacedEvent struct {
	Player    int
	Amount    int
	TotalBet  int
	Bankroll  int
	timestamp time.Time
}

func (e BetPlacedEvent) EventType() EventType { return EventTypeBetPlaced }
func (e BetPlacedEvent) Timestamp() time.Time { return e.timestamp }

// CardDealtEvent is published once per card, after the card is in its hand
type CardDealtEvent struct {
	RoundID    string
	Player     int // DealerSeat for the dealer
	Slot       Slot
	Card       deck.Card
	Hidden     bool // The dealer's hole card
	Reshuffled bool // The shoe was refilled to draw this card
	Value      int  // Hand value after the card; 0 while the hole card is hidden
	timestamp  time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// ToDealer reports whether the card went to the dealer
func (e CardDealtEvent) ToDealer() bool { return e.Player == DealerSeat }

// SplitEvent is published when a player splits a pair
type SplitEvent struct {
	Player    int
	Bet       int
	Primary   deck.Card
	Second    deck.Card
	timestamp time.Time
}

func (e SplitEvent) EventType() EventType { return EventTypeSplit }
func (e SplitEvent) Timestamp() time.Time { return e.timestamp }

// TurnChangeEvent is published when the acting player or slot changes
type TurnChangeEvent struct {
	Player    int
	Slot      Slot
	timestamp time.Time
}

func (e TurnChangeEvent) EventType() EventType { return EventTypeTurnChange }
func (e TurnChangeEvent) Timestamp() time.Time { return e.timestamp }

// DealerRevealEvent is published when the hole card is turned over
type DealerRevealEvent struct {
	HoleCard  deck.Card
	Cards     []deck.Card
	Value     int
	timestamp time.Time
}

func (e DealerRevealEvent) EventType() EventType { return EventTypeDealerReveal }
func (e DealerRevealEvent) Timestamp() time.Time { return e.timestamp }

// ReshuffleEvent is published when an exhausted shoe is refilled mid-round
type ReshuffleEvent struct {
	Fills     int
	timestamp time.Time
}

func (e ReshuffleEvent) EventType() EventType { return EventTypeReshuffle }
func (e ReshuffleEvent) Timestamp() time.Time { return e.timestamp }

// HandSettledEvent is published for every settled slot
type HandSettledEvent struct {
	Result    SlotResult
	Bankroll  int
	timestamp time.Time
}

func (e HandSettledEvent) EventType() EventType { return EventTypeHandSettled }
func (e HandSettledEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published once settlement is complete
type RoundEndEvent struct {
	RoundID     string
	DealerScore int
	Results     []SlotResult
	Summary     string
	timestamp   time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// RoundResetEvent is published when the table returns to Betting
type RoundResetEvent struct {
	Refunded  int // Undealt bets returned to bankrolls
	Forfeited int // Stakes lost because cards were already out
	timestamp time.Time
}

func (e RoundResetEvent) EventType() EventType { return EventTypeRoundReset }
func (e RoundResetEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber
type EventSubscriberFunc func(event GameEvent)

// OnEvent calls f(event)
func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously in subscription order
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}

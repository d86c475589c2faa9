package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	Color bool // Wrap red suits in ANSI colour
}

// EventFormatter turns round events into log lines for text clients
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format returns the log line for event, or "" for events with no text form
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case RoundStartEvent:
		return fmt.Sprintf("\033[1m*** ROUND %s ***\033[0m pot $%d", shortID(e.RoundID), e.Pot)
	case BetPlacedEvent:
		return fmt.Sprintf("%s bets $%d (stake $%d, bankroll $%d)", seatName(e.Player), e.Amount, e.TotalBet, e.Bankroll)
	case CardDealtEvent:
		return ef.formatCardDealt(e)
	case SplitEvent:
		return fmt.Sprintf("%s splits %s %s for another $%d", seatName(e.Player),
			ef.formatCard(e.Primary), ef.formatCard(e.Second), e.Bet)
	case TurnChangeEvent:
		if e.Slot == SlotSplit {
			return fmt.Sprintf("%s plays the split hand", seatName(e.Player))
		}
		return fmt.Sprintf("%s to act", seatName(e.Player))
	case DealerRevealEvent:
		return fmt.Sprintf("Dealer reveals %s: %s (%d)", ef.formatCard(e.HoleCard), ef.formatCards(e.Cards), e.Value)
	case ReshuffleEvent:
		return "Reshuffling deck..."
	case HandSettledEvent:
		return ef.formatSettled(e)
	case RoundEndEvent:
		return e.Summary
	case RoundResetEvent:
		switch {
		case e.Forfeited > 0:
			return fmt.Sprintf("Table reset mid-round, $%d in stakes forfeited", e.Forfeited)
		case e.Refunded > 0:
			return fmt.Sprintf("Table reset, $%d in stakes returned", e.Refunded)
		}
		return ""
	}
	return ""
}

func (ef *EventFormatter) formatCardDealt(e CardDealtEvent) string {
	prefix := ""
	if e.Reshuffled {
		prefix = "Reshuffling deck... "
	}
	if e.ToDealer() {
		if e.Hidden {
			return prefix + "Dealer takes a card face down"
		}
		if e.Value == 0 {
			return fmt.Sprintf("%sDealer shows %s", prefix, ef.formatCard(e.Card))
		}
		return fmt.Sprintf("%sDealer draws %s (%d)", prefix, ef.formatCard(e.Card), e.Value)
	}
	slot := ""
	if e.Slot == SlotSplit {
		slot = " (split)"
	}
	return fmt.Sprintf("%s%s%s gets %s (%d)", prefix, seatName(e.Player), slot, ef.formatCard(e.Card), e.Value)
}

func (ef *EventFormatter) formatSettled(e HandSettledEvent) string {
	r := e.Result
	slot := ""
	if r.Slot == SlotSplit {
		slot = " split hand"
	}
	switch {
	case r.Outcome.IsWin():
		return fmt.Sprintf("%s%s: %d vs %d — %s, collects $%d", seatName(r.Player), slot, r.Score, r.DealerScore, r.Outcome.Label(), r.Credit)
	case r.Outcome == Push:
		return fmt.Sprintf("%s%s: %d vs %d — %s, $%d returned", seatName(r.Player), slot, r.Score, r.DealerScore, r.Outcome.Label(), r.Credit)
	default:
		return fmt.Sprintf("%s%s: %d vs %d — %s, loses $%d", seatName(r.Player), slot, r.Score, r.DealerScore, r.Outcome.Label(), r.Bet)
	}
}

// formatCards formats a slice of cards
func (ef *EventFormatter) formatCards(cards []deck.Card) string {
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = ef.formatCard(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func (ef *EventFormatter) formatCard(card deck.Card) string {
	if ef.opts.Color && card.IsRed() {
		return fmt.Sprintf("\033[31m%s\033[0m", card.String())
	}
	return card.String()
}

func seatName(seat int) string {
	if seat == DealerSeat {
		return "Dealer"
	}
	return fmt.Sprintf("Player %d", seat+1)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

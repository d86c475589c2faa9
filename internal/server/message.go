package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/table"
)

// MessageType identifies the payload carried in Message.Data
type MessageType string

// Server → client message types. Client → server messages use the
// table.Action names ("place_bet", "hit", ...).
const (
	MessageTypeState MessageType = "state"
	MessageTypeEvent MessageType = "event"
	MessageTypeError MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type SetPlayerCountData struct {
	Count int `json:"count"`
}

// PlaceBetData bets for Player, or for the current bettor when Player is
// omitted
type PlaceBetData struct {
	Player *int `json:"player,omitempty"`
	Amount int  `json:"amount"`
}

// Server → Client Messages

type StateData struct {
	Snapshot game.Snapshot `json:"snapshot"`
	Chips    []int         `json:"chips,omitempty"`
}

type EventData struct {
	Type    game.EventType `json:"type"`
	Text    string         `json:"text,omitempty"`
	Payload any            `json:"payload"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// parseCommand maps a client message onto a table command
func parseCommand(msg *Message) (table.Command, error) {
	action := table.Action(msg.Type)
	switch action {
	case table.ActionSetPlayerCount:
		var data SetPlayerCountData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return table.Command{}, err
		}
		return table.Command{Action: action, Count: data.Count}, nil

	case table.ActionBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return table.Command{}, err
		}
		cmd := table.Command{Action: action, Player: table.CurrentBettor, Amount: data.Amount}
		if data.Player != nil {
			cmd.Player = *data.Player
		}
		return cmd, nil

	case table.ActionDeal, table.ActionHit, table.ActionStand, table.ActionDouble,
		table.ActionSplit, table.ActionNextPlayer, table.ActionReset:
		return table.Command{Action: action}, nil
	}
	return table.Command{}, table.ErrUnknownCommand
}

// publicEvent strips the hole card from events sent before it is revealed
func publicEvent(e game.GameEvent) game.GameEvent {
	if cd, ok := e.(game.CardDealtEvent); ok && cd.Hidden {
		cd.Card = deck.Card{}
		return cd
	}
	return e
}

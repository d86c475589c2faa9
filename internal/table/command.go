package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action names a round operation. The values double as websocket message
// types.
type Action string

const (
	ActionSetPlayerCount Action = "set_player_count"
	ActionBet            Action = "place_bet"
	ActionDeal           Action = "deal"
	ActionHit            Action = "hit"
	ActionStand          Action = "stand"
	ActionDouble         Action = "double"
	ActionSplit          Action = "split"
	ActionNextPlayer     Action = "next_player"
	ActionReset          Action = "reset"
)

// Actions lists every action a client may send
var Actions = []Action{
	ActionSetPlayerCount, ActionBet, ActionDeal, ActionHit, ActionStand,
	ActionDouble, ActionSplit, ActionNextPlayer, ActionReset,
}

// ErrUnknownCommand is returned for text or actions that name no operation
var ErrUnknownCommand = errors.New("unknown command")

// CurrentBettor in Command.Player bets for whichever seat is due to bet
const CurrentBettor = -1

// Command is one request to the round
type Command struct {
	Action Action `json:"action"`
	Player int    `json:"player,omitempty"`
	Amount int    `json:"amount,omitempty"`
	Count  int    `json:"count,omitempty"`
}

func (c Command) String() string {
	switch c.Action {
	case ActionBet:
		if c.Player == CurrentBettor {
			return fmt.Sprintf("bet %d", c.Amount)
		}
		return fmt.Sprintf("bet %d for player %d", c.Amount, c.Player+1)
	case ActionSetPlayerCount:
		return fmt.Sprintf("players %d", c.Count)
	}
	return string(c.Action)
}

// ParseCommand parses a text command such as "bet 50", "hit" or "players 2".
// Bets are placed for the current bettor.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}

	verb, args := fields[0], fields[1:]
	simple := map[string]Action{
		"deal": ActionDeal, "hit": ActionHit, "h": ActionHit,
		"stand": ActionStand, "s": ActionStand,
		"double": ActionDouble, "d": ActionDouble,
		"split": ActionSplit, "sp": ActionSplit,
		"next": ActionNextPlayer, "n": ActionNextPlayer,
		"reset": ActionReset, "r": ActionReset,
	}
	if action, ok := simple[verb]; ok {
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s takes no arguments", verb)
		}
		return Command{Action: action}, nil
	}

	switch verb {
	case "bet", "b":
		n, err := oneInt(verb, "amount", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Action: ActionBet, Player: CurrentBettor, Amount: n}, nil
	case "players", "p":
		n, err := oneInt(verb, "count", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Action: ActionSetPlayerCount, Count: n}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
}

func oneInt(verb, name string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s <%s>", verb, name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", verb, args[0])
	}
	return n, nil
}

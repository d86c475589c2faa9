package game

import "fmt"

// MaxPlayers is the number of seats at the table
const MaxPlayers = 2

// Phase is the round's position in Betting → Dealing → PlayerTurn → DealerTurn → Settlement
type Phase int

const (
	Betting Phase = iota
	Dealing
	PlayerTurn
	DealerTurn
	Settlement
)

var phaseNames = []string{"betting", "dealing", "player_turn", "dealer_turn", "settlement"}

func (p Phase) String() string {
	return phaseNames[p]
}

// MarshalText renders the phase by name in JSON snapshots
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText reads a phase written by MarshalText
func (p *Phase) UnmarshalText(text []byte) error {
	i, err := parseName("phase", phaseNames, text)
	*p = Phase(i)
	return err
}

// Slot identifies which of a player's hands is meant
type Slot int

const (
	SlotPrimary Slot = iota
	SlotSplit
)

var slotNames = []string{"primary", "split"}

func (s Slot) String() string {
	return slotNames[s]
}

// MarshalText renders the slot by name in JSON snapshots
func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(text []byte) error {
	i, err := parseName("slot", slotNames, text)
	*s = Slot(i)
	return err
}

// TurnState is a player's progress through their turn. A player without a
// split moves PlayingPrimary → Finished; after a split the primary slot hands
// over to PlayingSplit before finishing.
type TurnState int

const (
	PlayingPrimary TurnState = iota
	PlayingSplit
	Finished
)

var turnStateNames = []string{"playing_primary", "playing_split", "finished"}

func (t TurnState) String() string {
	return turnStateNames[t]
}

// MarshalText renders the state by name in JSON snapshots
func (t TurnState) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TurnState) UnmarshalText(text []byte) error {
	i, err := parseName("turn state", turnStateNames, text)
	*t = TurnState(i)
	return err
}

// Action is a player decision during PlayerTurn
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
)

func (a Action) String() string {
	return [...]string{"hit", "stand", "double", "split"}[a]
}

// ParseAction maps an action name back to its constant
func ParseAction(s string) (Action, error) {
	for a := Hit; a <= Split; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// parseName finds text in names, the inverse of the String lookups above
func parseName(kind string, names []string, text []byte) (int, error) {
	for i, name := range names {
		if name == string(text) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, text)
}

package game

import "errors"

// Rule violations reported by Round operations. All are recoverable: the
// round is left unchanged apart from its status line.
var (
	ErrInvalidBet    = errors.New("invalid bet")
	ErrNoBetPlaced   = errors.New("no bet placed")
	ErrIllegalAction = errors.New("illegal action")
)

// RuleError pairs one of the sentinel errors with a message fit for players
type RuleError struct {
	Kind    error
	Message string
}

func (e *RuleError) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}

func ruleError(kind error, message string) error {
	return &RuleError{Kind: kind, Message: message}
}

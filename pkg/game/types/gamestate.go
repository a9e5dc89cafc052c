package types

import "fmt"

// StateType is the wire tag of a GameState variant.
type StateType string

const (
	StateTypeWaiting  StateType = "Waiting"
	StateTypeAdding   StateType = "Adding"
	StateTypeGuessing StateType = "Guessing"
	StateTypeWon      StateType = "Won"
)

// GameState is a complete snapshot of the game as sent by the server.
// The set of variants is closed: Waiting, Adding, Guessing and Won.
// Snapshots are never mutated after decoding; a newer snapshot replaces
// an older one wholesale.
type GameState interface {
	Type() StateType
	isGameState()
}

// Waiting means the opponent has not joined yet.
type Waiting struct{}

// Adding is the ship placement phase. Ships are the local player's ships
// confirmed by the server and Size is the board dimension.
type Adding struct {
	Ships []Ship
	Size  int
}

// Guessing is the attack phase.
type Guessing struct{}

// Won is terminal.
type Won struct {
	Who Player
}

func (Waiting) Type() StateType  { return StateTypeWaiting }
func (Adding) Type() StateType   { return StateTypeAdding }
func (Guessing) Type() StateType { return StateTypeGuessing }
func (Won) Type() StateType      { return StateTypeWon }

func (Waiting) isGameState()  {}
func (Adding) isGameState()   {}
func (Guessing) isGameState() {}
func (Won) isGameState()      {}

// Initial returns the state every client starts in.
func Initial() GameState {
	return Waiting{}
}

// StateVisitor has one method per GameState variant. Adding a variant adds a
// method here, which breaks every visitor until it handles the new case.
type StateVisitor interface {
	VisitWaiting(Waiting) error
	VisitAdding(Adding) error
	VisitGuessing(Guessing) error
	VisitWon(Won) error
}

// VisitState dispatches state to the matching visitor method.
func VisitState(state GameState, v StateVisitor) error {
	switch s := state.(type) {
	case Waiting:
		return v.VisitWaiting(s)
	case Adding:
		return v.VisitAdding(s)
	case Guessing:
		return v.VisitGuessing(s)
	case Won:
		return v.VisitWon(s)
	default:
		return &UnknownVariantError{Kind: "game state", Value: fmt.Sprintf("%T", state)}
	}
}

// UnknownVariantError is returned when a value is not one of the known variants.
type UnknownVariantError struct {
	Kind  string
	Value string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s variant: %s", e.Kind, e.Value)
}

package input

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/broadside/pkg/game/types"
)

// ErrNoCommandForState is returned when a cell is clicked in a state that
// accepts no commands (Waiting, Won). Nothing is sent.
var ErrNoCommandForState = errors.New("no command for current state")

// Sender delivers a command to the server.
type Sender interface {
	SendCommand(ctx context.Context, cmd types.Command) error
}

// CommandEncoder turns cell clicks into commands. It holds the one piece of
// client-local UI state the protocol needs: the direction for the next ship.
//
// Commands are sent as they are built. Placement legality, overlap and bounds
// are not checked here; the server decides and answers with a new snapshot,
// possibly an unchanged one.
type CommandEncoder struct {
	sender    Sender
	direction types.ShipDirection
}

// NewCommandEncoder creates an encoder with the direction set to Horizontal.
func NewCommandEncoder(sender Sender) *CommandEncoder {
	return &CommandEncoder{
		sender:    sender,
		direction: types.ShipDirectionHorizontal,
	}
}

func (e *CommandEncoder) Direction() types.ShipDirection {
	return e.direction
}

func (e *CommandEncoder) SelectDirection(dir types.ShipDirection) {
	e.direction = dir
}

// ToggleDirection flips the selected direction and returns the new one.
func (e *CommandEncoder) ToggleDirection() types.ShipDirection {
	e.direction = e.direction.Toggle()
	return e.direction
}

// EncodeAddShip builds an AddShip at loc with the selected direction.
func (e *CommandEncoder) EncodeAddShip(loc types.Location) types.AddShip {
	return types.AddShip{Loc: loc, Dir: e.direction}
}

// EncodeGuessPos builds a GuessPos at loc.
func (e *CommandEncoder) EncodeGuessPos(loc types.Location) types.GuessPos {
	return types.GuessPos{Loc: loc}
}

// CommandFor returns the command a click at loc means in state.
func (e *CommandEncoder) CommandFor(state types.GameState, loc types.Location) (types.Command, error) {
	v := &clickVisitor{encoder: e, loc: loc}
	if err := types.VisitState(state, v); err != nil {
		return nil, err
	}
	return v.cmd, nil
}

type clickVisitor struct {
	encoder *CommandEncoder
	loc     types.Location
	cmd     types.Command
}

func (v *clickVisitor) VisitWaiting(types.Waiting) error {
	return fmt.Errorf("%w: %s", ErrNoCommandForState, types.StateTypeWaiting)
}

func (v *clickVisitor) VisitAdding(types.Adding) error {
	v.cmd = v.encoder.EncodeAddShip(v.loc)
	return nil
}

func (v *clickVisitor) VisitGuessing(types.Guessing) error {
	v.cmd = v.encoder.EncodeGuessPos(v.loc)
	return nil
}

func (v *clickVisitor) VisitWon(types.Won) error {
	return fmt.Errorf("%w: %s", ErrNoCommandForState, types.StateTypeWon)
}

// CellClicked builds the command for a click at loc and sends it. Send
// errors are returned unchanged.
func (e *CommandEncoder) CellClicked(ctx context.Context, state types.GameState, loc types.Location) (types.Command, error) {
	cmd, err := e.CommandFor(state, loc)
	if err != nil {
		return nil, err
	}
	if err := e.sender.SendCommand(ctx, cmd); err != nil {
		return cmd, err
	}
	return cmd, nil
}

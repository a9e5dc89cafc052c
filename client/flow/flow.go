package flow

import "github.com/cbodonnell/broadside/pkg/game/types"

type GameMode int

const (
	GameModeWaiting GameMode = iota
	GameModeAdding
	GameModeGuessing
	GameModeWon
	GameModeNetworkError
)

func (m GameMode) String() string {
	switch m {
	case GameModeWaiting:
		return "Waiting"
	case GameModeAdding:
		return "Adding"
	case GameModeGuessing:
		return "Guessing"
	case GameModeWon:
		return "Won"
	case GameModeNetworkError:
		return "Network Error"
	}
	return "Unknown"
}

// ModeFor returns the mode the client is in while state is current.
// GameModeNetworkError is never derived from a state; the client enters it
// when the connection ends.
func ModeFor(state types.GameState) (GameMode, error) {
	v := &modeVisitor{}
	if err := types.VisitState(state, v); err != nil {
		return GameModeNetworkError, err
	}
	return v.mode, nil
}

type modeVisitor struct {
	mode GameMode
}

func (v *modeVisitor) VisitWaiting(types.Waiting) error {
	v.mode = GameModeWaiting
	return nil
}

func (v *modeVisitor) VisitAdding(types.Adding) error {
	v.mode = GameModeAdding
	return nil
}

func (v *modeVisitor) VisitGuessing(types.Guessing) error {
	v.mode = GameModeGuessing
	return nil
}

func (v *modeVisitor) VisitWon(types.Won) error {
	v.mode = GameModeWon
	return nil
}

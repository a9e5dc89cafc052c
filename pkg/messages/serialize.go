package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/cbodonnell/broadside/pkg/game/types"
)

// DecodeServerFrame decodes a text frame received from the server.
// Any frame that is not a well formed snapshot with a known tag is rejected
// with a *DecodeError; the caller must not apply anything from it.
func DecodeServerFrame(b []byte) (*ServerFrame, error) {
	if !utf8.Valid(b) {
		return nil, &DecodeError{Reason: "frame is not valid UTF-8", Frame: b}
	}

	raw := serverFrameJSON{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Frame: b, Err: err}
	}
	if raw.Type == nil {
		return nil, &DecodeError{Reason: "missing type", Frame: b}
	}

	frame := &ServerFrame{Seq: raw.Seq}
	switch *raw.Type {
	case types.StateTypeWaiting:
		frame.State = types.Waiting{}
	case types.StateTypeGuessing:
		frame.State = types.Guessing{}
	case types.StateTypeAdding:
		state, err := decodeAdding(raw)
		if err != nil {
			return nil, &DecodeError{Reason: "invalid Adding state", Frame: b, Err: err}
		}
		frame.State = state
	case types.StateTypeWon:
		if raw.Who == nil {
			return nil, &DecodeError{Reason: "invalid Won state", Frame: b, Err: errors.New("missing who")}
		}
		frame.State = types.Won{Who: *raw.Who}
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown type %q", string(*raw.Type)), Frame: b}
	}

	return frame, nil
}

func decodeAdding(raw serverFrameJSON) (types.Adding, error) {
	if raw.Size == nil {
		return types.Adding{}, errors.New("missing size")
	}
	if *raw.Size < 1 {
		return types.Adding{}, fmt.Errorf("size must be positive, got %d", *raw.Size)
	}
	if *raw.Size > types.MaxBoardSize {
		return types.Adding{}, fmt.Errorf("size must be at most %d, got %d", types.MaxBoardSize, *raw.Size)
	}
	if raw.Ships == nil {
		return types.Adding{}, errors.New("missing ships")
	}

	ships := []types.Ship{}
	if err := json.Unmarshal(raw.Ships, &ships); err != nil {
		return types.Adding{}, fmt.Errorf("failed to decode ships: %w", err)
	}
	if ships == nil {
		ships = []types.Ship{}
	}
	for i, ship := range ships {
		if err := ship.Validate(); err != nil {
			return types.Adding{}, fmt.Errorf("ship %d: %w", i, err)
		}
	}

	return types.Adding{Ships: ships, Size: *raw.Size}, nil
}

// EncodeServerFrame encodes a snapshot the way the server sends it.
// seq is omitted from the frame when nil.
func EncodeServerFrame(state types.GameState, seq *uint64) ([]byte, error) {
	raw := serverFrameJSON{Seq: seq}
	switch s := state.(type) {
	case types.Waiting, types.Guessing:
	case types.Adding:
		ships := s.Ships
		if ships == nil {
			ships = []types.Ship{}
		}
		b, err := json.Marshal(ships)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ships: %w", err)
		}
		size := s.Size
		raw.Ships = b
		raw.Size = &size
	case types.Won:
		who := s.Who
		raw.Who = &who
	default:
		return nil, &types.UnknownVariantError{Kind: "game state", Value: fmt.Sprintf("%T", state)}
	}
	stateType := state.Type()
	raw.Type = &stateType

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s state: %w", stateType, err)
	}
	return b, nil
}

// EncodeCommand encodes a command as a single JSON text frame.
func EncodeCommand(cmd types.Command) ([]byte, error) {
	var raw commandJSON
	switch c := cmd.(type) {
	case types.AddShip:
		loc, dir := c.Loc, c.Dir
		raw = commandJSON{Type: types.CommandTypeAddShip, Loc: &loc, Dir: &dir}
	case types.GuessPos:
		loc := c.Loc
		raw = commandJSON{Type: types.CommandTypeGuessPos, Loc: &loc}
	default:
		return nil, &types.UnknownVariantError{Kind: "command", Value: fmt.Sprintf("%T", cmd)}
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s command: %w", raw.Type, err)
	}
	return b, nil
}

// DecodeCommand decodes a client to server frame.
func DecodeCommand(b []byte) (types.Command, error) {
	raw := commandJSON{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Frame: b, Err: err}
	}
	if raw.Loc == nil {
		return nil, &DecodeError{Reason: "missing loc", Frame: b}
	}

	switch raw.Type {
	case types.CommandTypeAddShip:
		if raw.Dir == nil {
			return nil, &DecodeError{Reason: "missing dir", Frame: b}
		}
		return types.AddShip{Loc: *raw.Loc, Dir: *raw.Dir}, nil
	case types.CommandTypeGuessPos:
		return types.GuessPos{Loc: *raw.Loc}, nil
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown type %q", string(raw.Type)), Frame: b}
	}
}

// AsDecodeError returns the DecodeError in err's chain, if any.
func AsDecodeError(err error) (*DecodeError, bool) {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr, true
	}
	return nil, false
}

package input

import (
	"context"
	"errors"
	"testing"

	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []types.Command
	err  error
}

func (s *fakeSender) SendCommand(ctx context.Context, cmd types.Command) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, cmd)
	return nil
}

func TestActionForEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   termbox.Event
		want Action
	}{
		{name: "arrow up", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowUp}, want: ActionUp},
		{name: "arrow down", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowDown}, want: ActionDown},
		{name: "arrow left", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowLeft}, want: ActionLeft},
		{name: "arrow right", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowRight}, want: ActionRight},
		{name: "k", ev: termbox.Event{Type: termbox.EventKey, Ch: 'k'}, want: ActionUp},
		{name: "j", ev: termbox.Event{Type: termbox.EventKey, Ch: 'j'}, want: ActionDown},
		{name: "h", ev: termbox.Event{Type: termbox.EventKey, Ch: 'h'}, want: ActionLeft},
		{name: "l", ev: termbox.Event{Type: termbox.EventKey, Ch: 'l'}, want: ActionRight},
		{name: "space", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeySpace}, want: ActionClick},
		{name: "enter", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEnter}, want: ActionClick},
		{name: "r", ev: termbox.Event{Type: termbox.EventKey, Ch: 'r'}, want: ActionToggleDirection},
		{name: "q", ev: termbox.Event{Type: termbox.EventKey, Ch: 'q'}, want: ActionQuit},
		{name: "esc", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}, want: ActionQuit},
		{name: "ctrl-c", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyCtrlC}, want: ActionQuit},
		{name: "unbound key", ev: termbox.Event{Type: termbox.EventKey, Ch: 'z'}, want: ActionNone},
		{name: "resize", ev: termbox.Event{Type: termbox.EventResize, Width: 80, Height: 24}, want: ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionForEvent(tt.ev))
		})
	}
}

func TestCommandEncoder_Direction(t *testing.T) {
	e := NewCommandEncoder(&fakeSender{})
	assert.Equal(t, types.ShipDirectionHorizontal, e.Direction())
	assert.Equal(t, types.ShipDirectionVertical, e.ToggleDirection())
	assert.Equal(t, types.ShipDirectionHorizontal, e.ToggleDirection())

	e.SelectDirection(types.ShipDirectionVertical)
	assert.Equal(t, types.AddShip{Loc: types.Location{X: 2, Y: 3}, Dir: types.ShipDirectionVertical}, e.EncodeAddShip(types.Location{X: 2, Y: 3}))
	assert.Equal(t, types.GuessPos{Loc: types.Location{X: 0, Y: 9}}, e.EncodeGuessPos(types.Location{X: 0, Y: 9}))
}

func TestCommandEncoder_CellClicked(t *testing.T) {
	loc := types.Location{X: 4, Y: 1}
	tests := []struct {
		name    string
		state   types.GameState
		want    types.Command
		wantErr error
	}{
		{
			name:  "adding sends AddShip",
			state: types.Adding{Ships: []types.Ship{}, Size: 10},
			want:  types.AddShip{Loc: loc, Dir: types.ShipDirectionHorizontal},
		},
		{
			name:  "guessing sends GuessPos",
			state: types.Guessing{},
			want:  types.GuessPos{Loc: loc},
		},
		{
			name:    "waiting sends nothing",
			state:   types.Waiting{},
			wantErr: ErrNoCommandForState,
		},
		{
			name:    "won sends nothing",
			state:   types.Won{Who: types.Player1},
			wantErr: ErrNoCommandForState,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			e := NewCommandEncoder(sender)

			cmd, err := e.CellClicked(context.Background(), tt.state, loc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmd)
				assert.Empty(t, sender.sent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, []types.Command{tt.want}, sender.sent)
		})
	}
}

func TestCommandEncoder_DoesNotValidatePlacement(t *testing.T) {
	sender := &fakeSender{}
	e := NewCommandEncoder(sender)

	// off the board entirely; the server decides
	_, err := e.CellClicked(context.Background(), types.Adding{Ships: []types.Ship{}, Size: 3}, types.Location{X: 7, Y: -1})
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestCommandEncoder_ReturnsSendErrors(t *testing.T) {
	sendErr := errors.New("channel closed")
	e := NewCommandEncoder(&fakeSender{err: sendErr})

	cmd, err := e.CellClicked(context.Background(), types.Guessing{}, types.Location{X: 1, Y: 1})
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, types.GuessPos{Loc: types.Location{X: 1, Y: 1}}, cmd)
}

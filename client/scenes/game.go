package scenes

import (
	"fmt"

	"github.com/cbodonnell/broadside/pkg/game/board"
	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/nsf/termbox-go"
)

const (
	gridLeft = 1
	gridTop  = 3
	// each cell is drawn two columns wide so the grid looks square
	cellWidth = 2

	shipCell  = 'o'
	emptyCell = '.'
)

// AddingScene draws the player's ships during placement.
type AddingScene struct {
	state     types.Adding
	cursor    types.Location
	direction types.ShipDirection
	status    string

	grid board.Grid
	err  error
}

var _ Scene = &AddingScene{}

type AddingSceneOptions struct {
	State     types.Adding
	Cursor    types.Location
	Direction types.ShipDirection
	// Status is an optional line shown under the grid.
	Status string
}

// NewAddingScene projects the ships of the state. A snapshot whose ships do
// not fit the board is drawn as an error instead of a grid.
func NewAddingScene(opts AddingSceneOptions) *AddingScene {
	grid, err := board.Project(opts.State.Ships, opts.State.Size)
	return &AddingScene{
		state:     opts.State,
		cursor:    opts.Cursor,
		direction: opts.Direction,
		status:    opts.Status,
		grid:      grid,
		err:       err,
	}
}

// Err returns the projection error, if any.
func (s *AddingScene) Err() error {
	return s.err
}

func (s *AddingScene) Draw(c Canvas) {
	DrawText(c, gridLeft, 1, fmt.Sprintf("Place your ships (%d placed)", len(s.state.Ships)), termbox.ColorDefault|termbox.AttrBold, termbox.ColorDefault)

	if s.err != nil {
		DrawText(c, gridLeft, gridTop, "Cannot draw board: "+s.err.Error(), termbox.ColorRed, termbox.ColorDefault)
		drawFooter(c, gridTop+2, s.status, "q: quit")
		return
	}

	drawGrid(c, s.grid.Size(), s.cursor, func(loc types.Location) (rune, termbox.Attribute) {
		if s.grid.Occupied(loc) {
			return shipCell, termbox.ColorCyan
		}
		return emptyCell, termbox.ColorDefault
	})
	drawFooter(c, gridTop+s.grid.Size()+1, s.status,
		fmt.Sprintf("Direction: %s", s.direction),
		"arrows/hjkl: move  space: place  r: rotate  q: quit",
	)
}

// GuessingScene draws the opponent's board while guessing. Guess results are
// not part of the protocol, so every cell is blank.
type GuessingScene struct {
	size   int
	cursor types.Location
	status string
}

var _ Scene = &GuessingScene{}

type GuessingSceneOptions struct {
	Size   int
	Cursor types.Location
	Status string
}

// NewGuessingScene draws a blank board. Size is capped at types.MaxBoardSize.
func NewGuessingScene(opts GuessingSceneOptions) *GuessingScene {
	size := opts.Size
	if size > types.MaxBoardSize {
		size = types.MaxBoardSize
	}
	return &GuessingScene{
		size:   size,
		cursor: opts.Cursor,
		status: opts.Status,
	}
}

func (s *GuessingScene) Draw(c Canvas) {
	DrawText(c, gridLeft, 1, "Guess a position", termbox.ColorDefault|termbox.AttrBold, termbox.ColorDefault)
	drawGrid(c, s.size, s.cursor, func(types.Location) (rune, termbox.Attribute) {
		return emptyCell, termbox.ColorDefault
	})
	drawFooter(c, gridTop+s.size+1, s.status,
		"arrows/hjkl: move  space: guess  q: quit",
	)
}

func drawGrid(c Canvas, size int, cursor types.Location, cell func(types.Location) (rune, termbox.Attribute)) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			loc := types.Location{X: x, Y: y}
			ch, fg := cell(loc)
			bg := termbox.ColorDefault
			if loc == cursor {
				fg |= termbox.AttrReverse
			}
			c.SetCell(gridLeft+x*cellWidth, gridTop+y, ch, fg, bg)
		}
	}
}

func drawFooter(c Canvas, y int, status string, lines ...string) {
	for _, line := range lines {
		DrawText(c, gridLeft, y, line, termbox.ColorDefault, termbox.ColorDefault)
		y++
	}
	if status != "" {
		DrawText(c, gridLeft, y+1, status, termbox.ColorYellow, termbox.ColorDefault)
	}
}

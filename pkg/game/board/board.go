package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cbodonnell/broadside/pkg/game/types"
)

// Grid is an occupancy grid indexed [y][x]. It is derived for rendering
// only and is never sent or persisted.
type Grid [][]bool

// InvariantViolationError means a snapshot references a cell outside the
// board. It indicates a protocol level bug and the snapshot must not be
// projected.
type InvariantViolationError struct {
	ShipIndex int
	Location  types.Location
	Size      int
	Reason    string
}

func (e *InvariantViolationError) Error() string {
	if e.ShipIndex < 0 {
		return fmt.Sprintf("board invariant violated: %s", e.Reason)
	}
	return fmt.Sprintf("board invariant violated: ship %d cell %s is outside a board of size %d", e.ShipIndex, e.Location, e.Size)
}

// IsInvariantViolation reports whether err is, or wraps, an InvariantViolationError.
func IsInvariantViolation(err error) bool {
	var violation *InvariantViolationError
	return errors.As(err, &violation)
}

// Project maps ships onto a size x size occupancy grid. Cell [y][x] is true
// iff some ship contains Location{x, y}. The grid is rebuilt on every call.
// Out of bounds cells are reported, never clamped.
func Project(ships []types.Ship, size int) (Grid, error) {
	if size < 1 {
		return nil, &InvariantViolationError{
			ShipIndex: -1,
			Size:      size,
			Reason:    fmt.Sprintf("board size must be positive, got %d", size),
		}
	}

	if size > types.MaxBoardSize {
		return nil, &InvariantViolationError{
			ShipIndex: -1,
			Size:      size,
			Reason:    fmt.Sprintf("board size must be at most %d, got %d", types.MaxBoardSize, size),
		}
	}

	grid := make(Grid, size)
	for y := range grid {
		grid[y] = make([]bool, size)
	}

	for i, ship := range ships {
		for _, loc := range ship {
			if !loc.InBounds(size) {
				return nil, &InvariantViolationError{ShipIndex: i, Location: loc, Size: size}
			}
			grid[loc.Y][loc.X] = true
		}
	}

	return grid, nil
}

// ProjectState projects the ships of an Adding snapshot. Other snapshots have
// no board to render and yield a nil grid.
func ProjectState(state types.GameState) (Grid, error) {
	adding, ok := state.(types.Adding)
	if !ok {
		return nil, nil
	}
	return Project(adding.Ships, adding.Size)
}

// Size returns the board dimension.
func (g Grid) Size() int {
	return len(g)
}

// Occupied reports whether loc is covered by a ship. Cells outside the grid
// are unoccupied.
func (g Grid) Occupied(loc types.Location) bool {
	if !loc.InBounds(g.Size()) {
		return false
	}
	return g[loc.Y][loc.X]
}

// Count returns the number of occupied cells.
func (g Grid) Count() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell {
				n++
			}
		}
	}
	return n
}

// String renders one line per row, 'o' for occupied and '.' for empty.
func (g Grid) String() string {
	var sb strings.Builder
	for _, row := range g {
		for _, cell := range row {
			if cell {
				sb.WriteByte('o')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

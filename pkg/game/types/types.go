package types

import (
	"fmt"
	"strings"
)

// MaxBoardSize is the largest board dimension a client will accept.
const MaxBoardSize = 64

// Location is a cell on the board. Coordinates are 0-indexed.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewLocation(x, y int) Location {
	return Location{X: x, Y: y}
}

// InBounds reports whether the location lies on a board of the given size.
func (l Location) InBounds(size int) bool {
	return l.X >= 0 && l.X < size && l.Y >= 0 && l.Y < size
}

func (l Location) String() string {
	return fmt.Sprintf("(%d, %d)", l.X, l.Y)
}

// ShipDirection controls how a ship extends from its anchor.
type ShipDirection uint8

const (
	ShipDirectionHorizontal ShipDirection = iota
	ShipDirectionVertical
)

const (
	shipDirectionHorizontalText = "Horz"
	shipDirectionVerticalText   = "Vert"
)

func (d ShipDirection) String() string {
	switch d {
	case ShipDirectionHorizontal:
		return shipDirectionHorizontalText
	case ShipDirectionVertical:
		return shipDirectionVerticalText
	default:
		return fmt.Sprintf("ShipDirection(%d)", uint8(d))
	}
}

// Toggle returns the other direction.
func (d ShipDirection) Toggle() ShipDirection {
	if d == ShipDirectionHorizontal {
		return ShipDirectionVertical
	}
	return ShipDirectionHorizontal
}

func (d ShipDirection) MarshalText() ([]byte, error) {
	switch d {
	case ShipDirectionHorizontal, ShipDirectionVertical:
		return []byte(d.String()), nil
	default:
		return nil, fmt.Errorf("invalid ship direction: %d", uint8(d))
	}
}

func (d *ShipDirection) UnmarshalText(text []byte) error {
	switch string(text) {
	case shipDirectionHorizontalText:
		*d = ShipDirectionHorizontal
	case shipDirectionVerticalText:
		*d = ShipDirectionVertical
	default:
		return fmt.Errorf("unknown ship direction: %q", string(text))
	}
	return nil
}

// ParseShipDirection parses user input such as "h", "horz", "V" or "vertical".
func ParseShipDirection(s string) (ShipDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horz", "horizontal":
		return ShipDirectionHorizontal, nil
	case "v", "vert", "vertical":
		return ShipDirectionVertical, nil
	default:
		return ShipDirectionHorizontal, fmt.Errorf("unknown ship direction: %q", s)
	}
}

// Ship is an ordered run of cells sharing a row or a column.
type Ship []Location

// NewShip builds the cells of a ship of the given length anchored at start.
func NewShip(start Location, dir ShipDirection, length int) Ship {
	ship := make(Ship, 0, length)
	for o := 0; o < length; o++ {
		switch dir {
		case ShipDirectionVertical:
			ship = append(ship, Location{X: start.X, Y: start.Y + o})
		default:
			ship = append(ship, Location{X: start.X + o, Y: start.Y})
		}
	}
	return ship
}

// Contains reports whether loc is one of the ship's cells.
func (s Ship) Contains(loc Location) bool {
	for _, c := range s {
		if c == loc {
			return true
		}
	}
	return false
}

// Validate checks the shape of the ship: non-empty, straight, contiguous
// and without duplicates. Bounds are not checked here.
func (s Ship) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("ship has no cells")
	}
	if len(s) == 1 {
		return nil
	}

	horizontal := s[0].Y == s[1].Y
	vertical := s[0].X == s[1].X
	if !horizontal && !vertical {
		return fmt.Errorf("ship cells %s and %s are not aligned", s[0], s[1])
	}

	min, max := s[0], s[0]
	seen := make(map[Location]struct{}, len(s))
	for _, c := range s {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("ship cell %s is duplicated", c)
		}
		seen[c] = struct{}{}
		if (horizontal && c.Y != s[0].Y) || (vertical && c.X != s[0].X) {
			return fmt.Errorf("ship cell %s is not aligned with %s", c, s[0])
		}
		if c.X < min.X || c.Y < min.Y {
			min = c
		}
		if c.X > max.X || c.Y > max.Y {
			max = c
		}
	}

	span := max.X - min.X
	if vertical {
		span = max.Y - min.Y
	}
	if span != len(s)-1 {
		return fmt.Errorf("ship cells from %s to %s are not contiguous", min, max)
	}
	return nil
}

// Player identifies a side of the game.
type Player uint8

const (
	Player1 Player = iota
	Player2
)

const (
	player1Text = "Player1"
	player2Text = "Player2"
)

func (p Player) String() string {
	switch p {
	case Player1:
		return player1Text
	case Player2:
		return player2Text
	default:
		return fmt.Sprintf("Player(%d)", uint8(p))
	}
}

// Number returns 1 or 2.
func (p Player) Number() int {
	return int(p) + 1
}

func (p Player) MarshalText() ([]byte, error) {
	switch p {
	case Player1, Player2:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("invalid player: %d", uint8(p))
	}
}

func (p *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case player1Text:
		*p = Player1
	case player2Text:
		*p = Player2
	default:
		return fmt.Errorf("unknown player: %q", string(text))
	}
	return nil
}

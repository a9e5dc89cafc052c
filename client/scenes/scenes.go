package scenes

import (
	"github.com/nsf/termbox-go"
)

// Canvas is a grid of character cells.
type Canvas interface {
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
}

// TermboxCanvas draws to the terminal. termbox must be initialized.
type TermboxCanvas struct{}

var _ Canvas = TermboxCanvas{}

func (TermboxCanvas) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(x, y, ch, fg, bg)
}

type Scene interface {
	Draw(c Canvas)
}

// DrawText writes s starting at (x, y) and returns the column after it.
func DrawText(c Canvas, x, y int, s string, fg, bg termbox.Attribute) int {
	for _, ch := range s {
		c.SetCell(x, y, ch, fg, bg)
		x++
	}
	return x
}

// TextScene is a scene of plain lines.
type TextScene struct {
	Lines []string
	Fg    termbox.Attribute
}

var _ Scene = &TextScene{}

func (s *TextScene) Draw(c Canvas) {
	for i, line := range s.Lines {
		DrawText(c, 1, 1+i, line, s.Fg, termbox.ColorDefault)
	}
}

func NewWaitingScene() Scene {
	return &TextScene{
		Lines: []string{
			"Waiting for second player...",
			"",
			"q: quit",
		},
		Fg: termbox.ColorDefault,
	}
}

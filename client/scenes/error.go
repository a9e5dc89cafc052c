package scenes

import "github.com/nsf/termbox-go"

type ErrorScene struct {
	*TextScene
}

var _ Scene = &ErrorScene{}

func NewErrorScene(msg string) Scene {
	return &ErrorScene{
		TextScene: &TextScene{
			Lines: []string{msg},
			Fg:    termbox.ColorRed | termbox.AttrBold,
		},
	}
}

package scenes

import (
	"fmt"

	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/nsf/termbox-go"
)

type WonScene struct {
	*TextScene
	// Status is drawn under the result, e.g. when the server has hung up.
	Status string
}

var _ Scene = &WonScene{}

func NewWonScene(state types.Won, status string) Scene {
	return &WonScene{
		TextScene: &TextScene{
			Lines: []string{
				fmt.Sprintf("%s wins!", state.Who),
				"",
				"Game Over. q: quit",
			},
			Fg: termbox.ColorGreen | termbox.AttrBold,
		},
		Status: status,
	}
}

func (s *WonScene) Draw(c Canvas) {
	s.TextScene.Draw(c)
	if s.Status != "" {
		DrawText(c, 1, 2+len(s.Lines), s.Status, termbox.ColorYellow, termbox.ColorDefault)
	}
}

package input

import "github.com/nsf/termbox-go"

// Action is a discrete player gesture, independent of the key that produced it.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	// ActionClick selects the cell under the cursor
	ActionClick
	// ActionToggleDirection flips the direction used for the next AddShip
	ActionToggleDirection
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionClick:
		return "Click"
	case ActionToggleDirection:
		return "ToggleDirection"
	case ActionQuit:
		return "Quit"
	}
	return "Unknown"
}

// ActionForEvent maps a terminal key event to an Action. Non-key events and
// unbound keys map to ActionNone.
func ActionForEvent(ev termbox.Event) Action {
	if ev.Type != termbox.EventKey {
		return ActionNone
	}

	switch ev.Key {
	case termbox.KeyArrowUp:
		return ActionUp
	case termbox.KeyArrowDown:
		return ActionDown
	case termbox.KeyArrowLeft:
		return ActionLeft
	case termbox.KeyArrowRight:
		return ActionRight
	case termbox.KeySpace, termbox.KeyEnter:
		return ActionClick
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return ActionQuit
	}

	switch ev.Ch {
	case 'k':
		return ActionUp
	case 'j':
		return ActionDown
	case 'h':
		return ActionLeft
	case 'l':
		return ActionRight
	case 'r', 'R':
		return ActionToggleDirection
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}

package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/broadside/client/flow"
	"github.com/cbodonnell/broadside/client/input"
	"github.com/cbodonnell/broadside/client/scenes"
	"github.com/cbodonnell/broadside/client/ui"
	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/state"
	"github.com/nsf/termbox-go"
)

const (
	// DefaultBoardSize is used for the guessing board until an Adding
	// snapshot has told us the real size.
	DefaultBoardSize = 10

	sendTimeout = 5 * time.Second
)

// Network is the part of the network manager the game drives.
type Network interface {
	input.Sender
	ProcessServerMessages() (int, error)
	ErrChan() <-chan error
}

// Game owns everything the UI loop touches: it applies server frames, turns
// player actions into commands and picks the scene to draw.
// It is not safe for concurrent use; call it from the UI goroutine only.
type Game struct {
	// debug draws frame counters under the scene.
	debug   bool
	network Network
	store   state.Store
	encoder *input.CommandEncoder
	logger  *log.Logger

	// mode is the current game mode.
	mode      flow.GameMode
	cursor    types.Location
	boardSize int
	// status is the last message for the player, cleared by the next state change.
	status   string
	connErr  *ui.ActionableError
	quit     bool
	updates  int
	appliedN int

	unsubscribe func()
}

type NewGameOptions struct {
	Debug   bool
	Network Network
	Store   state.Store
	Logger  *log.Logger
}

func NewGame(opts NewGameOptions) (*Game, error) {
	if opts.Network == nil {
		return nil, fmt.Errorf("network is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	g := &Game{
		debug:     opts.Debug,
		network:   opts.Network,
		store:     opts.Store,
		encoder:   input.NewCommandEncoder(opts.Network),
		logger:    logger,
		boardSize: DefaultBoardSize,
	}
	g.onStateChange(nil, opts.Store.Get())
	g.unsubscribe = opts.Store.Subscribe(g.onStateChange)

	return g, nil
}

func (g *Game) onStateChange(previous, next types.GameState) {
	mode, err := flow.ModeFor(next)
	if err != nil {
		g.logger.Error("Failed to determine game mode: %v", err)
		return
	}
	if g.connErr == nil {
		g.mode = mode
	}
	g.status = ""

	// decoded frames always have 1 <= Size <= types.MaxBoardSize; the check
	// only matters for states written to the store directly
	if adding, ok := next.(types.Adding); ok && adding.Size >= 1 && adding.Size <= types.MaxBoardSize {
		g.boardSize = adding.Size
	}
	g.cursor = clampCursor(g.cursor, g.boardSize)

	if previous != nil {
		g.logger.Debug("Game state changed from %s to %s", previous.Type(), next.Type())
	}
}

func clampCursor(loc types.Location, size int) types.Location {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v >= size {
			return size - 1
		}
		return v
	}
	return types.Location{X: clamp(loc.X), Y: clamp(loc.Y)}
}

// Update applies pending server frames and checks whether the connection ended.
func (g *Game) Update() error {
	g.updates++
	g.checkNetworkErrors()
	n, err := g.network.ProcessServerMessages()
	g.appliedN += n
	if err != nil {
		return fmt.Errorf("failed to process server messages: %w", err)
	}
	return nil
}

func (g *Game) checkNetworkErrors() {
	select {
	case err := <-g.network.ErrChan():
		g.logger.Error("Connection ended: %v", err)
		g.connErr = ui.ForConnectionError(err)
		g.mode = flow.GameModeNetworkError
	default:
	}
}

// HandleAction applies one player action. Send failures are shown to the
// player and logged, not returned.
func (g *Game) HandleAction(ctx context.Context, action input.Action) {
	switch action {
	case input.ActionQuit:
		g.quit = true
	case input.ActionUp:
		g.moveCursor(0, -1)
	case input.ActionDown:
		g.moveCursor(0, 1)
	case input.ActionLeft:
		g.moveCursor(-1, 0)
	case input.ActionRight:
		g.moveCursor(1, 0)
	case input.ActionToggleDirection:
		dir := g.encoder.ToggleDirection()
		g.logger.Debug("Selected direction %s", dir)
	case input.ActionClick:
		g.click(ctx)
	}
}

func (g *Game) moveCursor(dx, dy int) {
	g.cursor = clampCursor(types.Location{X: g.cursor.X + dx, Y: g.cursor.Y + dy}, g.boardSize)
}

func (g *Game) click(ctx context.Context) {
	if g.mode == flow.GameModeNetworkError {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	cmd, err := g.encoder.CellClicked(ctx, g.store.Get(), g.cursor)
	if errors.Is(err, input.ErrNoCommandForState) {
		g.logger.Debug("Ignoring click at %s: %v", g.cursor, err)
		return
	}
	if err != nil {
		g.logger.Error("Failed to send command: %v", err)
		g.status = ui.ForSendError(err).Error()
		return
	}
	g.status = fmt.Sprintf("Sent %s at %s", cmd.Type(), g.cursor)
}

// Scene returns the scene for the current state.
func (g *Game) Scene() scenes.Scene {
	// a finished game keeps showing the result after the server hangs up
	if won, ok := g.store.Get().(types.Won); ok {
		status := g.status
		if g.connErr != nil {
			status = g.connErr.Error()
		}
		return scenes.NewWonScene(won, status)
	}
	if g.mode == flow.GameModeNetworkError && g.connErr != nil {
		return scenes.NewErrorScene(g.connErr.Error())
	}

	switch s := g.store.Get().(type) {
	case types.Adding:
		return scenes.NewAddingScene(scenes.AddingSceneOptions{
			State:     s,
			Cursor:    g.cursor,
			Direction: g.encoder.Direction(),
			Status:    g.status,
		})
	case types.Guessing:
		return scenes.NewGuessingScene(scenes.GuessingSceneOptions{
			Size:   g.boardSize,
			Cursor: g.cursor,
			Status: g.status,
		})
	default:
		return scenes.NewWaitingScene()
	}
}

func (g *Game) Draw(c scenes.Canvas) {
	g.Scene().Draw(c)
	if g.debug {
		g.drawDebugOverlay(c)
	}
}

func (g *Game) drawDebugOverlay(c scenes.Canvas) {
	scenes.DrawText(c, 1, 0, fmt.Sprintf("mode: %s  updates: %d  applied: %d", g.mode, g.updates, g.appliedN), termbox.ColorDefault, termbox.ColorDefault)
}

func (g *Game) Mode() flow.GameMode {
	return g.mode
}

func (g *Game) Cursor() types.Location {
	return g.cursor
}

func (g *Game) Status() string {
	return g.status
}

func (g *Game) Direction() types.ShipDirection {
	return g.encoder.Direction()
}

// Quit reports whether the player asked to quit.
func (g *Game) Quit() bool {
	return g.quit
}

// Close stops listening to the store.
func (g *Game) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

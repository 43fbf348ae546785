package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wumpus/internal/controller"
	"github.com/robalobadob/wumpus/internal/game"
)

type intent int

const (
	intentNone intent = iota
	intentQuit
	intentNew
	intentMove
	intentGrab
	intentShoot
	intentSolve
)

// keyIntent maps a key press to an intent. dir is set for intentMove.
func keyIntent(key tcell.Key, r rune) (intent, game.Direction) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return intentQuit, ""
	case tcell.KeyUp:
		return intentMove, game.Up
	case tcell.KeyDown:
		return intentMove, game.Down
	case tcell.KeyLeft:
		return intentMove, game.Left
	case tcell.KeyRight:
		return intentMove, game.Right
	case tcell.KeyRune:
	default:
		return intentNone, ""
	}

	switch r {
	case 'q', 'Q':
		return intentQuit, ""
	case 'n', 'N':
		return intentNew, ""
	case 'k':
		return intentMove, game.Up
	case 'j':
		return intentMove, game.Down
	case 'h':
		return intentMove, game.Left
	case 'l':
		return intentMove, game.Right
	case 'g', 'G':
		return intentGrab, ""
	case 'f', 'F':
		return intentShoot, ""
	case 's', 'S':
		return intentSolve, ""
	}
	return intentNone, ""
}

// Redrawer repaints the whole view, e.g. after a terminal resize.
type Redrawer interface{ Redraw() }

// RunTUI starts a world and then dispatches key presses until the operator
// quits. Each intent runs on its own goroutine so the screen stays live
// while a request is outstanding; the controller drops intents that arrive
// in the meantime.
func RunTUI(ctx context.Context, screen tcell.Screen, ctl Controller, view Redrawer, next WorldSource, log zerolog.Logger) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	dispatch := func(name string, op func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := op(ctx)
			switch {
			case err == nil:
			case errors.Is(err, controller.ErrBusy):
				log.Debug().Str("intent", name).Msg("dropped while busy")
			default:
				log.Debug().Err(err).Str("intent", name).Msg("intent failed")
			}
		}()
	}

	dispatch("initialize", func(ctx context.Context) error { return ctl.Initialize(ctx, next()) })

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			screen.Sync()
			view.Redraw()
		case *tcell.EventKey:
			what, dir := keyIntent(ev.Key(), ev.Rune())
			switch what {
			case intentQuit:
				return
			case intentNew:
				dispatch("initialize", func(ctx context.Context) error { return ctl.Initialize(ctx, next()) })
			case intentMove:
				dispatch("move", func(ctx context.Context) error { return ctl.Move(ctx, dir) })
			case intentGrab:
				dispatch("grab", ctl.Grab)
			case intentShoot:
				dispatch("shoot", ctl.Shoot)
			case intentSolve:
				dispatch("solve", ctl.Solve)
			}
		}
	}
}

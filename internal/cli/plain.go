// Package cli runs the operator-facing loops of the wumpus client: a
// line-oriented REPL for plain terminals and a tcell board for full screens.
// Both translate operator input into controller intents and nothing else;
// every game rule lives behind the controller and the remote service.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wumpus/internal/controller"
	"github.com/robalobadob/wumpus/internal/game"
)

// Controller is the subset of *controller.Controller the loops drive.
type Controller interface {
	Initialize(ctx context.Context, cfg game.WorldConfig) error
	Move(ctx context.Context, dir game.Direction) error
	Solve(ctx context.Context) error
	Grab(ctx context.Context) error
	Shoot(ctx context.Context) error
}

// WorldSource returns the configuration for the next world.
type WorldSource func() game.WorldConfig

const plainHelp = `commands:
  new                     start a new world
  up | down | left | right  move (also u/d/l/r)
  grab | shoot            act in the current cell
  solve                   show the service's plan
  help                    this text
  quit                    exit`

// RunPlain reads one command per line from in until EOF or "quit".
// Outcomes are reported by the controller's renderer; only local rejections
// are written to out.
func RunPlain(ctx context.Context, ctl Controller, next WorldSource, in io.Reader, out io.Writer, log zerolog.Logger) error {
	fmt.Fprintln(out, `type "help" for commands`)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		cmd := strings.ToLower(strings.TrimSpace(sc.Text()))
		if cmd == "" {
			continue
		}

		var err error
		switch cmd {
		case "quit", "q", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, plainHelp)
			continue
		case "new", "n", "init":
			err = ctl.Initialize(ctx, next())
		case "grab", "g":
			err = ctl.Grab(ctx)
		case "shoot", "f":
			err = ctl.Shoot(ctx)
		case "solve", "s":
			err = ctl.Solve(ctx)
		default:
			dir, ok := parseMove(cmd)
			if !ok {
				fmt.Fprintf(out, "unknown command %q\n", cmd)
				continue
			}
			err = ctl.Move(ctx, dir)
		}
		if msg := localRejection(err); msg != "" {
			fmt.Fprintln(out, msg)
		}
		if err != nil {
			log.Debug().Err(err).Str("cmd", cmd).Msg("intent failed")
		}
	}
}

// parseMove accepts a direction name, its first letter, or "move <dir>".
func parseMove(cmd string) (game.Direction, bool) {
	cmd = strings.TrimSpace(strings.TrimPrefix(cmd, "move "))
	switch cmd {
	case "u":
		return game.Up, true
	case "d":
		return game.Down, true
	case "l":
		return game.Left, true
	case "r":
		return game.Right, true
	}
	return game.ParseDirection(cmd)
}

// localRejection describes errors the renderer never saw. Remote failures
// were already shown as "Error: ..." and yield "".
func localRejection(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, controller.ErrIllegalTransition):
		return "not allowed now: " + err.Error()
	case errors.Is(err, controller.ErrBusy):
		return "busy; try again"
	case errors.Is(err, controller.ErrUnknownDirection):
		return err.Error()
	}
	return ""
}

// internal/controller/controller.go
//
// Session controller: the state machine between operator intents and the
// remote simulation.
// Responsibilities:
//   - Own the single session.State for this client.
//   - Check each intent against the current phase before any network call.
//   - Apply protocol results to state, then emit render instructions.
//   - Allow one outstanding remote call at a time; later intents are dropped.
//
// Phases: Idle (no world) → Active (moves accepted) → Terminated (game over,
// only initialize or solve accepted).

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wumpus/internal/game"
	"github.com/robalobadob/wumpus/internal/protocol"
	"github.com/robalobadob/wumpus/internal/session"
)

var (
	// ErrIllegalTransition is returned when an intent is not allowed in the
	// current phase. No remote call is made.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrBusy is returned when an intent arrives while another call is outstanding.
	ErrBusy = errors.New("another request is in progress")
	// ErrUnknownDirection is returned for a move in an unrecognised direction.
	ErrUnknownDirection = errors.New("unknown direction")
)

const (
	msgInitializing = "Initializing world..."
	msgInitialized  = "World initialized. You start at the bottom-left corner. Find the gold and return to start!"
	msgSolving      = "Calculating AI solution..."
	msgSolved       = "Solution displayed."
	msgWon          = "Congratulations! You won the game!"
	msgLostPrefix   = "Game over! "
	msgErrorPrefix  = "Error: "
)

// Phase is the controller's coarse state.
type Phase int

const (
	Idle Phase = iota
	Active
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Renderer is the surface the controller draws on.
type Renderer interface {
	DrawBoard(size int)
	PlaceAgent(p game.Position)
	ShowPercepts(percepts []string)
	ShowScore(score int)
	ShowMessage(msg string)
	SetMovementEnabled(enabled bool)
	SetSolveEnabled(enabled bool)
	ShowGoldFound()
	ShowSolution(steps []string)
}

// Remote is the simulation service as seen by the controller.
// *protocol.Client satisfies it.
type Remote interface {
	Initialize(ctx context.Context, cfg game.WorldConfig) (protocol.Session, error)
	Move(ctx context.Context, worldID string, dir game.Direction) (game.MoveOutcome, error)
	Solve(ctx context.Context, worldID string) ([]string, error)
	Grab(ctx context.Context, worldID string) (game.ActionOutcome, error)
	Shoot(ctx context.Context, worldID string) (game.ActionOutcome, error)
}

// Controller sequences intents against one session.
type Controller struct {
	remote  Remote
	view    Renderer
	log     zerolog.Logger
	timeout time.Duration

	inflight sync.Mutex // held for the whole of an intent

	mu    sync.RWMutex // guards state
	state session.State
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithTimeout bounds every remote call; zero leaves only the caller's context.
func WithTimeout(d time.Duration) Option { return func(c *Controller) { c.timeout = d } }

// New returns an Idle controller.
func New(remote Remote, view Renderer, opts ...Option) *Controller {
	c := &Controller{remote: remote, view: view, log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Phase reports the current phase.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return phaseOf(&c.state)
}

// State returns a snapshot of the session.
func (c *Controller) State() session.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

func phaseOf(s *session.State) Phase {
	switch {
	case !s.Active():
		return Idle
	case s.GameOver:
		return Terminated
	default:
		return Active
	}
}

// Initialize discards any current session and starts a new world from cfg.
// Protocol failures are shown on the surface and also returned.
func (c *Controller) Initialize(ctx context.Context, cfg game.WorldConfig) error {
	if !c.inflight.TryLock() {
		return ErrBusy
	}
	defer c.inflight.Unlock()

	c.mu.Lock()
	hadSession := c.state.Active()
	c.state.Reset()
	c.mu.Unlock()

	if hadSession {
		c.view.SetMovementEnabled(false)
		c.view.SetSolveEnabled(false)
	}
	c.view.ShowMessage(msgInitializing)

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	sess, err := c.remote.Initialize(ctx, cfg)
	if err == nil && !sess.Start.In(cfg.Size) {
		err = &protocol.Error{Op: "initialize", Message: fmt.Sprintf("start position %v is outside the grid", sess.Start), Err: protocol.ErrMalformed}
	}
	if err != nil {
		return c.fail("initialize", err)
	}

	c.mu.Lock()
	c.state.Begin(sess.WorldID, cfg.Size, sess.Start)
	c.mu.Unlock()
	c.log.Info().Str("world", sess.WorldID).Int("size", cfg.Size).Msg("world initialized")

	c.view.DrawBoard(cfg.Size)
	c.view.SetMovementEnabled(true)
	c.view.SetSolveEnabled(true)
	c.view.PlaceAgent(sess.Start)
	c.view.ShowPercepts([]string{})
	c.view.ShowScore(0)
	c.view.ShowMessage(msgInitialized)
	return nil
}

// Move asks the service to move the agent. The returned position is applied
// verbatim; the controller never computes it.
func (c *Controller) Move(ctx context.Context, dir game.Direction) error {
	if !c.inflight.TryLock() {
		return ErrBusy
	}
	defer c.inflight.Unlock()

	if !dir.Valid() {
		return fmt.Errorf("move %q: %w", dir, ErrUnknownDirection)
	}
	worldID, size, err := c.require("move", Active)
	if err != nil {
		return err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	out, err := c.remote.Move(ctx, worldID, dir)
	if err == nil && !out.NewPosition.In(size) {
		err = &protocol.Error{Op: "move", Message: fmt.Sprintf("new position %v is outside the grid", out.NewPosition), Err: protocol.ErrMalformed}
	}
	if err != nil {
		return c.fail("move", err)
	}

	c.mu.Lock()
	c.state.SetPosition(out.NewPosition)
	c.state.SetScore(out.Score)
	c.state.SetPercepts(out.Percepts)
	foundGold := out.HasGold && c.state.MarkGold()
	if out.GameOver {
		c.state.Finish(out.Won)
	}
	c.mu.Unlock()
	c.log.Debug().Str("world", worldID).Str("dir", string(dir)).Int("score", out.Score).Bool("game_over", out.GameOver).Msg("moved")

	c.view.PlaceAgent(out.NewPosition)
	c.view.ShowPercepts(out.Percepts)
	c.view.ShowScore(out.Score)
	c.view.ShowMessage(out.Message)
	if out.GameOver {
		c.view.SetMovementEnabled(false)
		if out.Won {
			c.view.ShowMessage(msgWon)
		} else {
			c.view.ShowMessage(msgLostPrefix + out.Message)
		}
	}
	if foundGold {
		c.view.ShowGoldFound()
	}
	return nil
}

// Solve fetches the service's plan. It is allowed whenever a world exists,
// including after the game ended, and never changes session state.
func (c *Controller) Solve(ctx context.Context) error {
	if !c.inflight.TryLock() {
		return ErrBusy
	}
	defer c.inflight.Unlock()

	worldID, _, err := c.require("solve", Active, Terminated)
	if err != nil {
		return err
	}
	c.view.ShowMessage(msgSolving)

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	steps, err := c.remote.Solve(ctx, worldID)
	if err != nil {
		return c.fail("solve", err)
	}

	c.view.ShowSolution(steps)
	c.view.ShowMessage(msgSolved)
	return nil
}

// Grab asks the service to pick up gold in the agent's cell.
func (c *Controller) Grab(ctx context.Context) error {
	return c.act(ctx, "grab", c.remote.Grab)
}

// Shoot fires the agent's single arrow.
func (c *Controller) Shoot(ctx context.Context) error {
	return c.act(ctx, "shoot", c.remote.Shoot)
}

func (c *Controller) act(ctx context.Context, op string, call func(context.Context, string) (game.ActionOutcome, error)) error {
	if !c.inflight.TryLock() {
		return ErrBusy
	}
	defer c.inflight.Unlock()

	worldID, _, err := c.require(op, Active)
	if err != nil {
		return err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	out, err := call(ctx, worldID)
	if err != nil {
		return c.fail(op, err)
	}

	c.mu.Lock()
	c.state.SetScore(out.Score)
	c.state.SetPercepts(out.Percepts)
	foundGold := out.HasGold && c.state.MarkGold()
	c.mu.Unlock()

	c.view.ShowPercepts(out.Percepts)
	c.view.ShowScore(out.Score)
	c.view.ShowMessage(out.Message)
	if foundGold {
		c.view.ShowGoldFound()
	}
	return nil
}

// require checks that the current phase is one of allowed and returns the
// world id and grid size to use for the call.
func (c *Controller) require(op string, allowed ...Phase) (string, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p := phaseOf(&c.state)
	for _, a := range allowed {
		if p == a {
			return c.state.WorldID, c.state.GridSize, nil
		}
	}
	c.log.Debug().Str("op", op).Stringer("phase", p).Msg("intent rejected")
	return "", 0, fmt.Errorf("%s while %s: %w", op, p, ErrIllegalTransition)
}

// fail surfaces a remote failure to the operator and returns it.
func (c *Controller) fail(op string, err error) error {
	c.log.Warn().Err(err).Str("op", op).Msg("remote call failed")
	c.view.ShowMessage(msgErrorPrefix + protocol.Message(err))
	return err
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

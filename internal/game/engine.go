// internal/game/engine.go
//
// World engine for a single Wumpus World session (server side).
// Responsibilities:
//   - Build a world from a WorldConfig, re-rolling hazards placed on the start cell.
//   - Apply moves, grabs and shots, tracking score and percepts.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - The client never runs this code; it is the oracle behind the HTTP service.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand"
	"strings"
)

const (
	moveCost    = 1
	shotCost    = 10
	goldReward  = 1000
	minGridSize = 2
)

var (
	ErrGameOver     = errors.New("game is already over")
	ErrOutOfBounds  = errors.New("cannot move outside the grid")
	ErrBadDirection = errors.New("unknown direction")
	ErrNoGold       = errors.New("no gold to grab here")
	ErrNoArrow      = errors.New("you have no arrows left")
)

// World holds the authoritative state of one simulation.
type World struct {
	ID          string
	Size        int
	Agent       Position
	Facing      Direction
	Wumpus      Position
	WumpusAlive bool
	Gold        Position
	Pits        []Position
	HasGold     bool
	HasArrow    bool
	Score       int
	Moves       int
	Finished    bool
	Won         bool
}

// New constructs a world from cfg.
// Wumpus and gold placed on the start cell are re-rolled using rng.
func New(cfg WorldConfig, rng *mrand.Rand) (*World, error) {
	if cfg.Size < minGridSize {
		return nil, fmt.Errorf("size must be at least %d", minGridSize)
	}
	for _, p := range append([]Position{cfg.Wumpus, cfg.Gold}, cfg.Pits...) {
		if !p.In(cfg.Size) {
			return nil, fmt.Errorf("position [%d, %d] is outside a %dx%d grid", p.Row, p.Col, cfg.Size, cfg.Size)
		}
	}

	w := &World{
		ID:          randomID(),
		Size:        cfg.Size,
		Facing:      Right,
		Wumpus:      cfg.Wumpus,
		WumpusAlive: true,
		Gold:        cfg.Gold,
		Pits:        append([]Position(nil), cfg.Pits...),
		HasArrow:    true,
	}
	for w.Wumpus == Origin {
		w.Wumpus = randomCell(rng, w.Size)
	}
	for w.Gold == Origin {
		w.Gold = randomCell(rng, w.Size)
	}
	return w, nil
}

// Percepts reports what the agent senses in its current cell.
func (w *World) Percepts() []Percept {
	var out []Percept
	if w.Agent == w.Gold && !w.HasGold {
		out = append(out, Glitter)
	}
	if w.WumpusAlive && w.Agent.Adjacent(w.Wumpus) {
		out = append(out, Stench)
	}
	for _, pit := range w.Pits {
		if w.Agent.Adjacent(pit) {
			out = append(out, Breeze)
			break
		}
	}
	return out
}

// Move advances the agent one cell in dir.
// Leaving the grid is rejected without changing score or position.
func (w *World) Move(dir Direction) (MoveOutcome, error) {
	if w.Finished {
		return MoveOutcome{}, ErrGameOver
	}
	delta, ok := dir.Delta()
	if !ok {
		return MoveOutcome{}, ErrBadDirection
	}
	w.Facing = dir

	next := w.Agent.Add(delta)
	if !next.In(w.Size) {
		return MoveOutcome{}, ErrOutOfBounds
	}
	w.Agent = next
	w.Score -= moveCost
	w.Moves++

	percepts := w.Percepts()
	out := MoveOutcome{
		NewPosition: w.Agent,
		Percepts:    Labels(percepts),
		Score:       w.Score,
		HasGold:     w.HasGold,
	}

	switch {
	case w.WumpusAlive && w.Agent == w.Wumpus:
		out.Message = "You were eaten by the Wumpus!"
		w.Finished = true
	case w.isPit(w.Agent):
		out.Message = "You fell into a pit!"
		w.Finished = true
	case w.HasGold && w.Agent == Origin:
		out.Message = "You won! You found the gold and returned safely!"
		w.Finished, w.Won = true, true
	default:
		out.Message = fmt.Sprintf("Moved %s. Percepts: %s", dir, strings.Join(out.Percepts, ", "))
	}
	out.GameOver, out.Won = w.Finished, w.Won
	return out, nil
}

// Grab picks up the gold if the agent stands on it.
func (w *World) Grab() (ActionOutcome, error) {
	if w.Finished {
		return ActionOutcome{}, ErrGameOver
	}
	if w.Agent != w.Gold || w.HasGold {
		return ActionOutcome{}, ErrNoGold
	}
	w.HasGold = true
	w.Score += goldReward
	return ActionOutcome{
		Message:  "You grabbed the gold! Now return to the start!",
		Score:    w.Score,
		Percepts: Labels(w.Percepts()),
		HasGold:  true,
	}, nil
}

// Shoot fires the single arrow in the direction of the last move.
func (w *World) Shoot() (ActionOutcome, error) {
	if w.Finished {
		return ActionOutcome{}, ErrGameOver
	}
	if !w.HasArrow {
		return ActionOutcome{}, ErrNoArrow
	}
	w.HasArrow = false
	w.Score -= shotCost

	out := ActionOutcome{Message: "You missed the Wumpus!", HasGold: w.HasGold}
	if w.WumpusAlive && inLine(w.Agent, w.Facing, w.Wumpus) {
		w.WumpusAlive = false
		out.Message = "You killed the Wumpus!"
		out.Percepts = Labels(append(w.Percepts(), Scream))
	} else {
		out.Percepts = Labels(w.Percepts())
	}
	out.Score = w.Score
	return out, nil
}

// Clone returns a deep copy that can be advanced independently.
func (w *World) Clone() *World {
	c := *w
	c.Pits = append([]Position(nil), w.Pits...)
	return &c
}

// Config reports the hazard layout actually in play (after re-rolls).
func (w *World) Config() WorldConfig {
	return WorldConfig{
		Size:   w.Size,
		Wumpus: w.Wumpus,
		Gold:   w.Gold,
		Pits:   append([]Position{}, w.Pits...),
	}
}

// State reports a coarse string form of the world state.
func (w *World) State() string {
	if w.Finished {
		if w.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}

func (w *World) isPit(p Position) bool {
	for _, pit := range w.Pits {
		if pit == p {
			return true
		}
	}
	return false
}

// inLine reports whether target lies strictly ahead of start when facing dir.
func inLine(start Position, dir Direction, target Position) bool {
	switch dir {
	case Up:
		return start.Col == target.Col && start.Row < target.Row
	case Down:
		return start.Col == target.Col && start.Row > target.Row
	case Left:
		return start.Row == target.Row && start.Col > target.Col
	case Right:
		return start.Row == target.Row && start.Col < target.Col
	}
	return false
}

// Labels converts percept tags into their wire labels.
func Labels(ps []Percept) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Label())
	}
	return out
}

func randomCell(rng *mrand.Rand, size int) Position {
	return Position{Row: rng.Intn(size), Col: rng.Intn(size)}
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

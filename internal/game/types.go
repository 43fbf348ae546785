// internal/game/types.go
//
// Core value types shared by the client and the reference simulation service.
// Defines:
//   - Position: a (row, col) grid coordinate, encoded on the wire as [row, col].
//   - Direction: up/down/left/right and the fixed row/col delta for each.
//   - Percept: the tags an agent can sense in a cell.
//   - WorldConfig, MoveOutcome, ActionOutcome: protocol payload shapes.

package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Position is an immutable grid coordinate.
// Row grows "up" the board; the origin (0,0) is the bottom-left cell.
type Position struct {
	Row int
	Col int
}

// Origin is the agent's starting cell.
var Origin = Position{}

// Add returns p shifted by delta d.
func (p Position) Add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

// In reports whether p lies inside a size×size grid.
func (p Position) In(size int) bool {
	return p.Row >= 0 && p.Row < size && p.Col >= 0 && p.Col < size
}

// Adjacent reports whether p and q share an edge.
func (p Position) Adjacent(q Position) bool {
	return abs(p.Row-q.Row)+abs(p.Col-q.Col) == 1
}

// String renders the display form "(col, row)".
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Col, p.Row)
}

// MarshalJSON encodes p as a two element array [row, col].
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Row, p.Col})
}

// UnmarshalJSON decodes a two element array [row, col].
// null leaves p unchanged, so an absent hazard stays at the origin and is re-rolled.
func (p *Position) UnmarshalJSON(b []byte) error {
	if strings.TrimSpace(string(b)) == "null" {
		return nil
	}
	var xy []int
	if err := json.Unmarshal(b, &xy); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("position: want 2 coordinates, got %d", len(xy))
	}
	p.Row, p.Col = xy[0], xy[1]
	return nil
}

// Direction is a movement intent.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the row/col offset for d. "up" increases the row index.
func (d Direction) Delta() (Position, bool) {
	switch d {
	case Up:
		return Position{Row: 1}, true
	case Down:
		return Position{Row: -1}, true
	case Left:
		return Position{Col: -1}, true
	case Right:
		return Position{Col: 1}, true
	}
	return Position{}, false
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	_, ok := d.Delta()
	return ok
}

// ParseDirection accepts a direction name in any case.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

// Percept is a sensation tag.
type Percept string

const (
	Stench  Percept = "stench"
	Breeze  Percept = "breeze"
	Glitter Percept = "glitter"
	Bump    Percept = "bump"
	Scream  Percept = "scream"
)

// Label is the capitalised wire/display name ("Stench").
func (p Percept) Label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// ParsePercept maps a wire label onto a known tag, ignoring case.
func ParsePercept(s string) (Percept, bool) {
	p := Percept(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Stench, Breeze, Glitter, Bump, Scream:
		return p, true
	}
	return "", false
}

// WorldConfig is the full world description sent on initialize.
type WorldConfig struct {
	Size   int        `json:"size"`
	Wumpus Position   `json:"wumpus_pos"`
	Gold   Position   `json:"gold_pos"`
	Pits   []Position `json:"pit_positions"`
}

// MarshalJSON keeps pit_positions an array even when there are no pits.
func (c WorldConfig) MarshalJSON() ([]byte, error) {
	type alias WorldConfig
	a := alias(c)
	if a.Pits == nil {
		a.Pits = []Position{}
	}
	return json.Marshal(a)
}

// MoveOutcome is the authoritative result of a single move.
type MoveOutcome struct {
	NewPosition Position
	Percepts    []string
	Score       int
	Message     string
	GameOver    bool
	Won         bool
	HasGold     bool
}

// ActionOutcome is the result of an in-place action (grab, shoot).
type ActionOutcome struct {
	Message  string
	Score    int
	Percepts []string
	HasGold  bool
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

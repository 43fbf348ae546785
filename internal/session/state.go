// Package session holds the client-side mirror of one remote world.
//
// State is a plain aggregate. It carries no legality rules beyond keeping
// HasGold monotonic; the controller decides when each setter may be called.
package session

import (
	"sort"

	"github.com/robalobadob/wumpus/internal/game"
)

// PerceptSet is the set of recognised percept tags last reported.
type PerceptSet map[game.Percept]bool

// Has reports whether p is in the set.
func (s PerceptSet) Has(p game.Percept) bool { return s[p] }

// Sorted returns the tags in a stable order.
func (s PerceptSet) Sorted() []game.Percept {
	out := make([]game.Percept, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// State is the client's record of the current session.
type State struct {
	WorldID  string // empty when no session is active
	GridSize int
	Position game.Position
	HasGold  bool
	GameOver bool
	Won      bool
	Score    int
	Percepts PerceptSet
}

// Reset returns s to the empty, pre-session shape.
func (s *State) Reset() {
	*s = State{}
}

// Active reports whether a remote world is attached.
func (s State) Active() bool { return s.WorldID != "" }

// Begin replaces the whole state with a fresh session.
func (s *State) Begin(worldID string, gridSize int, start game.Position) {
	*s = State{
		WorldID:  worldID,
		GridSize: gridSize,
		Position: start,
		Percepts: PerceptSet{},
	}
}

// SetPosition moves the agent marker.
func (s *State) SetPosition(p game.Position) { s.Position = p }

// SetScore records the service's score.
func (s *State) SetScore(n int) { s.Score = n }

// SetPercepts replaces the percept set; unknown labels are ignored.
func (s *State) SetPercepts(labels []string) {
	set := make(PerceptSet, len(labels))
	for _, l := range labels {
		if p, ok := game.ParsePercept(l); ok {
			set[p] = true
		}
	}
	s.Percepts = set
}

// MarkGold sets HasGold and reports whether this call changed it.
// There is no way to clear it short of Reset or Begin.
func (s *State) MarkGold() bool {
	if s.HasGold {
		return false
	}
	s.HasGold = true
	return true
}

// Finish marks the session terminal.
func (s *State) Finish(won bool) {
	s.GameOver = true
	s.Won = won
}

// Clone returns a copy that shares nothing with s.
func (s State) Clone() State {
	c := s
	if s.Percepts != nil {
		c.Percepts = make(PerceptSet, len(s.Percepts))
		for p := range s.Percepts {
			c.Percepts[p] = true
		}
	}
	return c
}

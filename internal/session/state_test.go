package session

import (
	"reflect"
	"testing"

	"github.com/robalobadob/wumpus/internal/game"
)

func TestBeginReplacesWholesale(t *testing.T) {
	var s State
	s.Begin("w1", 4, game.Origin)
	s.SetScore(-5)
	s.MarkGold()
	s.Finish(true)

	s.Begin("w2", 6, game.Position{Row: 1, Col: 1})
	if s.WorldID != "w2" || s.GridSize != 6 || s.HasGold || s.GameOver || s.Won || s.Score != 0 {
		t.Errorf("Begin left stale fields: %+v", s)
	}
	if !s.Active() {
		t.Errorf("Active() = false after Begin")
	}
}

func TestResetClearsSession(t *testing.T) {
	var s State
	s.Begin("w1", 4, game.Origin)
	s.Reset()
	if s.Active() || !reflect.DeepEqual(s, State{}) {
		t.Errorf("Reset() = %+v", s)
	}
}

func TestMarkGoldIsMonotonic(t *testing.T) {
	var s State
	s.Begin("w1", 4, game.Origin)
	if !s.MarkGold() {
		t.Fatal("first MarkGold reported no change")
	}
	if s.MarkGold() {
		t.Error("second MarkGold reported a change")
	}
	if !s.HasGold {
		t.Error("HasGold cleared")
	}
}

func TestSetPerceptsIgnoresUnknown(t *testing.T) {
	var s State
	s.SetPercepts([]string{"Stench", "breeze", "Smell"})
	want := []game.Percept{game.Breeze, game.Stench}
	if got := s.Percepts.Sorted(); !reflect.DeepEqual(got, want) {
		t.Errorf("Percepts = %v, want %v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var s State
	s.Begin("w1", 4, game.Origin)
	s.SetPercepts([]string{"Glitter"})
	c := s.Clone()
	s.SetPercepts(nil)
	if !c.Percepts.Has(game.Glitter) {
		t.Error("clone shares percept set with original")
	}
}

func TestActiveOnReturnedValue(t *testing.T) {
	snapshot := func(s State) State { return s }
	var s State
	if snapshot(s).Active() {
		t.Error("empty state reported active")
	}
	s.Begin("w1", 4, game.Origin)
	if !snapshot(s).Active() {
		t.Error("begun state reported inactive")
	}
}

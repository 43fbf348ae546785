// Package render provides surfaces the session controller draws on:
// a tcell terminal board for interactive play and a line-oriented text
// surface for pipes, scripts and logs.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/robalobadob/wumpus/internal/game"
)

// Text writes one line per render call.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

// NewText returns a Text surface writing to w.
func NewText(w io.Writer) *Text { return &Text{w: w} }

func (t *Text) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *Text) DrawBoard(size int)         { t.printf("board: %dx%d", size, size) }
func (t *Text) PlaceAgent(p game.Position) { t.printf("position: %s", p) }
func (t *Text) ShowPercepts(ps []string)   { t.printf("percepts: %s", PerceptLine(ps)) }
func (t *Text) ShowScore(n int)            { t.printf("score: %d", n) }
func (t *Text) ShowMessage(msg string)     { t.printf("%s", msg) }
func (t *Text) ShowGoldFound()             { t.printf("gold: Found!") }

func (t *Text) SetMovementEnabled(enabled bool) { t.printf("movement: %s", onOff(enabled)) }
func (t *Text) SetSolveEnabled(enabled bool)    { t.printf("solve: %s", onOff(enabled)) }

// ShowSolution prints the steps numbered from 1.
func (t *Text) ShowSolution(steps []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, "solution:")
	for _, line := range SolutionLines(steps) {
		fmt.Fprintln(t.w, "  "+line)
	}
}

// PerceptLine joins percept labels for display, or "None".
func PerceptLine(ps []string) string {
	if len(ps) == 0 {
		return "None"
	}
	return strings.Join(ps, ", ")
}

// SolutionLines numbers steps for display, starting at 1.
func SolutionLines(steps []string) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = fmt.Sprintf("%d. %s", i+1, s)
	}
	return out
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

package render

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/wumpus/internal/game"
)

const (
	boardLeft = 2
	boardTop  = 2
	cellWidth = 4
)

var (
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleCell     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAgent    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleGold     = tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true)
	styleMessage  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleDisabled = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
)

// Board draws the world on a tcell screen. It keeps its own copy of what
// was last shown and repaints the whole screen on every call.
type Board struct {
	mu     sync.Mutex
	screen tcell.Screen

	size     int
	agent    game.Position
	placed   bool
	percepts []string
	score    int
	gold     bool
	movement bool
	solve    bool
	message  string
	solution []string
}

// NewBoard wraps an initialised screen.
func NewBoard(screen tcell.Screen) *Board {
	return &Board{screen: screen}
}

// DrawBoard resets the grid to size×size and clears per-session HUD fields.
func (b *Board) DrawBoard(size int) {
	b.update(func() {
		b.size = size
		b.placed = false
		b.gold = false
		b.solution = nil
	})
}

func (b *Board) PlaceAgent(p game.Position) {
	b.update(func() { b.agent, b.placed = p, true })
}

func (b *Board) ShowPercepts(ps []string) {
	b.update(func() { b.percepts = append([]string(nil), ps...) })
}

func (b *Board) ShowScore(n int)        { b.update(func() { b.score = n }) }
func (b *Board) ShowMessage(msg string) { b.update(func() { b.message = msg }) }
func (b *Board) ShowGoldFound()         { b.update(func() { b.gold = true }) }

func (b *Board) SetMovementEnabled(on bool) { b.update(func() { b.movement = on }) }
func (b *Board) SetSolveEnabled(on bool)    { b.update(func() { b.solve = on }) }

func (b *Board) ShowSolution(steps []string) {
	b.update(func() { b.solution = append([]string(nil), steps...) })
}

// Redraw repaints the current view, e.g. after a resize.
func (b *Board) Redraw() { b.update(func() {}) }

func (b *Board) update(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
	b.draw()
	b.screen.Show()
}

// draw paints everything; the caller holds b.mu.
func (b *Board) draw() {
	b.screen.Clear()
	drawText(b.screen, boardLeft, 0, styleTitle, "WUMPUS WORLD")

	// Row size-1 is at the top so "up" moves the agent up the screen.
	for r := b.size - 1; r >= 0; r-- {
		y := boardTop + (b.size - 1 - r)
		for c := 0; c < b.size; c++ {
			x := boardLeft + c*cellWidth
			if b.placed && b.agent == (game.Position{Row: r, Col: c}) {
				drawText(b.screen, x, y, styleAgent, "[@]")
			} else {
				drawText(b.screen, x, y, styleCell, "[ ]")
			}
		}
	}

	y := boardTop + b.size + 1
	pos := "-"
	if b.placed {
		pos = b.agent.String()
	}
	drawText(b.screen, boardLeft, y, styleLabel, "Position: "+pos)
	drawText(b.screen, boardLeft, y+1, styleLabel, "Percepts: "+PerceptLine(b.percepts))
	drawText(b.screen, boardLeft, y+2, styleLabel, fmt.Sprintf("Score: %d", b.score))
	if b.gold {
		drawText(b.screen, boardLeft, y+3, styleGold, "Gold: Found!")
	} else {
		drawText(b.screen, boardLeft, y+3, styleLabel, "Gold: Not found")
	}

	moveStyle, solveStyle := styleLabel, styleLabel
	if !b.movement {
		moveStyle = styleDisabled
	}
	if !b.solve {
		solveStyle = styleDisabled
	}
	drawText(b.screen, boardLeft, y+5, moveStyle, "arrows/hjkl move  g grab  f shoot")
	drawText(b.screen, boardLeft, y+6, solveStyle, "s solve")
	drawText(b.screen, boardLeft, y+7, styleLabel, "n new world  q quit")
	drawText(b.screen, boardLeft, y+9, styleMessage, b.message)

	if len(b.solution) > 0 {
		x := boardLeft + b.size*cellWidth + 4
		drawText(b.screen, x, boardTop, styleTitle, "Solution:")
		for i, line := range SolutionLines(b.solution) {
			drawText(b.screen, x, boardTop+1+i, styleLabel, line)
		}
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

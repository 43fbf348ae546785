package game

import "fmt"

// DefaultSolveSteps bounds how long the solver explores before giving up.
const DefaultSolveSteps = 200

// knowledge is what the solver agent has inferred so far.
type knowledge struct {
	size    int
	visited map[Position]bool
	safe    map[Position]bool
}

func newKnowledge(size int) *knowledge {
	return &knowledge{
		size:    size,
		visited: map[Position]bool{Origin: true},
		safe:    map[Position]bool{Origin: true},
	}
}

// observe records a visit; a cell with no breeze and no stench proves
// every neighbour safe.
func (k *knowledge) observe(at Position, percepts []Percept) {
	k.visited[at] = true
	k.safe[at] = true
	for _, p := range percepts {
		if p == Breeze || p == Stench {
			return
		}
	}
	for _, n := range k.neighbours(at) {
		k.safe[n] = true
	}
}

func (k *knowledge) neighbours(at Position) []Position {
	var out []Position
	for _, d := range Directions {
		delta, _ := d.Delta()
		if n := at.Add(delta); n.In(k.size) {
			out = append(out, n)
		}
	}
	return out
}

// stepToward runs a BFS over safe cells from start and returns the first
// direction of the shortest path to any cell accepted by goal.
func (k *knowledge) stepToward(start Position, goal func(Position) bool) (Direction, bool) {
	type node struct {
		at    Position
		first Direction
	}
	seen := map[Position]bool{start: true}
	queue := []node{}
	for _, d := range Directions {
		delta, _ := d.Delta()
		n := start.Add(delta)
		if n.In(k.size) && k.safe[n] && !seen[n] {
			seen[n] = true
			queue = append(queue, node{at: n, first: d})
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if goal(cur.at) {
			return cur.first, true
		}
		for _, d := range Directions {
			delta, _ := d.Delta()
			n := cur.at.Add(delta)
			if n.In(k.size) && k.safe[n] && !seen[n] {
				seen[n] = true
				queue = append(queue, node{at: n, first: cur.first})
			}
		}
	}
	return "", false
}

// riskyStep picks the first unvisited neighbour of at.
func (k *knowledge) riskyStep(at Position) (Direction, bool) {
	for _, d := range Directions {
		delta, _ := d.Delta()
		if n := at.Add(delta); n.In(k.size) && !k.visited[n] {
			return d, true
		}
	}
	return "", false
}

// Solve plays a clone of w with a knowledge-based agent and returns the
// actions it took. w itself is never advanced.
func Solve(w *World, maxSteps int) []string {
	if maxSteps <= 0 {
		maxSteps = DefaultSolveSteps
	}
	sim := w.Clone()
	kb := newKnowledge(sim.Size)
	kb.visited[sim.Agent] = true
	kb.safe[sim.Agent] = true

	actions := []string{}
	for step := 0; step < maxSteps && !sim.Finished; step++ {
		percepts := sim.Percepts()
		kb.observe(sim.Agent, percepts)

		if contains(percepts, Glitter) && !sim.HasGold {
			if _, err := sim.Grab(); err == nil {
				actions = append(actions, "Grab")
			}
			continue
		}

		if sim.HasGold {
			if sim.Agent == Origin {
				break
			}
			dir, ok := kb.stepToward(sim.Agent, func(p Position) bool { return p == Origin })
			if !ok {
				break
			}
			actions = append(actions, "Move "+string(dir))
			if _, err := sim.Move(dir); err != nil {
				break
			}
			continue
		}

		if dir, ok := kb.stepToward(sim.Agent, func(p Position) bool { return !kb.visited[p] }); ok {
			actions = append(actions, "Move "+string(dir))
			if _, err := sim.Move(dir); err != nil {
				break
			}
			continue
		}

		dir, ok := kb.riskyStep(sim.Agent)
		if !ok {
			break
		}
		actions = append(actions, fmt.Sprintf("Move %s (risky)", dir))
		if _, err := sim.Move(dir); err != nil {
			break
		}
	}
	if sim.Won {
		actions = append(actions, "Climb")
	}
	return actions
}

func contains(ps []Percept, want Percept) bool {
	for _, p := range ps {
		if p == want {
			return true
		}
	}
	return false
}

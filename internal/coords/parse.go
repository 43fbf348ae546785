// Package coords turns raw configuration text into grid coordinates.
//
// Parsing never fails outward: malformed input yields the fallback (0,0).
// The Parsed result carries a WasFallback flag so callers and tests can tell
// a fallback apart from a genuine "0,0".
package coords

import (
	"strconv"
	"strings"

	"github.com/robalobadob/wumpus/internal/game"
)

// DefaultGridSize is used when the size text is malformed or below 1.
const DefaultGridSize = 4

// Parsed is a position together with whether it came from the fallback.
type Parsed struct {
	Value       game.Position
	WasFallback bool
}

// ParsePosition parses "x,y" into (x,y), or (0,0) on any failure.
func ParsePosition(text string) game.Position {
	return ParsePositionTagged(text).Value
}

// ParsePositionTagged is ParsePosition with the fallback flag exposed.
// The first number is the row-axis value sent to the service; displays
// render positions as (col, row).
func ParsePositionTagged(text string) Parsed {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return Parsed{WasFallback: true}
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Parsed{WasFallback: true}
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Parsed{WasFallback: true}
	}
	return Parsed{Value: game.Position{Row: x, Col: y}}
}

// ParsePitPositions splits on ';', drops blank segments and parses the rest.
// Empty input yields an empty, non-nil slice.
func ParsePitPositions(text string) []game.Position {
	tagged := ParsePitPositionsTagged(text)
	out := make([]game.Position, 0, len(tagged))
	for _, p := range tagged {
		out = append(out, p.Value)
	}
	return out
}

// ParsePitPositionsTagged is ParsePitPositions keeping per-entry fallback flags.
func ParsePitPositionsTagged(text string) []Parsed {
	out := []Parsed{}
	for _, seg := range strings.Split(text, ";") {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		out = append(out, ParsePositionTagged(seg))
	}
	return out
}

// ParseGridSize parses the grid size, falling back to DefaultGridSize.
func ParseGridSize(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		return DefaultGridSize, true
	}
	return n, false
}

// Input is the raw, unparsed world configuration as typed by the operator.
type Input struct {
	Size   string
	Wumpus string
	Gold   string
	Pits   string
}

// Fallbacks names the fields that were replaced by a fallback value.
type Fallbacks []string

// Config builds a WorldConfig from raw input and reports which fields fell back.
func (in Input) Config() (game.WorldConfig, Fallbacks) {
	var fb Fallbacks
	size, sizeFB := ParseGridSize(in.Size)
	if sizeFB {
		fb = append(fb, "size")
	}
	wumpus := ParsePositionTagged(in.Wumpus)
	if wumpus.WasFallback {
		fb = append(fb, "wumpus")
	}
	gold := ParsePositionTagged(in.Gold)
	if gold.WasFallback {
		fb = append(fb, "gold")
	}
	pits := ParsePitPositionsTagged(in.Pits)
	positions := make([]game.Position, 0, len(pits))
	for i, p := range pits {
		if p.WasFallback {
			fb = append(fb, "pits["+strconv.Itoa(i)+"]")
		}
		positions = append(positions, p.Value)
	}
	return game.WorldConfig{Size: size, Wumpus: wumpus.Value, Gold: gold.Value, Pits: positions}, fb
}

// Field returns the raw text behind a fallback name reported by Config.
// Pit entries map to the whole pit list.
func (in Input) Field(name string) string {
	switch {
	case name == "size":
		return in.Size
	case name == "wumpus":
		return in.Wumpus
	case name == "gold":
		return in.Gold
	case strings.HasPrefix(name, "pits"):
		return in.Pits
	}
	return ""
}

// internal/protocol/wire.go
//
// JSON payloads exchanged with the simulation service.
// Every response carries a "status" envelope; anything other than "success"
// is a protocol error carrying "message".
//
// The reference server in internal/httpserver encodes with these same types.

package protocol

import "github.com/robalobadob/wumpus/internal/game"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the status/message pair present in every response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (e Envelope) envelope() Envelope { return e }

// replier is implemented by every response payload.
type replier interface{ envelope() Envelope }

// WorldRequest addresses an existing world (solve, grab, shoot).
type WorldRequest struct {
	WorldID string `json:"world_id"`
}

// MoveRequest is the body of POST /move.
type MoveRequest struct {
	WorldID   string         `json:"world_id"`
	Direction game.Direction `json:"direction"`
}

// InitializeResponse is the body returned by POST /initialize.
// StartPosition and Config are optional; older services omit them.
type InitializeResponse struct {
	Envelope
	WorldID       string            `json:"world_id,omitempty"`
	StartPosition *game.Position    `json:"start_position,omitempty"`
	Config        *game.WorldConfig `json:"config,omitempty"`
}

// MoveResponse is the body returned by POST /move.
type MoveResponse struct {
	Envelope
	NewPosition *game.Position `json:"new_position,omitempty"`
	Percepts    []string       `json:"percepts"`
	Score       int            `json:"score"`
	GameOver    bool           `json:"game_over"`
	Won         bool           `json:"won"`
	HasGold     bool           `json:"has_gold"`
}

// ActionResponse is the body returned by POST /grab and POST /shoot.
type ActionResponse struct {
	Envelope
	Score    int      `json:"score"`
	Percepts []string `json:"percepts"`
	HasGold  bool     `json:"has_gold"`
}

// SolveResponse is the body returned by POST /solve.
type SolveResponse struct {
	Envelope
	Solution []string `json:"solution"`
}

// internal/httpserver/routes_leaderboard.go
//
// HTTP routes for finished-world results.
//   - GET /leaderboard → top results for today (or ?date=YYYY-MM-DD), ?limit=N
//
// Results are written by the move handler when a world ends; this file only
// reads them back.

package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wumpus/internal/protocol"
	"github.com/robalobadob/wumpus/internal/results"
)

// lbRes is the body of GET /leaderboard.
type lbRes struct {
	Status string           `json:"status"`
	Date   string           `json:"date"`
	Top    []results.Result `json:"top"`
}

// mountLeaderboard registers the results routes.
func (s *Server) mountLeaderboard(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "results store not configured")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = results.DateKey(time.Now())
	}
	limit := results.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	rows, err := s.results.Top(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Status: protocol.StatusSuccess, Date: date, Top: rows})
}

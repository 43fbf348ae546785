// internal/httpserver/server.go
//
// HTTP server wiring for the Wumpus World simulation service.
// Responsibilities:
//   - Router + middleware (JSON, request IDs, timeouts, panic recovery, access log).
//   - Public endpoints: "/", "/health".
//   - World endpoints: POST /initialize, /move, /grab, /shoot, /solve.
//   - Results: finished worlds are recorded in SQLite; GET /leaderboard.
//
// Notes:
//   - world_id values handed to clients are signed tokens (see worldtoken);
//     an unverifiable token is reported exactly like an unknown world.
//   - Every response uses the {"status": ..., "message": ...} envelope the
//     client in internal/protocol expects, including errors.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	mrand "math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wumpus/internal/game"
	"github.com/robalobadob/wumpus/internal/protocol"
	"github.com/robalobadob/wumpus/internal/results"
	"github.com/robalobadob/wumpus/internal/store"
	"github.com/robalobadob/wumpus/internal/worldtoken"
)

const msgNotFound = "Game not found"

// Options tunes request handling. Zero values pick defaults.
type Options struct {
	RequestTimeout time.Duration
	SolveSteps     int
	WorldIdle      time.Duration // live worlds untouched this long are dropped
}

// Server bundles router, in-memory world store, token issuer and results DB.
type Server struct {
	r       *chi.Mux
	store   store.Store
	tokens  *worldtoken.Issuer
	results *results.Store // nil when no DB is configured
	steps   int
	idle    time.Duration

	rngMu sync.Mutex
	rng   *mrand.Rand
}

// New constructs a Server, installs middleware, and registers routes.
// db may be nil, in which case results are not recorded.
func New(st store.Store, db *sql.DB, tokens *worldtoken.Issuer, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.SolveSteps <= 0 {
		opts.SolveSteps = game.DefaultSolveSteps
	}
	if opts.WorldIdle <= 0 {
		opts.WorldIdle = 2 * time.Hour
	}
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		tokens: tokens,
		steps:  opts.SolveSteps,
		idle:   opts.WorldIdle,
		rng:    mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
	if db != nil {
		s.results = results.NewStore(db)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                          // one zerolog line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wumpus","endpoints":["/health","POST /initialize","POST /move","POST /grab","POST /shoot","POST /solve","/leaderboard"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// World endpoints
	s.r.Post("/initialize", s.handleInitialize)
	s.r.Post("/move", s.handleMove)
	s.r.Post("/grab", s.handleGrab)
	s.r.Post("/shoot", s.handleShoot)
	s.r.Post("/solve", s.handleSolve)

	s.mountLeaderboard(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Sweep drops live worlds nobody has touched within the idle period.
func (s *Server) Sweep(ctx context.Context) int {
	n := s.store.Expire(ctx, time.Now().Add(-s.idle))
	if n > 0 {
		log.Info().Int("dropped", n).Int("live", s.store.Len()).Msg("expired idle worlds")
	}
	return n
}

// RunJanitor calls Sweep every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog writes a structured line for every request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("req_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ WORLD --------------------------------------

// handleInitialize builds a world from the posted config and returns its token.
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var cfg game.WorldConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.rngMu.Lock()
	world, err := game.New(cfg, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.Save(r.Context(), world); err != nil {
		log.Error().Err(err).Msg("save world")
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	tok, err := s.tokens.Issue(world.ID)
	if err != nil {
		log.Error().Err(err).Msg("issue world token")
		writeError(w, http.StatusInternalServerError, "token failed")
		return
	}

	start, actual := world.Agent, world.Config()
	log.Info().Str("world", world.ID).Int("size", world.Size).Int("live", s.store.Len()).Msg("world initialized")
	writeJSON(w, http.StatusOK, protocol.InitializeResponse{
		Envelope:      protocol.Envelope{Status: protocol.StatusSuccess},
		WorldID:       tok,
		StartPosition: &start,
		Config:        &actual,
	})
}

// handleMove advances the agent and records the result if the world ends.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req protocol.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, ok := s.worldID(w, req.WorldID)
	if !ok {
		return
	}

	var (
		out      game.MoveOutcome
		finished *game.World
	)
	err := s.store.Update(r.Context(), id, func(world *game.World) error {
		var err error
		out, err = world.Move(req.Direction)
		if err == nil && world.Finished {
			finished = world.Clone()
		}
		return err
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if finished != nil {
		s.record(r.Context(), finished)
	}

	pos := out.NewPosition
	writeJSON(w, http.StatusOK, protocol.MoveResponse{
		Envelope:    protocol.Envelope{Status: protocol.StatusSuccess, Message: out.Message},
		NewPosition: &pos,
		Percepts:    out.Percepts,
		Score:       out.Score,
		GameOver:    out.GameOver,
		Won:         out.Won,
		HasGold:     out.HasGold,
	})
}

func (s *Server) handleGrab(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, (*game.World).Grab)
}

func (s *Server) handleShoot(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, (*game.World).Shoot)
}

// handleAction runs a non-moving action (grab, shoot) against a world.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, act func(*game.World) (game.ActionOutcome, error)) {
	var req protocol.WorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, ok := s.worldID(w, req.WorldID)
	if !ok {
		return
	}

	var out game.ActionOutcome
	err := s.store.Update(r.Context(), id, func(world *game.World) error {
		var err error
		out, err = act(world)
		return err
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.ActionResponse{
		Envelope: protocol.Envelope{Status: protocol.StatusSuccess, Message: out.Message},
		Score:    out.Score,
		Percepts: out.Percepts,
		HasGold:  out.HasGold,
	})
}

// handleSolve plans on a snapshot; the live world is not advanced.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req protocol.WorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, ok := s.worldID(w, req.WorldID)
	if !ok {
		return
	}
	snap, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	steps := game.Solve(snap, s.steps)
	log.Debug().Str("world", id).Int("steps", len(steps)).Msg("solved")
	writeJSON(w, http.StatusOK, protocol.SolveResponse{
		Envelope: protocol.Envelope{Status: protocol.StatusSuccess},
		Solution: steps,
	})
}

// ------------------------------ helpers ------------------------------------

// worldID verifies a client token. On failure it writes the not-found reply.
func (s *Server) worldID(w http.ResponseWriter, token string) (string, bool) {
	id, err := s.tokens.WorldID(token)
	if err != nil {
		log.Debug().Err(err).Msg("reject world token")
		writeError(w, http.StatusNotFound, msgNotFound)
		return "", false
	}
	return id, true
}

// record persists a finished world (best effort, non-fatal if it fails).
func (s *Server) record(ctx context.Context, world *game.World) {
	if s.results == nil {
		return
	}
	err := s.results.Record(ctx, results.Result{
		WorldID: world.ID,
		Size:    world.Size,
		Score:   world.Score,
		Won:     world.Won,
		Moves:   world.Moves,
		Date:    results.DateKey(time.Now()),
	})
	if err != nil {
		log.Warn().Err(err).Str("world", world.ID).Msg("record result")
	}
}

// engineMessages maps engine errors to the messages clients display.
var engineMessages = map[error]string{
	game.ErrGameOver:     "Game is already over",
	game.ErrOutOfBounds:  "Cannot move outside the grid",
	game.ErrBadDirection: "Invalid direction",
	game.ErrNoGold:       "No gold to grab here!",
	game.ErrNoArrow:      "You have no arrows left!",
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	for target, msg := range engineMessages {
		if errors.Is(err, target) {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}
	log.Error().Err(err).Msg("world update")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.Envelope{Status: protocol.StatusError, Message: msg})
}

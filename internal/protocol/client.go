// Package protocol is the HTTP client for the Wumpus simulation service.
//
// Each operation is a single POST with a JSON body. The client never retries,
// never vetoes a request locally and holds no session state; callers apply
// the returned values themselves.
package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wumpus/internal/game"
)

// DefaultTimeout bounds a single request when no other timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Session identifies a freshly initialized world.
type Session struct {
	WorldID string
	Start   game.Position
}

// Client talks to one simulation service.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTimeout sets the per-request timeout; zero disables it.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Initialize creates a remote world from cfg.
// The start cell defaults to the bottom-left corner when the service omits it.
func (c *Client) Initialize(ctx context.Context, cfg game.WorldConfig) (Session, error) {
	var res InitializeResponse
	if err := c.post(ctx, "initialize", "/initialize", cfg, &res); err != nil {
		return Session{}, err
	}
	if res.WorldID == "" {
		return Session{}, malformed("initialize", "missing world_id")
	}
	s := Session{WorldID: res.WorldID, Start: game.Origin}
	if res.StartPosition != nil {
		s.Start = *res.StartPosition
	}
	return s, nil
}

// Move asks the service to move the agent one cell in dir.
func (c *Client) Move(ctx context.Context, worldID string, dir game.Direction) (game.MoveOutcome, error) {
	var res MoveResponse
	if err := c.post(ctx, "move", "/move", MoveRequest{WorldID: worldID, Direction: dir}, &res); err != nil {
		return game.MoveOutcome{}, err
	}
	if res.NewPosition == nil {
		return game.MoveOutcome{}, malformed("move", "missing new_position")
	}
	return game.MoveOutcome{
		NewPosition: *res.NewPosition,
		Percepts:    nonNil(res.Percepts),
		Score:       res.Score,
		Message:     res.Message,
		GameOver:    res.GameOver,
		Won:         res.Won,
		HasGold:     res.HasGold,
	}, nil
}

// Solve fetches the service's plan for worldID. Steps are opaque text.
func (c *Client) Solve(ctx context.Context, worldID string) ([]string, error) {
	var res SolveResponse
	if err := c.post(ctx, "solve", "/solve", WorldRequest{WorldID: worldID}, &res); err != nil {
		return nil, err
	}
	if res.Solution == nil {
		return nil, malformed("solve", "missing solution")
	}
	return res.Solution, nil
}

// Grab asks the service to pick up gold in the agent's cell.
func (c *Client) Grab(ctx context.Context, worldID string) (game.ActionOutcome, error) {
	return c.action(ctx, "grab", worldID)
}

// Shoot fires the agent's arrow.
func (c *Client) Shoot(ctx context.Context, worldID string) (game.ActionOutcome, error) {
	return c.action(ctx, "shoot", worldID)
}

func (c *Client) action(ctx context.Context, op, worldID string) (game.ActionOutcome, error) {
	var res ActionResponse
	if err := c.post(ctx, op, "/"+op, WorldRequest{WorldID: worldID}, &res); err != nil {
		return game.ActionOutcome{}, err
	}
	return game.ActionOutcome{
		Message:  res.Message,
		Score:    res.Score,
		Percepts: nonNil(res.Percepts),
		HasGold:  res.HasGold,
	}, nil
}

// post performs one request/response exchange and decodes into out.
// Any failure is returned as *Error.
func (c *Client) post(ctx context.Context, op, path string, body any, out replier) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: op, Message: err.Error(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("request failed")
		return &Error{Op: op, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Op: op, Message: err.Error(), HTTPStatus: resp.StatusCode, Err: err}
	}
	c.log.Debug().
		Str("op", op).
		Int("http_status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("response")

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &Error{Op: op, Message: fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode), HTTPStatus: resp.StatusCode, Err: err}
		}
		return &Error{Op: op, Message: "invalid response: " + err.Error(), HTTPStatus: resp.StatusCode, Err: errors.Join(ErrMalformed, err)}
	}

	env := out.envelope()
	if env.Status != StatusSuccess {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %q (HTTP %d)", env.Status, resp.StatusCode)
		}
		return &Error{Op: op, Message: msg, HTTPStatus: resp.StatusCode}
	}
	return nil
}

func malformed(op, what string) *Error {
	return &Error{Op: op, Message: "invalid response: " + what, Err: ErrMalformed}
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	return err.Error()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/wumpus/internal/game"
)

// fakeService answers every path with a canned body and records requests.
type fakeService struct {
	mu     sync.Mutex
	status int
	bodies map[string]string
	got    map[string][]byte
}

func newFakeService(t *testing.T, bodies map[string]string) (*fakeService, *httptest.Server) {
	t.Helper()
	f := &fakeService{status: http.StatusOK, bodies: bodies, got: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.got[r.URL.Path] = b
		status := f.status
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, f.bodies[r.URL.Path])
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeService) setStatus(code int) {
	f.mu.Lock()
	f.status = code
	f.mu.Unlock()
}

func (f *fakeService) request(t *testing.T, path string) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var m map[string]any
	if err := json.Unmarshal(f.got[path], &m); err != nil {
		t.Fatalf("decode %s request: %v", path, err)
	}
	return m
}

func TestInitializeSendsFullConfig(t *testing.T) {
	f, srv := newFakeService(t, map[string]string{
		"/initialize": `{"status":"success","world_id":"abc"}`,
	})
	c := New(srv.URL)

	s, err := c.Initialize(context.Background(), game.WorldConfig{
		Size:   4,
		Wumpus: game.Position{Row: 2, Col: 1},
		Gold:   game.Position{Row: 3, Col: 3},
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if s.WorldID != "abc" || s.Start != game.Origin {
		t.Errorf("session = %+v", s)
	}

	req := f.request(t, "/initialize")
	if req["size"] != float64(4) {
		t.Errorf("size = %v", req["size"])
	}
	if !reflect.DeepEqual(req["wumpus_pos"], []any{float64(2), float64(1)}) {
		t.Errorf("wumpus_pos = %v", req["wumpus_pos"])
	}
	if !reflect.DeepEqual(req["pit_positions"], []any{}) {
		t.Errorf("pit_positions = %v", req["pit_positions"])
	}
}

func TestInitializeUsesServiceStart(t *testing.T) {
	_, srv := newFakeService(t, map[string]string{
		"/initialize": `{"status":"success","world_id":"abc","start_position":[0,1]}`,
	})
	s, err := New(srv.URL).Initialize(context.Background(), game.WorldConfig{Size: 4})
	if err != nil {
		t.Fatal(err)
	}
	if s.Start != (game.Position{Row: 0, Col: 1}) {
		t.Errorf("Start = %v", s.Start)
	}
}

func TestMoveMapsOutcomeVerbatim(t *testing.T) {
	f, srv := newFakeService(t, map[string]string{
		"/move": `{"status":"success","new_position":[1,0],"percepts":[],"score":-1,"message":"Moved up. Percepts: ","game_over":false,"won":false,"has_gold":false}`,
	})
	out, err := New(srv.URL).Move(context.Background(), "abc", game.Up)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	want := game.MoveOutcome{
		NewPosition: game.Position{Row: 1, Col: 0},
		Percepts:    []string{},
		Score:       -1,
		Message:     "Moved up. Percepts: ",
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("outcome = %+v, want %+v", out, want)
	}
	req := f.request(t, "/move")
	if req["world_id"] != "abc" || req["direction"] != "up" {
		t.Errorf("request = %v", req)
	}
}

func TestErrorStatus(t *testing.T) {
	f, srv := newFakeService(t, map[string]string{
		"/move": `{"status":"error","message":"no active world"}`,
	})
	f.setStatus(http.StatusNotFound)

	_, err := New(srv.URL).Move(context.Background(), "abc", game.Up)
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if pe.Message != "no active world" || pe.Op != "move" || pe.HTTPStatus != http.StatusNotFound {
		t.Errorf("error = %+v", pe)
	}
	if Message(err) != "no active world" {
		t.Errorf("Message() = %q", Message(err))
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	f, srv := newFakeService(t, map[string]string{"/solve": "bad gateway"})
	f.setStatus(http.StatusBadGateway)

	_, err := New(srv.URL).Solve(context.Background(), "abc")
	if got := Message(err); got != "unexpected HTTP status 502" {
		t.Errorf("Message() = %q", got)
	}
}

func TestMalformedPayloads(t *testing.T) {
	_, srv := newFakeService(t, map[string]string{
		"/initialize": `{"status":"success"}`,
		"/move":       `{"status":"success","score":3}`,
		"/solve":      `{"status":"success"}`,
		"/grab":       `{"status":"success",`,
	})
	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.Initialize(ctx, game.WorldConfig{Size: 4}); !errors.Is(err, ErrMalformed) {
		t.Errorf("initialize err = %v", err)
	}
	if _, err := c.Move(ctx, "abc", game.Left); !errors.Is(err, ErrMalformed) {
		t.Errorf("move err = %v", err)
	}
	if _, err := c.Solve(ctx, "abc"); !errors.Is(err, ErrMalformed) {
		t.Errorf("solve err = %v", err)
	}
	if _, err := c.Grab(ctx, "abc"); !errors.Is(err, ErrMalformed) {
		t.Errorf("grab err = %v", err)
	}
}

func TestSolveKeepsOrder(t *testing.T) {
	_, srv := newFakeService(t, map[string]string{
		"/solve": `{"status":"success","solution":["Move up","Grab","Move down","Climb"]}`,
	})
	steps, err := New(srv.URL).Solve(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(steps, []string{"Move up", "Grab", "Move down", "Climb"}) {
		t.Errorf("steps = %v", steps)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Move(context.Background(), "abc", game.Up)
	var pe *Error
	if !errors.As(err, &pe) || pe.HTTPStatus != 0 || pe.Err == nil {
		t.Errorf("err = %#v", err)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Solve(context.Background(), "abc")
	if got := Message(err); got != "request timed out" {
		t.Errorf("Message() = %q, want request timed out", got)
	}
}

func TestGrabAndShoot(t *testing.T) {
	f, srv := newFakeService(t, map[string]string{
		"/grab":  `{"status":"success","message":"You grabbed the gold! Now return to the start!","score":999,"percepts":["Glitter"],"has_gold":true}`,
		"/shoot": `{"status":"success","message":"You killed the Wumpus!","score":989,"percepts":null,"has_gold":true}`,
	})
	c := New(srv.URL)

	grab, err := c.Grab(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Grab: %v", err)
	}
	if !grab.HasGold || grab.Score != 999 || !reflect.DeepEqual(grab.Percepts, []string{"Glitter"}) {
		t.Errorf("grab = %+v", grab)
	}
	if req := f.request(t, "/grab"); req["world_id"] != "abc" {
		t.Errorf("grab request = %v", req)
	}

	shot, err := c.Shoot(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Shoot: %v", err)
	}
	if shot.Message != "You killed the Wumpus!" || shot.Score != 989 || shot.Percepts == nil {
		t.Errorf("shoot = %+v", shot)
	}
}

package cli

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wumpus/internal/controller"
	"github.com/robalobadob/wumpus/internal/game"
)

type fakeController struct {
	calls   []string
	moveErr error
}

func (f *fakeController) Initialize(_ context.Context, cfg game.WorldConfig) error {
	f.calls = append(f.calls, fmt.Sprintf("initialize %d", cfg.Size))
	return nil
}

func (f *fakeController) Move(_ context.Context, dir game.Direction) error {
	f.calls = append(f.calls, "move "+string(dir))
	return f.moveErr
}

func (f *fakeController) Solve(context.Context) error {
	f.calls = append(f.calls, "solve")
	return nil
}

func (f *fakeController) Grab(context.Context) error {
	f.calls = append(f.calls, "grab")
	return nil
}

func (f *fakeController) Shoot(context.Context) error {
	f.calls = append(f.calls, "shoot")
	return nil
}

func world() game.WorldConfig { return game.WorldConfig{Size: 5} }

func TestRunPlainDispatchesCommands(t *testing.T) {
	ctl := &fakeController{}
	in := strings.NewReader("new\nup\n\nmove right\nl\ngrab\nshoot\nsolve\nhelp\nquit\nup\n")
	var out bytes.Buffer

	if err := RunPlain(context.Background(), ctl, world, in, &out, zerolog.Nop()); err != nil {
		t.Fatalf("RunPlain: %v", err)
	}
	want := []string{"initialize 5", "move up", "move right", "move left", "grab", "shoot", "solve"}
	if !reflect.DeepEqual(ctl.calls, want) {
		t.Errorf("calls = %v, want %v", ctl.calls, want)
	}
	if !strings.Contains(out.String(), "commands:") {
		t.Errorf("help not printed: %q", out.String())
	}
}

func TestRunPlainReportsLocalRejections(t *testing.T) {
	ctl := &fakeController{moveErr: fmt.Errorf("move while idle: %w", controller.ErrIllegalTransition)}
	var out bytes.Buffer
	_ = RunPlain(context.Background(), ctl, world, strings.NewReader("up\njump\n"), &out, zerolog.Nop())

	got := out.String()
	if !strings.Contains(got, "not allowed now") {
		t.Errorf("illegal transition not reported: %q", got)
	}
	if !strings.Contains(got, `unknown command "jump"`) {
		t.Errorf("unknown command not reported: %q", got)
	}
}

func TestLocalRejectionIgnoresRemoteErrors(t *testing.T) {
	if msg := localRejection(fmt.Errorf("move: boom")); msg != "" {
		t.Errorf("remote error echoed: %q", msg)
	}
	if msg := localRejection(controller.ErrBusy); msg == "" {
		t.Error("busy not reported")
	}
}

func TestKeyIntent(t *testing.T) {
	cases := []struct {
		key  tcell.Key
		r    rune
		want intent
		dir  game.Direction
	}{
		{tcell.KeyUp, 0, intentMove, game.Up},
		{tcell.KeyLeft, 0, intentMove, game.Left},
		{tcell.KeyRune, 'k', intentMove, game.Up},
		{tcell.KeyRune, 'j', intentMove, game.Down},
		{tcell.KeyRune, 'h', intentMove, game.Left},
		{tcell.KeyRune, 'l', intentMove, game.Right},
		{tcell.KeyRune, 'g', intentGrab, ""},
		{tcell.KeyRune, 'f', intentShoot, ""},
		{tcell.KeyRune, 's', intentSolve, ""},
		{tcell.KeyRune, 'n', intentNew, ""},
		{tcell.KeyRune, 'q', intentQuit, ""},
		{tcell.KeyEscape, 0, intentQuit, ""},
		{tcell.KeyRune, 'x', intentNone, ""},
		{tcell.KeyTab, 0, intentNone, ""},
	}
	for _, tc := range cases {
		got, dir := keyIntent(tc.key, tc.r)
		if got != tc.want || dir != tc.dir {
			t.Errorf("keyIntent(%v, %q) = %v %q, want %v %q", tc.key, tc.r, got, dir, tc.want, tc.dir)
		}
	}
}

// lockedController serializes calls so RunTUI's goroutines can share it.
type lockedController struct {
	mu sync.Mutex
	fakeController
}

func (l *lockedController) Initialize(ctx context.Context, cfg game.WorldConfig) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeController.Initialize(ctx, cfg)
}

func (l *lockedController) Move(ctx context.Context, dir game.Direction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeController.Move(ctx, dir)
}

func (l *lockedController) Solve(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeController.Solve(ctx)
}

func (l *lockedController) Grab(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeController.Grab(ctx)
}

func (l *lockedController) Shoot(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeController.Shoot(ctx)
}

func (l *lockedController) seen() map[string]bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	got := map[string]bool{}
	for _, c := range l.calls {
		got[c] = true
	}
	return got
}

type countingView struct{ redraws atomic.Int32 }

func (v *countingView) Redraw() { v.redraws.Add(1) }

func runTUI(t *testing.T, keys func(sim tcell.SimulationScreen)) (*lockedController, *countingView) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer sim.Fini()
	sim.SetSize(80, 25)

	ctl := &lockedController{}
	view := &countingView{}
	done := make(chan struct{})
	go func() {
		RunTUI(context.Background(), sim, ctl, view, world, zerolog.Nop())
		close(done)
	}()
	keys(sim)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunTUI did not return")
	}
	return ctl, view
}

func TestRunTUIDispatchesKeys(t *testing.T) {
	ctl, _ := runTUI(t, func(sim tcell.SimulationScreen) {
		sim.InjectKey(tcell.KeyRune, 'l', tcell.ModNone)
		sim.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
		sim.InjectKey(tcell.KeyRune, 'g', tcell.ModNone)
		sim.InjectKey(tcell.KeyRune, 'f', tcell.ModNone)
		sim.InjectKey(tcell.KeyRune, 's', tcell.ModNone)
		sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
		sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	})
	got := ctl.seen()
	for _, want := range []string{"initialize 5", "move right", "move up", "grab", "shoot", "solve"} {
		if !got[want] {
			t.Errorf("%q not dispatched; calls = %v", want, got)
		}
	}
	if len(got) != 6 {
		t.Errorf("calls = %v, want exactly 6 distinct", got)
	}
}

func TestRunTUIRedrawsOnResize(t *testing.T) {
	_, view := runTUI(t, func(sim tcell.SimulationScreen) {
		sim.SetSize(100, 30)
		if err := sim.PostEvent(tcell.NewEventResize(100, 30)); err != nil {
			t.Errorf("PostEvent: %v", err)
		}
		sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	})
	if n := view.redraws.Load(); n == 0 {
		t.Error("resize did not redraw")
	}
}

func TestRunTUIQuitStopsDispatch(t *testing.T) {
	ctl, _ := runTUI(t, func(sim tcell.SimulationScreen) {
		sim.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)
		sim.InjectKey(tcell.KeyRune, 'l', tcell.ModNone)
	})
	if got := ctl.seen(); got["move right"] {
		t.Errorf("key after quit dispatched: %v", got)
	}
}

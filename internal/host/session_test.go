package host

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
)

const frame = 1.0 / 60.0

func newTestSession(t *testing.T, mutate func(c *config.Config)) *Session {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewSession(cfg, log.New(io.Discard), 200, 100)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func apply(t *testing.T, s *Session, in Input) {
	t.Helper()
	quit, err := s.Apply(in, frame)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if quit {
		t.Fatal("unexpected quit")
	}
}

func TestHoldToSpawn(t *testing.T) {
	s := newTestSession(t, nil)
	held := Input{CursorX: 150, CursorY: 25, LeftHeld: true}

	apply(t, s, held)
	if n := s.Experiment().World().Len(); n != 1 {
		t.Fatalf("first held frame spawned %d, want 1", n)
	}
	if p := s.Experiment().Emitter().Position; p != (dynamo.Vec3{X: 50, Y: 25}) {
		t.Errorf("cursor (150, 25) mapped to %v, want (50, 25)", p)
	}

	for i := 0; i < 3; i++ {
		apply(t, s, held)
	}
	if n := s.Experiment().World().Len(); n != 4 {
		t.Errorf("four held frames spawned %d, want 4", n)
	}

	for i := 0; i < 3; i++ {
		apply(t, s, Input{CursorX: 150, CursorY: 25})
	}
	if n := s.Experiment().World().Len(); n != 4 {
		t.Errorf("spawning continued after release: %d", n)
	}
	if s.Time <= 0 {
		t.Errorf("session did not advance: time %f", s.Time)
	}
}

func TestHoldToDecay(t *testing.T) {
	s := newTestSession(t, nil)
	apply(t, s, Input{LeftHeld: true})
	start := s.Experiment().World().Particles()[0].Scale

	apply(t, s, Input{SpaceHeld: true})
	if !s.Experiment().Decay().Active {
		t.Fatal("space should activate decay")
	}
	apply(t, s, Input{SpaceHeld: true})
	if got := s.Experiment().World().Particles()[0].Scale; got >= start {
		t.Errorf("scale %f did not shrink from %f while space was held", got, start)
	}

	apply(t, s, Input{})
	if s.Experiment().Decay().Active {
		t.Error("releasing space should stop decay")
	}
}

func TestLifetimeSceneAlwaysDecays(t *testing.T) {
	s := newTestSession(t, func(c *config.Config) { c.Lifetime.Enabled = true })
	apply(t, s, Input{})
	if !s.Experiment().Decay().Active {
		t.Error("decay should stay active when the scene enables lifetime")
	}
}

func TestPauseAndQuit(t *testing.T) {
	s := newTestSession(t, nil)

	apply(t, s, Input{TogglePause: true, LeftHeld: true})
	if s.Running {
		t.Fatal("pause toggle should stop the session")
	}
	if n := s.Experiment().World().Len(); n != 0 || s.Time != 0 {
		t.Errorf("paused session advanced: %d particles, time %f", n, s.Time)
	}

	quit, err := s.Apply(Input{Quit: true, LeftHeld: true}, frame)
	if err != nil || !quit {
		t.Errorf("quit = %v, %v; want true, nil", quit, err)
	}
}

func TestResizeAndReset(t *testing.T) {
	s := newTestSession(t, nil)
	apply(t, s, Input{LeftHeld: true, ToggleFPS: true})
	if !s.ShowFPS {
		t.Error("grave toggle should show fps")
	}

	s.Resize(400, 300)
	if b := s.Experiment().World().Bounds(); b != (dynamo.Bounds{Width: 400, Height: 300}) {
		t.Errorf("bounds after resize = %v", b)
	}
	x, y := s.ToScreen(s.ToWorld(10, 20))
	if x != 10 || y != 20 {
		t.Errorf("screen round trip = (%v, %v), want (10, 20)", x, y)
	}

	apply(t, s, Input{Reset: true})
	if n := s.Experiment().World().Len(); n != 0 {
		t.Errorf("reset left %d particles", n)
	}
	if s.Experiment().Config().Bounds != s.Bounds() {
		t.Errorf("reset ignored the surface size: %v", s.Experiment().Config().Bounds)
	}
}

package viz

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/physics"
)

func newTestModel(t *testing.T, cfg *config.Config) Model {
	t.Helper()
	m, err := NewModel(Options{Config: cfg, Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWindowResizeSetsBounds(t *testing.T) {
	m := newTestModel(t, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 41})

	want := dynamo.Bounds{Width: 100 * 2 * DefaultScale, Height: 40 * 4 * DefaultScale}
	if got := m.World().Bounds(); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
}

func TestKeys(t *testing.T) {
	m := newTestModel(t, nil)

	m = send(t, m, key("o"))
	if m.exp.GetSimulator().Policy() != physics.PolicyRedirect {
		t.Error("o should cycle to redirect")
	}
	m = send(t, m, key(" "))
	if !m.exp.Decay().Active {
		t.Error("space should enable decay")
	}
	m = send(t, m, key("p"))
	if m.running {
		t.Error("p should pause")
	}
	m = send(t, m, key("`"))
	if !m.showPerf || !strings.Contains(m.View(), "PERF") {
		t.Error("` should show the perf panel")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestPointerHoldSpawns(t *testing.T) {
	m := newTestModel(t, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 25})

	m = send(t, m, tea.MouseMsg{X: 40, Y: 12, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if !m.exp.Emitter().Enabled {
		t.Fatal("press should enable the emitter")
	}
	if p := m.exp.Emitter().Position; p.Norm() > 2*DefaultScale*4 {
		t.Errorf("center click mapped far from origin: %v", p)
	}

	start := time.Unix(0, 0)
	for i := 0; i <= 6; i++ {
		m = send(t, m, TickMsg(start.Add(time.Duration(i)*16*time.Millisecond)))
	}
	if n := m.World().Len(); n != 7 {
		t.Errorf("expected one spawn per tick, got %d over 7 ticks", n)
	}

	m = send(t, m, tea.MouseMsg{X: 40, Y: 12, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	n := m.World().Len()
	for i := 7; i < 12; i++ {
		m = send(t, m, TickMsg(start.Add(time.Duration(i)*16*time.Millisecond)))
	}
	if m.World().Len() != n {
		t.Errorf("spawning continued after release: %d -> %d", n, m.World().Len())
	}
}

func TestResetRestoresScene(t *testing.T) {
	cfg := config.GetPreset("crowd")
	cfg.Spawn.Count = 20
	m := newTestModel(t, cfg)
	if m.World().Len() != 20 {
		t.Fatalf("expected 20 particles, got %d", m.World().Len())
	}

	m = send(t, m, key("c"))
	if m.World().Len() != 0 {
		t.Fatal("c should clear the world")
	}
	m = send(t, m, key("r"))
	if m.World().Len() != 20 {
		t.Errorf("reset should respawn 20, got %d", m.World().Len())
	}
}

func TestTickAdvancesWorld(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Particles = []config.ParticleConfig{{X: 0, Y: 0, VX: 60, Radius: 1}}
	m := newTestModel(t, cfg)

	start := time.Unix(100, 0)
	m = send(t, m, TickMsg(start))
	x0 := m.World().Particles()[0].Position.X
	m = send(t, m, TickMsg(start.Add(50*time.Millisecond)))
	x1 := m.World().Particles()[0].Position.X

	if dx := x1 - x0; dx < 2.9 || dx > 3.1 {
		t.Errorf("expected ~3 units in 50ms at 60/s, moved %f", dx)
	}

	m = send(t, m, TickMsg(start.Add(10*time.Second)))
	x2 := m.World().Particles()[0].Position.X
	if x2-x1 > 60*maxFrameDt+1e-9 {
		t.Errorf("stall should be capped, moved %f", x2-x1)
	}
	if m.View() == "" {
		t.Error("empty view")
	}
}

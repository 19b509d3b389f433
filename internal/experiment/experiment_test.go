package experiment

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/physics"
	"github.com/san-kum/radialsim/internal/sim"
)

func quiet(e *Experiment) *Experiment {
	e.SetLogger(log.New(io.Discard))
	return e
}

func TestHeadOnPreset(t *testing.T) {
	cfg := config.GetPreset("head_on")
	cfg.Duration = cfg.Dt

	reg := NewRegistry()
	exp := quiet(New(cfg))
	if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.StepsTaken != 1 {
		t.Fatalf("expected 1 step, got %d", result.StepsTaken)
	}

	a, b := result.Final[0], result.Final[1]
	if a.Velocity != (dynamo.Vec3{X: -50}) || b.Velocity != (dynamo.Vec3{X: 50}) {
		t.Errorf("velocities not swapped: a=%v b=%v", a.Velocity, b.Velocity)
	}
	if d := a.Position.Distance(b.Position); d < 2-1e-9 {
		t.Errorf("pair still overlapping: d=%f", d)
	}
	if result.Metrics["contacts"] != 1 {
		t.Errorf("contacts metric = %v, want 1", result.Metrics["contacts"])
	}
}

func TestSetupPopulatesPattern(t *testing.T) {
	cfg := config.GetPreset("crowd")
	cfg.Spawn.Count = 30
	cfg.Duration = 0.5

	reg := NewRegistry()
	exp := quiet(New(cfg))
	if err := exp.Setup(reg, nil); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if exp.World().Len() != 30 {
		t.Fatalf("expected 30 particles, got %d", exp.World().Len())
	}
	if exp.Decay().Len() != 30 {
		t.Errorf("expected every spawned particle tracked, got %d", exp.Decay().Len())
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b := cfg.Bounds
	for _, p := range result.Final {
		r := p.Radius()
		if p.Position.X-r < b.Left()-1e-9 || p.Position.X+r > b.Right()+1e-9 {
			t.Errorf("particle %d escaped horizontally: %v r=%f", p.ID, p.Position, r)
		}
	}
}

func TestSetupDeterministic(t *testing.T) {
	run := func() []dynamo.Particle {
		cfg := config.GetPreset("redirect")
		cfg.Spawn.Count = 40
		cfg.Duration = 1
		exp := quiet(New(cfg))
		if err := exp.Setup(NewRegistry(), nil); err != nil {
			t.Fatalf("setup: %v", err)
		}
		result, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result.Final
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("population differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("particle %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRainEmitsAndFades(t *testing.T) {
	cfg := config.GetPreset("rain")
	cfg.Duration = 1

	exp := quiet(New(cfg))
	if err := exp.Setup(NewRegistry(), nil); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// One spawn per 1/60 s frame, since a frame is longer than the interval.
	if exp.Emitter().Spawned() != 60 {
		t.Errorf("emitter spawned %d in 1s, want 60", exp.Emitter().Spawned())
	}
	// Largest particles have health 32 and drain at 32/s, so after a second
	// some early ones must be gone.
	if exp.World().Len() >= exp.Emitter().Spawned() {
		t.Errorf("no particle faded: %d alive of %d", exp.World().Len(), exp.Emitter().Spawned())
	}
}

func TestSetupErrors(t *testing.T) {
	reg := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Policy = "bounce"
	if err := quiet(New(cfg)).Setup(reg, nil); !errors.Is(err, dynamo.ErrUnknownPolicy) {
		t.Errorf("expected ErrUnknownPolicy, got %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.Particles = []config.ParticleConfig{{X: math.Inf(1), Radius: 1}}
	if err := quiet(New(cfg)).Setup(reg, nil); !errors.Is(err, dynamo.ErrInvalidParticle) {
		t.Errorf("expected ErrInvalidParticle, got %v", err)
	}

	if _, err := quiet(New(config.DefaultConfig())).Run(context.Background()); err == nil {
		t.Error("expected error running without setup")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	p, err := reg.GetPolicy("redirect")
	if err != nil || p != physics.PolicyRedirect {
		t.Errorf("GetPolicy(redirect) = %v, %v", p, err)
	}
	o, err := reg.GetOrder("shuffle")
	if err != nil || o != sim.OrderShuffle {
		t.Errorf("GetOrder(shuffle) = %v, %v", o, err)
	}
	if _, err := reg.GetOrder("sideways"); !errors.Is(err, dynamo.ErrUnknownOrder) {
		t.Errorf("expected ErrUnknownOrder, got %v", err)
	}
	if _, err := reg.GetMetric("nope"); err == nil {
		t.Error("expected unknown metric error")
	}

	names := reg.ListMetrics()
	ms := reg.DefaultMetrics()
	if len(ms) != len(names) {
		t.Fatalf("DefaultMetrics returned %d of %d", len(ms), len(names))
	}
	for i, m := range ms {
		if m.Name() != names[i] {
			t.Errorf("metric %d named %q, registered as %q", i, m.Name(), names[i])
		}
	}
	if len(reg.ListPolicies()) != 2 || len(reg.ListOrders()) != 3 || len(reg.ListPatterns()) != 4 {
		t.Error("unexpected registry sizes")
	}
}

package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/lifetime"
	"github.com/san-kum/radialsim/internal/sim"
	"github.com/san-kum/radialsim/internal/spawn"
)

// Experiment assembles a world, a simulator and its collaborators from a
// scene config.
type Experiment struct {
	cfg        *config.Config
	simulator  *sim.Simulator
	world      *sim.World
	spawner    *spawn.Spawner
	emitter    *spawn.Emitter
	decay      *lifetime.Decay
	randSource *rand.Rand
	logger     *log.Logger
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
		logger:     log.Default(),
	}
}

func (e *Experiment) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Setup validates the config, builds the simulator with the configured
// policy and order, and populates the world: explicit particles first, then
// the spawn pattern.
func (e *Experiment) Setup(reg *Registry, metrics []dynamo.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	policy, err := reg.GetPolicy(e.cfg.Policy)
	if err != nil {
		return err
	}
	order, err := reg.GetOrder(e.cfg.Order)
	if err != nil {
		return err
	}
	pattern, err := reg.GetPattern(e.cfg.Spawn.Pattern)
	if err != nil {
		return err
	}

	e.simulator = sim.New(sim.WithPolicy(policy), sim.WithOrder(order), sim.WithSeed(e.cfg.Seed))
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}

	e.world = sim.NewWorld(e.cfg.Bounds)
	e.spawner = e.newSpawner()
	e.decay = lifetime.New()
	e.decay.Active = e.cfg.Lifetime.Enabled
	if e.cfg.Lifetime.Rate > 0 {
		e.decay.Rate = e.cfg.Lifetime.Rate
	}

	for i, p := range e.cfg.ExplicitParticles() {
		id, err := e.world.Spawn(p)
		if err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
		spawned, _ := e.world.Get(id)
		e.decay.Track(id, spawned.Scale)
	}

	seeds := pattern(e.spawner, e.cfg.Bounds, e.cfg.Spawn.Count, e.cfg.Spawn.Spread)
	if _, err := spawn.Place(e.world, e.decay, seeds); err != nil {
		return fmt.Errorf("spawn %s: %w", e.cfg.Spawn.Pattern, err)
	}

	e.emitter = spawn.NewEmitter(e.spawner, e.decay)
	e.emitter.Enabled = e.cfg.Emitter.Enabled
	e.emitter.Position = dynamo.Vec3{X: e.cfg.Emitter.X, Y: e.cfg.Emitter.Y}
	if e.cfg.Emitter.Interval > 0 {
		e.emitter.Interval = e.cfg.Emitter.Interval
	}

	e.simulator.AddCollaborator(e.emitter)
	e.simulator.AddCollaborator(e.decay)

	e.logger.Debug("experiment ready",
		"name", e.cfg.Name,
		"policy", policy,
		"order", order,
		"particles", e.world.Len(),
		"pattern", e.cfg.Spawn.Pattern,
	)
	return nil
}

func (e *Experiment) newSpawner() *spawn.Spawner {
	s := spawn.NewSpawner(e.randSource)
	sc := e.cfg.Spawn
	if sc.MaxSize > 0 {
		s.MinSize, s.MaxSize = sc.MinSize, sc.MaxSize
	}
	if sc.BaseRadius > 0 {
		s.BaseRadius = sc.BaseRadius
	}
	s.MaxSpeed = sc.MaxSpeed
	return s
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	e.logger.Info("running", "name", e.cfg.Name, "particles", e.world.Len(), "duration", e.cfg.Duration, "dt", e.cfg.Dt)
	result, err := e.simulator.Run(ctx, e.world, e.cfg.SimConfig())
	if err != nil {
		return result, err
	}
	e.logger.Info("finished",
		"name", e.cfg.Name,
		"steps", result.StepsTaken,
		"contacts", result.Totals.Contacts,
		"wall_hits", result.Totals.WallHits,
		"particles", len(result.Final),
	)
	return result, nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) World() *sim.World       { return e.world }
func (e *Experiment) Spawner() *spawn.Spawner { return e.spawner }
func (e *Experiment) Emitter() *spawn.Emitter { return e.emitter }
func (e *Experiment) Decay() *lifetime.Decay  { return e.decay }
func (e *Experiment) Config() *config.Config  { return e.cfg }

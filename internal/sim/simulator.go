package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/physics"
)

type Simulator struct {
	resolver      *physics.Resolver
	order         Order
	rng           *rand.Rand
	pool          *SnapshotPool
	arranged      []*dynamo.Particle
	metrics       []dynamo.Metric
	observers     []dynamo.Observer
	collaborators []dynamo.Collaborator
}

type Option func(*Simulator)

func WithPolicy(p physics.Policy) Option    { return func(s *Simulator) { s.resolver.Policy = p } }
func WithOrder(o Order) Option              { return func(s *Simulator) { s.order = o } }
func WithMetric(m dynamo.Metric) Option     { return func(s *Simulator) { s.AddMetric(m) } }
func WithObserver(o dynamo.Observer) Option { return func(s *Simulator) { s.AddObserver(o) } }

// WithRand sets the random source used for shuffled ordering and for the
// escape directions of coincident pairs.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		s.rng = rng
		s.resolver.Rand = rng
	}
}

func WithSeed(seed int64) Option { return WithRand(rand.New(rand.NewSource(seed))) }

func New(opts ...Option) *Simulator {
	rng := rand.New(rand.NewSource(1))
	s := &Simulator{
		resolver:      physics.NewResolver(physics.PolicySwap, rng),
		order:         OrderInsertion,
		rng:           rng,
		pool:          NewSnapshotPool(),
		metrics:       make([]dynamo.Metric, 0),
		observers:     make([]dynamo.Observer, 0),
		collaborators: make([]dynamo.Collaborator, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m dynamo.Metric)             { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer)         { s.observers = append(s.observers, o) }
func (s *Simulator) AddCollaborator(c dynamo.Collaborator) { s.collaborators = append(s.collaborators, c) }

func (s *Simulator) Policy() physics.Policy     { return s.resolver.Policy }
func (s *Simulator) SetPolicy(p physics.Policy) { s.resolver.Policy = p }
func (s *Simulator) Order() Order               { return s.order }
func (s *Simulator) SetOrder(o Order)           { s.order = o }

// Step advances particles by one frame of dt seconds:
// snapshot, integrate, resolve collisions, reflect off bounds, commit.
// It never creates or removes particles.
func (s *Simulator) Step(dt float64, bounds dynamo.Bounds, particles []*dynamo.Particle) dynamo.StepStats {
	snap := s.pool.Capture(particles)
	defer s.pool.Put(snap)

	for i := 0; i < snap.Len(); i++ {
		e := snap.At(i)
		e.Position = e.Position.Add(e.Velocity.Scale(dt)).Flat()
		snap.SetAt(i, e)
	}

	ordered := s.arrange(particles)
	contacts := s.resolver.Resolve(snap, ordered)
	hits := physics.Reflect(snap, ordered, bounds)

	for _, p := range particles {
		if e, ok := snap.Get(p.ID); ok {
			p.Position, p.Velocity = e.Position, e.Velocity
		}
	}

	return dynamo.StepStats{
		Contacts:   contacts.Pairs,
		Degenerate: contacts.Degenerate,
		WallHits:   hits,
	}
}

func (s *Simulator) arrange(particles []*dynamo.Particle) []*dynamo.Particle {
	if s.order == OrderInsertion {
		return particles
	}

	s.arranged = append(s.arranged[:0], particles...)
	switch s.order {
	case OrderReverse:
		for i, j := 0, len(s.arranged)-1; i < j; i, j = i+1, j-1 {
			s.arranged[i], s.arranged[j] = s.arranged[j], s.arranged[i]
		}
	case OrderShuffle:
		s.rng.Shuffle(len(s.arranged), func(i, j int) {
			s.arranged[i], s.arranged[j] = s.arranged[j], s.arranged[i]
		})
	}
	return s.arranged
}

// Advance runs the collaborators and one step on w, then feeds metrics and
// observers. It is the per-frame entry point for interactive hosts.
func (s *Simulator) Advance(w *World, dt, t float64) dynamo.StepStats {
	for _, c := range s.collaborators {
		c.Update(dt, w)
	}
	stats := s.Step(dt, w.Bounds(), w.Particles())
	for _, m := range s.metrics {
		m.Observe(w.Particles(), stats, t+dt)
	}
	for _, obs := range s.observers {
		obs.OnStep(w.Particles(), stats, t+dt)
	}
	return stats
}

// Run drives w with a fixed dt until cfg.Duration. The context is checked
// between steps; a step in progress always completes.
func (s *Simulator) Run(ctx context.Context, w *World, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg, w); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	result := &Result{
		Frames:  make([]Frame, 0),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	if cfg.RecordEvery > 0 {
		result.Frames = append(result.Frames, Frame{Step: 0, Time: t, Particles: w.Copy()})
	}

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, w)
			return result, ctx.Err()
		default:
		}

		stats := s.Advance(w, cfg.Dt, t)
		t += cfg.Dt
		result.StepsTaken++
		result.Totals.Accumulate(stats)

		if cfg.ValidateState {
			for _, p := range w.Particles() {
				if !p.IsValid() {
					s.finish(result, w)
					return result, &dynamo.SimulationError{Step: i, Time: t, ID: p.ID, Wrapped: dynamo.ErrInvalidState}
				}
			}
		}

		if cfg.RecordEvery > 0 && i%cfg.RecordEvery == 0 {
			result.Frames = append(result.Frames, Frame{Step: i, Time: t, Particles: w.Copy()})
		}
	}

	s.finish(result, w)
	return result, nil
}

func (s *Simulator) finish(result *Result, w *World) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = w.Copy()
}

func (s *Simulator) validateConfig(cfg Config, w *World) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", cfg.RecordEvery)
	}
	if w == nil {
		return fmt.Errorf("world is nil")
	}
	return w.Bounds().Validate()
}

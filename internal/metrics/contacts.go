package metrics

import (
	"math"

	"github.com/san-kum/radialsim/internal/dynamo"
)

// Contacts counts resolved particle pairs over a run.
type Contacts struct {
	total int
}

func NewContacts() *Contacts { return &Contacts{} }

func (c *Contacts) Name() string { return "contacts" }
func (c *Contacts) Observe(particles []*dynamo.Particle, stats dynamo.StepStats, t float64) {
	c.total += stats.Contacts
}
func (c *Contacts) Value() float64 { return float64(c.total) }
func (c *Contacts) Reset()         { c.total = 0 }

// WallHits counts wall reflections over a run.
type WallHits struct {
	total int
}

func NewWallHits() *WallHits { return &WallHits{} }

func (w *WallHits) Name() string { return "wall_hits" }
func (w *WallHits) Observe(particles []*dynamo.Particle, stats dynamo.StepStats, t float64) {
	w.total += stats.WallHits
}
func (w *WallHits) Value() float64 { return float64(w.total) }
func (w *WallHits) Reset()         { w.total = 0 }

// Momentum reports |sum v| at the last observed step. Velocity swaps do
// not conserve it.
type Momentum struct {
	last float64
}

func NewMomentum() *Momentum { return &Momentum{} }

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Observe(particles []*dynamo.Particle, stats dynamo.StepStats, t float64) {
	var sum dynamo.Vec3
	for _, p := range particles {
		sum = sum.Add(p.Velocity)
	}
	m.last = sum.Norm()
}

func (m *Momentum) Value() float64 { return m.last }
func (m *Momentum) Reset()         { m.last = 0 }

// Penetration reports the deepest overlap left after any step. Single-pass
// correction leaves residual overlap in crowded scenes; this tracks how
// much.
type Penetration struct {
	max float64
}

func NewPenetration() *Penetration { return &Penetration{} }

func (p *Penetration) Name() string { return "max_penetration" }

func (p *Penetration) Observe(particles []*dynamo.Particle, stats dynamo.StepStats, t float64) {
	p.max = math.Max(p.max, MaxOverlap(particles))
}

func (p *Penetration) Value() float64 { return p.max }
func (p *Penetration) Reset()         { p.max = 0 }

// MaxOverlap returns the largest r_a+r_b-d over all pairs, or 0 if no pair
// overlaps.
func MaxOverlap(particles []*dynamo.Particle) float64 {
	worst := 0.0
	for i := 0; i < len(particles); i++ {
		a := particles[i]
		for j := i + 1; j < len(particles); j++ {
			b := particles[j]
			depth := a.Radius() + b.Radius() - a.Position.Distance(b.Position)
			if depth > worst {
				worst = depth
			}
		}
	}
	return worst
}

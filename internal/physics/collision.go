package physics

import (
	"math/rand"

	"github.com/san-kum/radialsim/internal/dynamo"
)

// minEscapeSeparation is the largest allowed cosine between the two random
// escape directions of a coincident pair. At 0.5 (60 degrees) the pair ends
// at least one radius sum apart.
const minEscapeSeparation = 0.5

// Contacts counts the overlaps resolved in one pass.
type Contacts struct {
	Pairs      int
	Degenerate int
}

// Resolver detects and resolves pairwise overlaps in a snapshot.
type Resolver struct {
	Policy Policy
	Rand   *rand.Rand

	slots []int
	radii []float64
}

func NewResolver(policy Policy, rng *rand.Rand) *Resolver {
	return &Resolver{Policy: policy, Rand: rng}
}

// Resolve visits every unordered pair of particles once, in slice order:
// for the particle at i, the particles before it. Each overlapping pair is
// corrected in the snapshot immediately, so later pairs read the corrected
// state. The outcome depends on the order of particles.
//
// Particles without an entry in snap are added from their live state.
func (r *Resolver) Resolve(snap *dynamo.Snapshot, particles []*dynamo.Particle) Contacts {
	var c Contacts
	n := len(particles)
	r.prepare(snap, particles)

	for i := 0; i < n; i++ {
		ai := r.slots[i]
		for j := 0; j < i; j++ {
			bi := r.slots[j]
			a, b := snap.At(ai), snap.At(bi)

			dist := a.Position.Distance(b.Position)
			rSum := r.radii[i] + r.radii[j]
			if dist > rSum {
				continue
			}

			var towardA, towardB dynamo.Vec3
			if dist == 0 {
				towardA, towardB = r.escapeDirections()
				c.Degenerate++
			} else {
				towardA = b.Position.Sub(a.Position).Normalize()
				towardB = towardA.Neg()
			}

			a.Velocity, b.Velocity = r.Policy.respond(a.Velocity, b.Velocity, towardA, towardB)

			depth := dist - rSum
			a.Position = a.Position.Add(towardA.Scale(depth))
			b.Position = b.Position.Add(towardB.Scale(depth))

			snap.SetAt(ai, a)
			snap.SetAt(bi, b)
			c.Pairs++
		}
	}

	return c
}

func (r *Resolver) prepare(snap *dynamo.Snapshot, particles []*dynamo.Particle) {
	n := len(particles)
	if cap(r.slots) < n {
		r.slots = make([]int, n)
		r.radii = make([]float64, n)
	}
	r.slots = r.slots[:n]
	r.radii = r.radii[:n]

	for k, p := range particles {
		slot, ok := snap.Index(p.ID)
		if !ok {
			slot = snap.Put(p.ID, dynamo.Entry{Position: p.Position, Velocity: p.Velocity})
		}
		r.slots[k] = slot
		r.radii[k] = p.Radius()
	}
}

// escapeDirections returns two random unit vectors on the plane for a pair
// whose centers coincide. They are not independent: the second is
// resampled until it is at least 60 degrees from the first, so the
// correction always leaves the pair at least r_sum apart. Both are drawn
// from the whole circle rather than the positive quadrant.
func (r *Resolver) escapeDirections() (dynamo.Vec3, dynamo.Vec3) {
	a := r.randomDirection()
	for {
		b := r.randomDirection()
		if a.Dot(b) <= minEscapeSeparation {
			return a, b
		}
	}
}

func (r *Resolver) randomDirection() dynamo.Vec3 {
	for {
		v := dynamo.Vec3{X: r.float()*2 - 1, Y: r.float()*2 - 1}
		if v.Norm() > 1e-9 {
			return v.Normalize()
		}
	}
}

func (r *Resolver) float() float64 {
	if r.Rand == nil {
		return rand.Float64()
	}
	return r.Rand.Float64()
}

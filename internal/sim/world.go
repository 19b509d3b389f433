package sim

import (
	"fmt"

	"github.com/san-kum/radialsim/internal/dynamo"
)

// World is the host-side particle collection. It keeps particles in
// insertion order so that steps are reproducible, and it is the only place
// particles are created or destroyed.
type World struct {
	bounds    dynamo.Bounds
	particles []*dynamo.Particle
	index     map[dynamo.ID]int
	nextID    dynamo.ID
}

func NewWorld(bounds dynamo.Bounds) *World {
	return &World{
		bounds:    bounds,
		particles: make([]*dynamo.Particle, 0, 64),
		index:     make(map[dynamo.ID]int),
		nextID:    1,
	}
}

// Spawn adds a copy of p. A zero ID is replaced by the next free one and a
// zero Scale defaults to 1.
func (w *World) Spawn(p dynamo.Particle) (dynamo.ID, error) {
	if p.Scale == 0 {
		p.Scale = 1
	}
	if !p.IsValid() {
		return 0, fmt.Errorf("%w: position %v velocity %v radius %g", dynamo.ErrInvalidParticle, p.Position, p.Velocity, p.Radius())
	}

	if p.ID == 0 {
		for {
			if _, used := w.index[w.nextID]; !used {
				break
			}
			w.nextID++
		}
		p.ID = w.nextID
		w.nextID++
	} else if _, used := w.index[p.ID]; used {
		return 0, fmt.Errorf("%w: %d", dynamo.ErrDuplicateID, p.ID)
	}

	p.Position = p.Position.Flat()
	w.index[p.ID] = len(w.particles)
	w.particles = append(w.particles, &p)
	return p.ID, nil
}

// Despawn removes the particle and keeps the order of the rest.
func (w *World) Despawn(id dynamo.ID) bool {
	i, ok := w.index[id]
	if !ok {
		return false
	}
	delete(w.index, id)
	copy(w.particles[i:], w.particles[i+1:])
	w.particles[len(w.particles)-1] = nil
	w.particles = w.particles[:len(w.particles)-1]
	for j := i; j < len(w.particles); j++ {
		w.index[w.particles[j].ID] = j
	}
	return true
}

func (w *World) Get(id dynamo.ID) (*dynamo.Particle, bool) {
	i, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return w.particles[i], true
}

// Particles returns the live collection. Callers may mutate the particles
// but must not retain the slice across Spawn or Despawn.
func (w *World) Particles() []*dynamo.Particle { return w.particles }

func (w *World) Len() int                  { return len(w.particles) }
func (w *World) Bounds() dynamo.Bounds     { return w.bounds }
func (w *World) SetBounds(b dynamo.Bounds) { w.bounds = b }

// Clear despawns every particle.
func (w *World) Clear() {
	for i := range w.particles {
		w.particles[i] = nil
	}
	w.particles = w.particles[:0]
	clear(w.index)
}

// Copy returns value copies of every particle, in order.
func (w *World) Copy() []dynamo.Particle {
	out := make([]dynamo.Particle, len(w.particles))
	for i, p := range w.particles {
		out[i] = *p
	}
	return out
}

// Package lifetime shrinks particles over time and removes them once their
// health runs out.
package lifetime

import (
	"github.com/san-kum/radialsim/internal/dynamo"
)

// DefaultRate is the health drained per second while decay is active.
const DefaultRate = 32.0

// Decay tracks a health value per particle. While Active, every update sets
// each particle's Scale to its health and drains it by dt*Rate; particles
// whose health has reached zero are despawned on the next update.
type Decay struct {
	Rate   float64
	Active bool

	health map[dynamo.ID]float64
	buf    []dynamo.ID
}

func New() *Decay {
	return &Decay{Rate: DefaultRate, health: make(map[dynamo.ID]float64)}
}

func (d *Decay) Track(id dynamo.ID, health float64) {
	d.health[id] = health
}

func (d *Decay) Forget(id dynamo.ID) {
	delete(d.health, id)
}

func (d *Decay) Health(id dynamo.ID) (float64, bool) {
	h, ok := d.health[id]
	return h, ok
}

func (d *Decay) Len() int { return len(d.health) }

func (d *Decay) Update(dt float64, pop dynamo.Population) {
	if !d.Active {
		return
	}

	d.buf = d.buf[:0]
	for _, p := range pop.Particles() {
		h, ok := d.health[p.ID]
		if !ok {
			continue
		}
		if h <= 0 {
			d.buf = append(d.buf, p.ID)
			continue
		}
		p.Scale = h
		d.health[p.ID] = h - dt*d.Rate
	}

	for _, id := range d.buf {
		pop.Despawn(id)
		delete(d.health, id)
	}
	d.prune(pop)
}

// prune drops health entries for particles despawned by someone else.
func (d *Decay) prune(pop dynamo.Population) {
	particles := pop.Particles()
	if len(d.health) == 0 {
		return
	}
	live := make(map[dynamo.ID]struct{}, len(particles))
	for _, p := range particles {
		live[p.ID] = struct{}{}
	}
	for id := range d.health {
		if _, ok := live[id]; !ok {
			delete(d.health, id)
		}
	}
}

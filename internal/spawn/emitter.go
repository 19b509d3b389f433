package spawn

import (
	"github.com/san-kum/radialsim/internal/dynamo"
)

// DefaultInterval is the delay between spawns while the pointer is held.
const DefaultInterval = 0.01

// Emitter spawns at Position while Enabled, at most one particle per
// update and no more often than every Interval seconds. The first update
// after a long enough pause spawns at once. It is driven by the host
// between steps.
type Emitter struct {
	Spawner  *Spawner
	Tracker  Tracker
	Position dynamo.Vec3
	Interval float64
	Enabled  bool

	cooldown float64
	spawned  int
	err      error
}

func NewEmitter(s *Spawner, tr Tracker) *Emitter {
	return &Emitter{Spawner: s, Tracker: tr, Interval: DefaultInterval}
}

func (e *Emitter) Update(dt float64, pop dynamo.Population) {
	if e.cooldown > 0 {
		e.cooldown -= dt
	}
	if !e.Enabled || e.Spawner == nil || e.cooldown > 0 {
		return
	}
	interval := e.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	if _, err := Place(pop, e.Tracker, []Seed{e.Spawner.At(e.Position)}); err != nil {
		e.err = err
		return
	}
	e.spawned++
	e.cooldown = interval
}

// Spawned reports how many particles the emitter has created.
func (e *Emitter) Spawned() int { return e.spawned }

// Err returns the last spawn failure, if any.
func (e *Emitter) Err() error { return e.err }

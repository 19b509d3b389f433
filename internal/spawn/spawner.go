package spawn

import (
	"math/rand"

	"github.com/san-kum/radialsim/internal/dynamo"
)

const (
	DefaultMinSize    = 4.0
	DefaultMaxSize    = 32.0
	DefaultMaxSpeed   = 200.0
	DefaultBaseRadius = 0.5
)

// Seed is a particle ready to be spawned together with its starting health.
type Seed struct {
	Particle dynamo.Particle
	Health   float64
}

// Tracker receives the health of every particle a spawner creates.
type Tracker interface {
	Track(id dynamo.ID, health float64)
}

// Spawner draws randomized particles. The rendered size doubles as the
// collider scale and as the starting health.
type Spawner struct {
	Rand       *rand.Rand
	MinSize    float64
	MaxSize    float64
	MaxSpeed   float64
	BaseRadius float64
}

func NewSpawner(rng *rand.Rand) *Spawner {
	return &Spawner{
		Rand:       rng,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
		MaxSpeed:   DefaultMaxSpeed,
		BaseRadius: DefaultBaseRadius,
	}
}

// At returns a particle centered on pos with a random size and a velocity
// drawn per axis from [-MaxSpeed, MaxSpeed].
func (s *Spawner) At(pos dynamo.Vec3) Seed {
	return s.with(pos, dynamo.Vec3{
		X: s.uniform(-s.MaxSpeed, s.MaxSpeed),
		Y: s.uniform(-s.MaxSpeed, s.MaxSpeed),
	})
}

func (s *Spawner) with(pos, vel dynamo.Vec3) Seed {
	size := s.uniform(s.MinSize, s.MaxSize)
	return Seed{
		Particle: dynamo.Particle{
			Position:   pos.Flat(),
			Velocity:   vel.Flat(),
			BaseRadius: s.BaseRadius,
			Scale:      size,
		},
		Health: size,
	}
}

// Place spawns every seed into pop and reports health to tr when set.
func Place(pop dynamo.Population, tr Tracker, seeds []Seed) ([]dynamo.ID, error) {
	ids := make([]dynamo.ID, 0, len(seeds))
	for _, sd := range seeds {
		id, err := pop.Spawn(sd.Particle)
		if err != nil {
			return ids, err
		}
		if tr != nil {
			tr.Track(id, sd.Health)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Spawner) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*s.float()
}

func (s *Spawner) float() float64 {
	if s.Rand != nil {
		return s.Rand.Float64()
	}
	return rand.Float64()
}

package metrics

import (
	"math"

	"github.com/san-kum/radialsim/internal/dynamo"
)

// KineticEnergy is sum(0.5*|v|^2) over all particles with unit mass.
func KineticEnergy(particles []*dynamo.Particle) float64 {
	ke := 0.0
	for _, p := range particles {
		ke += 0.5 * p.Velocity.Dot(p.Velocity)
	}
	return ke
}

// Energy reports the mean kinetic energy over the observed steps.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(particles []*dynamo.Particle, stats dynamo.StepStats, t float64) {
	e.totalEnergy += KineticEnergy(particles)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest relative change in kinetic energy from the
// first observation. Swap and redirect responses plus wall flips all keep
// speeds, so drift only appears when particles are spawned or despawned.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(particles []*dynamo.Particle, stats dynamo.StepStats, t float64) {
	energy := KineticEnergy(particles)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

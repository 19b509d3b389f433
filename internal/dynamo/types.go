package dynamo

import (
	"fmt"
	"math"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(f float64) Vec3    { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Neg() Vec3               { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64      { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Norm() float64           { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Norm() }

// Flat drops the Z component; the simulation is planar and Z is cosmetic.
func (v Vec3) Flat() Vec3 { return Vec3{v.X, v.Y, 0} }

// Normalize returns the unit vector in the direction of v. The zero vector
// normalizes to itself.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	inv := 1.0 / n
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

type ID uint64

// Particle is a circular simulated body. BaseRadius is the collider radius
// at unit scale; Scale is the current visual scale, which collaborators such
// as lifetime decay may animate between steps.
type Particle struct {
	ID         ID
	Position   Vec3
	Velocity   Vec3
	BaseRadius float64
	Scale      float64
}

// Radius is the effective collider radius used for contact and wall tests.
func (p *Particle) Radius() float64 { return p.BaseRadius * p.Scale }

func (p *Particle) Speed() float64 { return p.Velocity.Norm() }

func (p *Particle) IsValid() bool {
	r := p.Radius()
	return p.Position.IsValid() && p.Velocity.IsValid() && !math.IsNaN(r) && r >= 0
}

// Bounds is a rectangle centered at the origin.
type Bounds struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (b Bounds) Left() float64   { return -b.Width / 2 }
func (b Bounds) Right() float64  { return b.Width / 2 }
func (b Bounds) Bottom() float64 { return -b.Height / 2 }
func (b Bounds) Top() float64    { return b.Height / 2 }

func (b Bounds) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidBounds, b.Width, b.Height)
	}
	return nil
}

// Contains reports whether a circle of radius r at p lies strictly inside.
func (b Bounds) Contains(p Vec3, r float64) bool {
	return p.X-r > b.Left() && p.X+r < b.Right() && p.Y-r > b.Bottom() && p.Y+r < b.Top()
}

// StepStats summarizes what happened during one step.
type StepStats struct {
	Contacts   int
	Degenerate int
	WallHits   int
}

func (s *StepStats) Accumulate(o StepStats) {
	s.Contacts += o.Contacts
	s.Degenerate += o.Degenerate
	s.WallHits += o.WallHits
}

type Observer interface {
	OnStep(particles []*Particle, stats StepStats, t float64)
}

type Metric interface {
	Name() string
	Observe(particles []*Particle, stats StepStats, t float64)
	Value() float64
	Reset()
}

// Population is the mutable particle collection collaborators act on
// between steps.
type Population interface {
	Particles() []*Particle
	Spawn(p Particle) (ID, error)
	Despawn(id ID) bool
	Bounds() Bounds
}

// Collaborator runs before each step: spawners, lifetime decay and other
// host-side systems that create, destroy or rescale particles.
type Collaborator interface {
	Update(dt float64, pop Population)
}

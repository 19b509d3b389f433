package spawn

import (
	"fmt"
	"math"
	"sort"

	"github.com/aquilax/go-perlin"
	"github.com/san-kum/radialsim/internal/dynamo"
)

const (
	noiseAlpha = 2.0
	noiseBeta  = 2.0
	noiseOct   = 3
	// noiseScale maps world units to noise space.
	noiseScale = 0.01
)

// Pattern lays out count particles inside b. spread is pattern specific:
// the jitter radius for point, the cell gap for grid, and unused for the
// rest.
type Pattern func(s *Spawner, b dynamo.Bounds, count int, spread float64) []Seed

var patterns = map[string]Pattern{
	"point":   Point,
	"scatter": Scatter,
	"grid":    Grid,
	"noise":   Noise,
}

func Lookup(name string) (Pattern, error) {
	if name == "" {
		return Scatter, nil
	}
	p, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPattern, name)
	}
	return p, nil
}

func Names() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Point stacks every particle at the origin, optionally jittered within a
// disc of radius spread. With spread 0 every pair starts coincident.
func Point(s *Spawner, b dynamo.Bounds, count int, spread float64) []Seed {
	seeds := make([]Seed, count)
	for i := range seeds {
		var pos dynamo.Vec3
		if spread > 0 {
			angle := s.uniform(0, 2*math.Pi)
			r := spread * math.Sqrt(s.float())
			pos = dynamo.Vec3{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
		}
		seeds[i] = s.At(pos)
	}
	return seeds
}

// Scatter places particles uniformly inside the bounds, inset by each
// particle's radius.
func Scatter(s *Spawner, b dynamo.Bounds, count int, spread float64) []Seed {
	seeds := make([]Seed, count)
	for i := range seeds {
		sd := s.At(dynamo.Vec3{})
		sd.Particle.Position = s.inside(b, sd.Particle.Radius())
		seeds[i] = sd
	}
	return seeds
}

// Grid lays particles out row by row on a square lattice centered on the
// origin, cells spread apart. A non-positive spread fits the lattice to the
// bounds.
func Grid(s *Spawner, b dynamo.Bounds, count int, spread float64) []Seed {
	if count == 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + cols - 1) / cols
	if spread <= 0 {
		spread = math.Min(b.Width/float64(cols+1), b.Height/float64(rows+1))
	}

	x0 := -spread * float64(cols-1) / 2
	y0 := spread * float64(rows-1) / 2
	seeds := make([]Seed, count)
	for i := range seeds {
		col, row := i%cols, i/cols
		seeds[i] = s.At(dynamo.Vec3{X: x0 + float64(col)*spread, Y: y0 - float64(row)*spread})
	}
	return seeds
}

// Noise scatters particles and heads each one along a Perlin flow field
// sampled at its position, with a random speed up to MaxSpeed.
func Noise(s *Spawner, b dynamo.Bounds, count int, spread float64) []Seed {
	field := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOct, s.seed())
	seeds := make([]Seed, count)
	for i := range seeds {
		sd := s.At(dynamo.Vec3{})
		pos := s.inside(b, sd.Particle.Radius())
		angle := (field.Noise2D(pos.X*noiseScale, pos.Y*noiseScale) + 1) * math.Pi
		speed := s.uniform(0, s.MaxSpeed)

		sd.Particle.Position = pos
		sd.Particle.Velocity = dynamo.Vec3{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)}
		seeds[i] = sd
	}
	return seeds
}

func (s *Spawner) inside(b dynamo.Bounds, r float64) dynamo.Vec3 {
	halfW := math.Max(b.Width/2-r, 0)
	halfH := math.Max(b.Height/2-r, 0)
	return dynamo.Vec3{X: s.uniform(-halfW, halfW), Y: s.uniform(-halfH, halfH)}
}

func (s *Spawner) seed() int64 {
	if s.Rand != nil {
		return s.Rand.Int63()
	}
	return int64(s.float() * math.MaxInt32)
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/lifetime"
	"github.com/san-kum/radialsim/internal/physics"
	"github.com/san-kum/radialsim/internal/sim"
	"github.com/san-kum/radialsim/internal/spawn"
)

const (
	DefaultDt          = 1.0 / 60.0
	DefaultDuration    = 10.0
	DefaultRecordEvery = 1
	DefaultWidth       = 800.0
	DefaultHeight      = 600.0
)

type Config struct {
	Name        string           `yaml:"name"`
	Policy      string           `yaml:"policy"`
	Order       string           `yaml:"order"`
	Dt          float64          `yaml:"dt"`
	Duration    float64          `yaml:"duration"`
	Seed        int64            `yaml:"seed"`
	RecordEvery int              `yaml:"record_every"`
	Bounds      dynamo.Bounds    `yaml:"bounds"`
	Spawn       SpawnConfig      `yaml:"spawn"`
	Lifetime    LifetimeConfig   `yaml:"lifetime"`
	Emitter     EmitterConfig    `yaml:"emitter"`
	Particles   []ParticleConfig `yaml:"particles,omitempty"`
}

// SpawnConfig describes the generated part of the initial population.
type SpawnConfig struct {
	Pattern    string  `yaml:"pattern"`
	Count      int     `yaml:"count"`
	MinSize    float64 `yaml:"min_size"`
	MaxSize    float64 `yaml:"max_size"`
	MaxSpeed   float64 `yaml:"max_speed"`
	BaseRadius float64 `yaml:"base_radius"`
	Spread     float64 `yaml:"spread"`
}

type LifetimeConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate"`
}

type EmitterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Interval float64 `yaml:"interval"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
}

// ParticleConfig is an explicitly placed particle. Radius is the base
// radius; a zero scale means 1.
type ParticleConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Radius float64 `yaml:"radius"`
	Scale  float64 `yaml:"scale,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "default",
		Policy:      physics.PolicySwap.String(),
		Order:       sim.OrderInsertion.String(),
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Seed:        1,
		RecordEvery: DefaultRecordEvery,
		Bounds:      dynamo.Bounds{Width: DefaultWidth, Height: DefaultHeight},
		Spawn: SpawnConfig{
			Pattern:    "scatter",
			MinSize:    spawn.DefaultMinSize,
			MaxSize:    spawn.DefaultMaxSize,
			MaxSpeed:   spawn.DefaultMaxSpeed,
			BaseRadius: spawn.DefaultBaseRadius,
		},
		Lifetime: LifetimeConfig{Rate: lifetime.DefaultRate},
		Emitter:  EmitterConfig{Interval: spawn.DefaultInterval},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse decodes YAML on top of DefaultConfig, so omitted fields keep their
// defaults. source only labels errors.
func Parse(data []byte, source string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks names and numeric ranges. It does not touch the
// filesystem.
func (c *Config) Validate() error {
	if _, err := physics.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := sim.ParseOrder(c.Order); err != nil {
		return err
	}
	if _, err := spawn.Lookup(c.Spawn.Pattern); err != nil {
		return err
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative, got %d", c.RecordEvery)
	}
	if c.Spawn.Count < 0 {
		return fmt.Errorf("spawn count must not be negative, got %d", c.Spawn.Count)
	}
	if c.Spawn.MinSize < 0 || c.Spawn.MaxSize < c.Spawn.MinSize {
		return fmt.Errorf("spawn size range [%g, %g] is invalid", c.Spawn.MinSize, c.Spawn.MaxSize)
	}
	if c.Spawn.MaxSpeed < 0 || c.Spawn.BaseRadius < 0 {
		return fmt.Errorf("spawn max_speed and base_radius must not be negative")
	}
	if c.Lifetime.Rate < 0 {
		return fmt.Errorf("lifetime rate must not be negative, got %g", c.Lifetime.Rate)
	}
	for i, p := range c.Particles {
		if p.Radius < 0 || p.Scale < 0 {
			return fmt.Errorf("particle %d: %w: negative radius or scale", i, dynamo.ErrInvalidParticle)
		}
	}
	return nil
}

// SimConfig returns the runner settings. A record_every of 0 records no
// frames.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Seed:          c.Seed,
		RecordEvery:   c.RecordEvery,
		ValidateState: true,
	}
}

// ExplicitParticles converts the listed particles; IDs are left for the
// world to assign.
func (c *Config) ExplicitParticles() []dynamo.Particle {
	out := make([]dynamo.Particle, len(c.Particles))
	for i, p := range c.Particles {
		out[i] = dynamo.Particle{
			Position:   dynamo.Vec3{X: p.X, Y: p.Y},
			Velocity:   dynamo.Vec3{X: p.VX, Y: p.VY},
			BaseRadius: p.Radius,
			Scale:      p.Scale,
		}
	}
	return out
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Particles = append([]ParticleConfig(nil), c.Particles...)
	return &cp
}

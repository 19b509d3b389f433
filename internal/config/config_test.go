package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/radialsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Policy != "swap" {
		t.Errorf("expected policy swap, got %s", cfg.Policy)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("head_on")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Particles) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(cfg.Particles))
	}
	if cfg.Dt != 0.02 || cfg.Bounds.Width != 200 {
		t.Errorf("unexpected head_on settings: dt %f bounds %v", cfg.Dt, cfg.Bounds)
	}

	cfg.Particles[0].X = 99
	if Presets["head_on"].Particles[0].X != -1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets returned %d of %d", len(names), len(Presets))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		target error
	}{
		{"bad policy", func(c *Config) { c.Policy = "bounce" }, dynamo.ErrUnknownPolicy},
		{"bad order", func(c *Config) { c.Order = "random" }, dynamo.ErrUnknownOrder},
		{"bad pattern", func(c *Config) { c.Spawn.Pattern = "spiral" }, dynamo.ErrUnknownPattern},
		{"bad bounds", func(c *Config) { c.Bounds.Height = 0 }, dynamo.ErrInvalidBounds},
		{"bad particle", func(c *Config) { c.Particles = []ParticleConfig{{Radius: -1}} }, dynamo.ErrInvalidParticle},
		{"zero dt", func(c *Config) { c.Dt = 0 }, nil},
		{"size range", func(c *Config) { c.Spawn.MaxSize = 1 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := GetPreset("rain")
	cfg.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Seed != 42 || !loaded.Emitter.Enabled || loaded.Lifetime.Rate != 32 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("name: partial\npolicy: redirect\nparticles:\n  - {x: 1, y: 2, vx: 3, vy: 4, radius: 0.5}\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dt != DefaultDt || cfg.Bounds.Width != DefaultWidth {
		t.Errorf("defaults not kept: dt %f bounds %v", cfg.Dt, cfg.Bounds)
	}

	ps := cfg.ExplicitParticles()
	if len(ps) != 1 || ps[0].Position != (dynamo.Vec3{X: 1, Y: 2}) || ps[0].BaseRadius != 0.5 {
		t.Errorf("unexpected particles: %+v", ps)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("partial config invalid: %v", err)
	}
}

func TestSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	sc := cfg.SimConfig()
	if sc.RecordEvery != DefaultRecordEvery || !sc.ValidateState || sc.Dt != cfg.Dt {
		t.Errorf("unexpected sim config: %+v", sc)
	}
}

func TestRecordEveryZeroDisablesRecording(t *testing.T) {
	cfg, err := Parse([]byte("record_every: 0\n"), "scene")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("record_every 0 should be valid: %v", err)
	}
	if sc := cfg.SimConfig(); sc.RecordEvery != 0 {
		t.Errorf("record_every 0 became %d", sc.RecordEvery)
	}

	cfg, err = Parse([]byte("seed: 2\n"), "scene")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc := cfg.SimConfig(); sc.RecordEvery != DefaultRecordEvery {
		t.Errorf("omitted record_every = %d, want %d", sc.RecordEvery, DefaultRecordEvery)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("RADIALSIM_TEST_VALUE", "set")
	if got := GetEnv("RADIALSIM_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("GetEnv = %q, want set", got)
	}
	if got := GetEnv("RADIALSIM_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetEnv = %q, want fallback", got)
	}
}

func TestParseError(t *testing.T) {
	if _, err := Parse([]byte("dt: [1, 2"), "stdin"); err == nil {
		t.Fatal("expected parse error")
	}
	cfg, err := Parse([]byte("seed: 9\n"), "stdin")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Seed != 9 || cfg.Policy != "swap" {
		t.Errorf("unexpected config: seed %d policy %s", cfg.Seed, cfg.Policy)
	}
}

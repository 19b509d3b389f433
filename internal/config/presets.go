package config

import (
	"sort"

	"github.com/san-kum/radialsim/internal/dynamo"
)

var Presets = map[string]*Config{
	"head_on": {
		Name: "head_on", Policy: "swap", Order: "insertion",
		Dt: 0.02, Duration: 2.0, Seed: 1, RecordEvery: 1,
		Bounds: dynamo.Bounds{Width: 200, Height: 200},
		Particles: []ParticleConfig{
			{X: -1, Y: 0, VX: 50, VY: 0, Radius: 1},
			{X: 1, Y: 0, VX: -50, VY: 0, Radius: 1},
		},
	},
	"crowd": {
		Name: "crowd", Policy: "swap", Order: "insertion",
		Dt: 1.0 / 60.0, Duration: 10.0, Seed: 7, RecordEvery: 6,
		Bounds: dynamo.Bounds{Width: 800, Height: 600},
		Spawn:  SpawnConfig{Pattern: "scatter", Count: 150, MinSize: 4, MaxSize: 32, MaxSpeed: 200, BaseRadius: 0.5},
	},
	"redirect": {
		Name: "redirect", Policy: "redirect", Order: "shuffle",
		Dt: 1.0 / 60.0, Duration: 10.0, Seed: 7, RecordEvery: 6,
		Bounds: dynamo.Bounds{Width: 800, Height: 600},
		Spawn:  SpawnConfig{Pattern: "scatter", Count: 150, MinSize: 4, MaxSize: 32, MaxSpeed: 200, BaseRadius: 0.5},
	},
	"stack": {
		Name: "stack", Policy: "swap", Order: "insertion",
		Dt: 1.0 / 60.0, Duration: 5.0, Seed: 3, RecordEvery: 2,
		Bounds: dynamo.Bounds{Width: 400, Height: 400},
		Spawn:  SpawnConfig{Pattern: "point", Count: 12, MinSize: 8, MaxSize: 8, MaxSpeed: 0, BaseRadius: 0.5},
	},
	"rain": {
		Name: "rain", Policy: "swap", Order: "insertion",
		Dt: 1.0 / 60.0, Duration: 8.0, Seed: 11, RecordEvery: 6,
		Bounds:   dynamo.Bounds{Width: 800, Height: 600},
		Spawn:    SpawnConfig{Pattern: "scatter", MinSize: 4, MaxSize: 32, MaxSpeed: 200, BaseRadius: 0.5},
		Emitter:  EmitterConfig{Enabled: true, Interval: 0.01, X: 0, Y: 200},
		Lifetime: LifetimeConfig{Enabled: true, Rate: 32},
	},
	"noise": {
		Name: "noise", Policy: "redirect", Order: "insertion",
		Dt: 1.0 / 60.0, Duration: 10.0, Seed: 5, RecordEvery: 6,
		Bounds: dynamo.Bounds{Width: 800, Height: 600},
		Spawn:  SpawnConfig{Pattern: "noise", Count: 200, MinSize: 4, MaxSize: 16, MaxSpeed: 150, BaseRadius: 0.5},
	},
	"fade": {
		Name: "fade", Policy: "swap", Order: "insertion",
		Dt: 1.0 / 60.0, Duration: 3.0, Seed: 2, RecordEvery: 3,
		Bounds:   dynamo.Bounds{Width: 600, Height: 600},
		Spawn:    SpawnConfig{Pattern: "grid", Count: 64, MinSize: 8, MaxSize: 32, MaxSpeed: 100, BaseRadius: 0.5},
		Lifetime: LifetimeConfig{Enabled: true, Rate: 32},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

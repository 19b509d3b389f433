// Package host holds the window-independent half of a pixel host: the
// experiment, the pixel to world mapping and how a frame of pointer and key
// input drives the spawn and decay collaborators. One world unit is one
// pixel and the bounds track the surface size.
package host

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/experiment"
)

// Input is one frame of user input in screen pixels, +Y down.
type Input struct {
	CursorX, CursorY int
	LeftHeld         bool
	SpaceHeld        bool
	ToggleFPS        bool
	TogglePause      bool
	CyclePolicy      bool
	Reset            bool
	Quit             bool
}

type Session struct {
	cfg      *config.Config
	registry *experiment.Registry
	exp      *experiment.Experiment
	logger   *log.Logger

	Width, Height int
	Time          float64
	Running       bool
	ShowFPS       bool
	Stats         dynamo.StepStats
}

func NewSession(cfg *config.Config, logger *log.Logger, width, height int) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{
		cfg:      cfg,
		registry: experiment.NewRegistry(),
		logger:   logger,
		Width:    width,
		Height:   height,
		Running:  true,
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rebuilds the experiment from the scene, sized to the surface.
func (s *Session) Reset() error {
	cfg := s.cfg.Clone()
	cfg.Bounds = s.Bounds()

	exp := experiment.New(cfg)
	exp.SetLogger(s.logger)
	if err := exp.Setup(s.registry, nil); err != nil {
		return err
	}
	s.exp = exp
	s.Time = 0
	s.Stats = dynamo.StepStats{}
	return nil
}

func (s *Session) Bounds() dynamo.Bounds {
	return dynamo.Bounds{Width: float64(s.Width), Height: float64(s.Height)}
}

// Resize keeps the bounds in step with the surface.
func (s *Session) Resize(width, height int) {
	if width == s.Width && height == s.Height {
		return
	}
	s.Width, s.Height = width, height
	s.exp.World().SetBounds(s.Bounds())
}

// Apply feeds one frame of input to the world and advances it by dt.
// Holding the left button spawns at the cursor; holding space drains
// health. It reports whether the host should quit.
func (s *Session) Apply(in Input, dt float64) (bool, error) {
	if in.Quit {
		return true, nil
	}
	if in.Reset {
		if err := s.Reset(); err != nil {
			return false, fmt.Errorf("reset: %w", err)
		}
	}
	if in.ToggleFPS {
		s.ShowFPS = !s.ShowFPS
	}
	if in.TogglePause {
		s.Running = !s.Running
	}
	sim := s.exp.GetSimulator()
	if in.CyclePolicy {
		sim.SetPolicy(sim.Policy().Next())
		s.logger.Debug("policy changed", "policy", sim.Policy())
	}

	emitter := s.exp.Emitter()
	emitter.Enabled = in.LeftHeld
	emitter.Position = s.ToWorld(float64(in.CursorX), float64(in.CursorY))
	s.exp.Decay().Active = in.SpaceHeld || s.cfg.Lifetime.Enabled

	if !s.Running {
		return false, nil
	}
	s.Stats = sim.Advance(s.exp.World(), dt, s.Time)
	s.Time += dt
	return false, nil
}

func (s *Session) ToWorld(sx, sy float64) dynamo.Vec3 {
	b := s.Bounds()
	return dynamo.Vec3{X: b.Left() + sx, Y: b.Top() - sy}
}

func (s *Session) ToScreen(p dynamo.Vec3) (float32, float32) {
	b := s.Bounds()
	return float32(p.X - b.Left()), float32(b.Top() - p.Y)
}

func (s *Session) Experiment() *experiment.Experiment { return s.exp }

package gui

import (
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/host"
)

const (
	defaultWindowWidth  = 1280
	defaultWindowHeight = 720
	ticksPerSecond      = 60
)

// App is the ebiten window around a host session.
type App struct {
	*host.Session
}

func NewApp(cfg *config.Config, logger *log.Logger) (*App, error) {
	s, err := host.NewSession(cfg, logger, defaultWindowWidth, defaultWindowHeight)
	if err != nil {
		return nil, err
	}
	return &App{Session: s}, nil
}

// Run opens a resizable window and blocks until it is closed.
func Run(cfg *config.Config, logger *log.Logger) error {
	a, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(a.Width, a.Height)
	ebiten.SetWindowTitle("radialsim")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ticksPerSecond)

	err = ebiten.RunGame(a)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

func readInput() host.Input {
	x, y := ebiten.CursorPosition()
	return host.Input{
		CursorX:     x,
		CursorY:     y,
		LeftHeld:    ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		SpaceHeld:   ebiten.IsKeyPressed(ebiten.KeySpace),
		ToggleFPS:   inpututil.IsKeyJustPressed(ebiten.KeyBackquote),
		TogglePause: inpututil.IsKeyJustPressed(ebiten.KeyP),
		CyclePolicy: inpututil.IsKeyJustPressed(ebiten.KeyO),
		Reset:       inpututil.IsKeyJustPressed(ebiten.KeyR),
		Quit:        inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ),
	}
}

// Update runs once per tick at a fixed rate, so dt is 1/TPS.
func (a *App) Update() error {
	quit, err := a.Apply(readInput(), 1/float64(ebiten.TPS()))
	if err != nil {
		return err
	}
	if quit {
		return ebiten.Termination
	}
	return nil
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

package gui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/san-kum/radialsim/internal/metrics"
	"github.com/san-kum/radialsim/internal/spawn"
)

// Monochrome palette; speed tints particles from dim to bright.
var (
	ColBg     = color.RGBA{10, 10, 10, 255}
	ColSlow   = color.RGBA{60, 60, 70, 255}
	ColFast   = color.RGBA{235, 235, 255, 255}
	ColBorder = color.RGBA{30, 30, 30, 255}
)

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(ColBg)
	a.drawParticles(screen)
	vector.StrokeRect(screen, 0.5, 0.5, float32(a.Width)-1, float32(a.Height)-1, 1, ColBorder, false)
	a.DrawHUD(screen)
}

func (a *App) drawParticles(screen *ebiten.Image) {
	for _, p := range a.Experiment().World().Particles() {
		sx, sy := a.ToScreen(p.Position)
		r := float32(p.Radius())
		if r < 1 {
			r = 1
		}
		vector.DrawFilledCircle(screen, sx, sy, r, speedColor(p.Speed()), true)
	}
}

func speedColor(speed float64) color.RGBA {
	t := math.Min(speed/spawn.DefaultMaxSpeed, 1)
	lerp := func(a, b uint8) uint8 { return uint8(float64(a) + t*(float64(b)-float64(a))) }
	return color.RGBA{lerp(ColSlow.R, ColFast.R), lerp(ColSlow.G, ColFast.G), lerp(ColSlow.B, ColFast.B), 255}
}

// DrawHUD prints the perf overlay toggled with the grave key.
func (a *App) DrawHUD(screen *ebiten.Image) {
	if !a.ShowFPS {
		return
	}
	s := a.Experiment().GetSimulator()
	w := a.Experiment().World()
	text := fmt.Sprintf("FPS %.0f  TPS %.0f\nparticles %d\ncontacts %d  walls %d\npolicy %s  order %s\nenergy %.0f",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		w.Len(),
		a.Stats.Contacts, a.Stats.WallHits,
		s.Policy(), s.Order(),
		metrics.KineticEnergy(w.Particles()),
	)
	ebitenutil.DebugPrintAt(screen, text, 8, 8)
	ebitenutil.DebugPrintAt(screen, "[LMB] SPAWN  [SPACE] DECAY  [O] POLICY  [P] PAUSE  [R] RESET  [`] FPS  [ESC] QUIT", 8, a.Height-20)
}

// Package tui renders a headless run as plain ANSI frames while it is
// stepping, for terminals where the full live view is not wanted.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/radialsim/internal/dynamo"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is an observer that draws at most frameRate frames per
// second of wall time. Each cell covers bounds/width by bounds/height world
// units, so particles larger than a cell are drawn as filled blobs.
type LiveRenderer struct {
	out       io.Writer
	name      string
	bounds    dynamo.Bounds
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	frames    int
}

func NewLiveRenderer(out io.Writer, name string, bounds dynamo.Bounds, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		name:      name,
		bounds:    bounds,
		frameRate: frameRate,
		canvas:    canvas,
	}
}

func (r *LiveRenderer) SetBounds(b dynamo.Bounds) { r.bounds = b }

func (r *LiveRenderer) OnStep(particles []*dynamo.Particle, stats dynamo.StepStats, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()
	for _, p := range particles {
		r.drawParticle(p)
	}
	r.render(len(particles), stats, t)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) cell(p dynamo.Vec3) (int, int) {
	cx := (p.X - r.bounds.Left()) / r.bounds.Width * width
	cy := (r.bounds.Top() - p.Y) / r.bounds.Height * height
	return int(cx), int(cy)
}

func (r *LiveRenderer) drawParticle(p *dynamo.Particle) {
	x, y := r.cell(p.Position)
	rx := int(p.Radius() / r.bounds.Width * width)
	ry := int(p.Radius() / r.bounds.Height * height)
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			r.set(x+dx, y+dy, 'o')
		}
	}
	r.set(x, y, 'O')
}

func (r *LiveRenderer) render(n int, stats dynamo.StepStats, t float64) {
	r.frames++

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.name, t))
	b.WriteString("  +" + strings.Repeat("-", width) + "+\n")

	for _, row := range r.canvas {
		b.WriteString("  |")
		b.WriteString(string(row))
		b.WriteString("|\n")
	}

	b.WriteString("  +" + strings.Repeat("-", width) + "+\n")
	b.WriteString(fmt.Sprintf("  particles=%d contacts=%d coincident=%d walls=%d\n", n, stats.Contacts, stats.Degenerate, stats.WallHits))

	fmt.Fprint(r.out, b.String())
}

// Frames reports how many frames have been drawn.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

// Package export renders recorded frames as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/sim"
)

const (
	background = "#0a0a0a"
	fill       = "#00ff00"
	border     = "#303030"
)

// FrameToSVG draws every particle of f as a circle of its effective radius.
// The view box is the bounds, scale pixels per world unit, with +Y up.
// Zero bounds fall back to the particles' extent.
func FrameToSVG(f sim.Frame, bounds dynamo.Bounds, scale float64) string {
	if scale <= 0 {
		scale = 1
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = extent(f.Particles)
	}

	width := bounds.Width * scale
	height := bounds.Height * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)
	fmt.Fprintf(&sb, "<rect x=\"0.5\" y=\"0.5\" width=\"%.1f\" height=\"%.1f\" fill=\"none\" stroke=\"%s\"/>\n", width-1, height-1, border)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fill)

	for _, p := range f.Particles {
		cx := (p.Position.X - bounds.Left()) * scale
		cy := (bounds.Top() - p.Position.Y) * scale
		r := math.Max(p.Radius()*scale, 0.5)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// extent returns centered bounds covering every particle with 10% padding.
func extent(ps []dynamo.Particle) dynamo.Bounds {
	var halfW, halfH float64
	for _, p := range ps {
		halfW = math.Max(halfW, math.Abs(p.Position.X)+p.Radius())
		halfH = math.Max(halfH, math.Abs(p.Position.Y)+p.Radius())
	}
	if halfW == 0 {
		halfW = 1
	}
	if halfH == 0 {
		halfH = 1
	}
	return dynamo.Bounds{Width: 2.2 * halfW, Height: 2.2 * halfH}
}

// Trajectory collects the positions of one particle across frames. Frames
// where it is absent are skipped.
func Trajectory(frames []sim.Frame, id dynamo.ID) []dynamo.Vec3 {
	var points []dynamo.Vec3
	for _, f := range frames {
		for _, p := range f.Particles {
			if p.ID == id {
				points = append(points, p.Position)
				break
			}
		}
	}
	return points
}

// TrajectoryToSVG draws points as a polyline fitted to a width x height
// view.
func TrajectoryToSVG(points []dynamo.Vec3, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

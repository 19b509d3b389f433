package physics

import "github.com/san-kum/radialsim/internal/dynamo"

// Reflect checks every particle against the four walls of b. Each wall is
// tested independently, so a corner can flip both axes in one call. A hit
// negates the velocity axis and subtracts the penetration from the
// position; Z is pinned to zero. Returns the number of wall hits.
func Reflect(snap *dynamo.Snapshot, particles []*dynamo.Particle, b dynamo.Bounds) int {
	hits := 0
	for _, p := range particles {
		slot, ok := snap.Index(p.ID)
		if !ok {
			continue
		}
		e := snap.At(slot)
		n := reflectEntry(&e, p.Radius(), b)
		if n > 0 {
			snap.SetAt(slot, e)
			hits += n
		}
	}
	return hits
}

func reflectEntry(e *dynamo.Entry, r float64, b dynamo.Bounds) int {
	hits := 0
	pos, vel := &e.Position, &e.Velocity

	if pos.X-r <= b.Left() {
		*vel = dynamo.Vec3{X: -vel.X, Y: vel.Y}
		*pos = dynamo.Vec3{X: pos.X - (pos.X - r - b.Left()), Y: pos.Y}
		hits++
	}
	if pos.X+r >= b.Right() {
		*vel = dynamo.Vec3{X: -vel.X, Y: vel.Y}
		*pos = dynamo.Vec3{X: pos.X - (pos.X + r - b.Right()), Y: pos.Y}
		hits++
	}
	if pos.Y-r <= b.Bottom() {
		*vel = dynamo.Vec3{X: vel.X, Y: -vel.Y}
		*pos = dynamo.Vec3{X: pos.X, Y: pos.Y - (pos.Y - r - b.Bottom())}
		hits++
	}
	if pos.Y+r >= b.Top() {
		*vel = dynamo.Vec3{X: vel.X, Y: -vel.Y}
		*pos = dynamo.Vec3{X: pos.X, Y: pos.Y - (pos.Y + r - b.Top())}
		hits++
	}

	return hits
}

package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/radialsim/internal/dynamo"
)

func particle(id dynamo.ID, x, y, vx, vy, r float64) *dynamo.Particle {
	return &dynamo.Particle{
		ID:         id,
		Position:   dynamo.Vec3{X: x, Y: y},
		Velocity:   dynamo.Vec3{X: vx, Y: vy},
		BaseRadius: r,
		Scale:      1,
	}
}

func snapshotOf(particles ...*dynamo.Particle) *dynamo.Snapshot {
	snap := dynamo.NewSnapshot(len(particles))
	for _, p := range particles {
		snap.Put(p.ID, dynamo.Entry{Position: p.Position, Velocity: p.Velocity})
	}
	return snap
}

func entry(t *testing.T, snap *dynamo.Snapshot, id dynamo.ID) dynamo.Entry {
	t.Helper()
	e, ok := snap.Get(id)
	if !ok {
		t.Fatalf("no snapshot entry for %d", id)
	}
	return e
}

func TestResolve_SwapVelocities(t *testing.T) {
	a := particle(1, 0, 0, 1, 0, 1)
	b := particle(2, 1.5, 0, -2, 3, 1)
	snap := snapshotOf(a, b)

	r := NewResolver(PolicySwap, rand.New(rand.NewSource(1)))
	c := r.Resolve(snap, []*dynamo.Particle{a, b})

	if c.Pairs != 1 || c.Degenerate != 0 {
		t.Fatalf("expected 1 regular contact, got %+v", c)
	}

	ea, eb := entry(t, snap, 1), entry(t, snap, 2)
	if ea.Velocity != b.Velocity {
		t.Errorf("a velocity = %v, want %v", ea.Velocity, b.Velocity)
	}
	if eb.Velocity != a.Velocity {
		t.Errorf("b velocity = %v, want %v", eb.Velocity, a.Velocity)
	}
	if math.Abs(ea.Velocity.Norm()-b.Speed()) > 1e-12 || math.Abs(eb.Velocity.Norm()-a.Speed()) > 1e-12 {
		t.Error("swap should exchange speeds")
	}

	d := ea.Position.Distance(eb.Position)
	if d < 2-1e-12 {
		t.Errorf("pair still overlapping after resolution: distance %v", d)
	}
}

func TestResolve_RedirectKeepsOwnSpeed(t *testing.T) {
	a := particle(1, 0, 0, 3, 4, 1)
	b := particle(2, 1, 0, -1, 0, 1)
	snap := snapshotOf(a, b)

	r := NewResolver(PolicyRedirect, nil)
	r.Resolve(snap, []*dynamo.Particle{a, b})

	ea, eb := entry(t, snap, 1), entry(t, snap, 2)
	if math.Abs(ea.Velocity.Norm()-5) > 1e-12 {
		t.Errorf("a speed = %v, want 5", ea.Velocity.Norm())
	}
	if math.Abs(eb.Velocity.Norm()-1) > 1e-12 {
		t.Errorf("b speed = %v, want 1", eb.Velocity.Norm())
	}
	if ea.Velocity.X >= 0 {
		t.Errorf("a should head away from b (negative x), got %v", ea.Velocity)
	}
	if eb.Velocity.X <= 0 {
		t.Errorf("b should head away from a (positive x), got %v", eb.Velocity)
	}
	if math.Abs(ea.Velocity.Y) > 1e-12 || math.Abs(eb.Velocity.Y) > 1e-12 {
		t.Error("redirect should follow the contact normal")
	}
}

func TestResolve_NoOverlap(t *testing.T) {
	a := particle(1, 0, 0, 1, 0, 1)
	b := particle(2, 5, 0, -1, 0, 1)
	snap := snapshotOf(a, b)

	c := NewResolver(PolicySwap, nil).Resolve(snap, []*dynamo.Particle{a, b})
	if c.Pairs != 0 {
		t.Errorf("expected no contacts, got %d", c.Pairs)
	}
	if e := entry(t, snap, 1); e.Position != a.Position || e.Velocity != a.Velocity {
		t.Errorf("a changed without contact: %+v", e)
	}
}

func TestResolve_TouchingCountsAsContact(t *testing.T) {
	a := particle(1, 0, 0, 1, 0, 1)
	b := particle(2, 2, 0, -1, 0, 1)
	snap := snapshotOf(a, b)

	c := NewResolver(PolicySwap, nil).Resolve(snap, []*dynamo.Particle{a, b})
	if c.Pairs != 1 {
		t.Fatalf("touching circles should resolve, got %d contacts", c.Pairs)
	}
	ea := entry(t, snap, 1)
	if ea.Position != a.Position {
		t.Errorf("zero depth should not move a: %v", ea.Position)
	}
	if ea.Velocity.X != -1 {
		t.Errorf("a velocity.x = %v, want -1", ea.Velocity.X)
	}
}

func TestResolve_Degenerate(t *testing.T) {
	negative := false
	for seed := int64(0); seed < 20; seed++ {
		a := particle(1, 3, -2, 0, 0, 1)
		b := particle(2, 3, -2, 0, 0, 2)
		snap := snapshotOf(a, b)

		c := NewResolver(PolicySwap, rand.New(rand.NewSource(seed))).Resolve(snap, []*dynamo.Particle{a, b})
		if c.Degenerate != 1 {
			t.Fatalf("seed %d: expected a degenerate contact, got %+v", seed, c)
		}

		ea, eb := entry(t, snap, 1), entry(t, snap, 2)
		da := a.Position.Sub(ea.Position).Scale(1.0 / 3)
		db := b.Position.Sub(eb.Position).Scale(1.0 / 3)

		if math.Abs(da.Norm()-1) > 1e-9 || math.Abs(db.Norm()-1) > 1e-9 {
			t.Errorf("seed %d: escape directions not unit length: %v %v", seed, da, db)
		}
		if da.Sub(db).Norm() < 1e-9 {
			t.Errorf("seed %d: escape directions identical: %v", seed, da)
		}
		if cos := da.Dot(db); cos > minEscapeSeparation+1e-9 {
			t.Errorf("seed %d: escape directions %v and %v are closer than 60 degrees", seed, da, db)
		}
		if da.X < 0 || da.Y < 0 || db.X < 0 || db.Y < 0 {
			negative = true
		}
		if ea.Position.Z != 0 || eb.Position.Z != 0 {
			t.Errorf("seed %d: escape left the plane", seed)
		}
		if d := ea.Position.Distance(eb.Position); d < 3-1e-9 {
			t.Errorf("seed %d: coincident pair separated to %v, want >= 3", seed, d)
		}
	}
	if !negative {
		t.Error("escape directions never left the positive quadrant")
	}
}

func TestResolve_OrderDependent(t *testing.T) {
	build := func() (*dynamo.Particle, *dynamo.Particle, *dynamo.Particle) {
		return particle(1, 0, 0, 0, 0, 1), particle(2, 1.5, 0, 0, 0, 1), particle(3, 3, 0, 0, 0, 1)
	}

	tests := []struct {
		name    string
		order   func(a, b, c *dynamo.Particle) []*dynamo.Particle
		a, b, c float64
	}{
		{"forward", func(a, b, c *dynamo.Particle) []*dynamo.Particle { return []*dynamo.Particle{a, b, c} }, -0.5, 1.0, 4.0},
		{"reverse", func(a, b, c *dynamo.Particle) []*dynamo.Particle { return []*dynamo.Particle{c, b, a} }, -1.0, 2.0, 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, c := build()
			snap := snapshotOf(a, b, c)
			NewResolver(PolicySwap, nil).Resolve(snap, tt.order(a, b, c))

			got := []float64{entry(t, snap, 1).Position.X, entry(t, snap, 2).Position.X, entry(t, snap, 3).Position.X}
			want := []float64{tt.a, tt.b, tt.c}
			for i := range want {
				if math.Abs(got[i]-want[i]) > 1e-12 {
					t.Errorf("particle %d x = %v, want %v", i+1, got[i], want[i])
				}
			}
		})
	}
}

func TestResolve_UsesScaledRadius(t *testing.T) {
	a := particle(1, 0, 0, 0, 0, 0.5)
	b := particle(2, 3, 0, 0, 0, 0.5)
	a.Scale, b.Scale = 4, 4

	snap := snapshotOf(a, b)
	c := NewResolver(PolicySwap, nil).Resolve(snap, []*dynamo.Particle{a, b})
	if c.Pairs != 1 {
		t.Fatalf("scaled radii 2+2 should overlap at distance 3, got %d contacts", c.Pairs)
	}

	a.Scale, b.Scale = 1, 1
	snap = snapshotOf(a, b)
	c = NewResolver(PolicySwap, nil).Resolve(snap, []*dynamo.Particle{a, b})
	if c.Pairs != 0 {
		t.Errorf("unscaled radii should not overlap, got %d contacts", c.Pairs)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		want    Policy
		wantErr bool
	}{
		{"swap", PolicySwap, false},
		{"Redirect", PolicyRedirect, false},
		{"", PolicySwap, false},
		{"bounce", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if PolicySwap.Next() != PolicyRedirect || PolicyRedirect.Next() != PolicySwap {
		t.Error("Next should cycle between policies")
	}
}

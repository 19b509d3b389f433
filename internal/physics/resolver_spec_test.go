package physics

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/radialsim/internal/dynamo"
)

var _ = Describe("Resolver", func() {
	var (
		a, b     *dynamo.Particle
		snap     *dynamo.Snapshot
		resolver *Resolver
	)

	BeforeEach(func() {
		a = &dynamo.Particle{ID: 1, Position: dynamo.Vec3{X: -0.5}, Velocity: dynamo.Vec3{X: 10, Y: 2}, BaseRadius: 0.5, Scale: 2}
		b = &dynamo.Particle{ID: 2, Position: dynamo.Vec3{X: 0.5}, Velocity: dynamo.Vec3{X: -4}, BaseRadius: 0.5, Scale: 2}
		snap = dynamo.NewSnapshot(2)
		snap.Put(a.ID, dynamo.Entry{Position: a.Position, Velocity: a.Velocity})
		snap.Put(b.ID, dynamo.Entry{Position: b.Position, Velocity: b.Velocity})
	})

	get := func(id dynamo.ID) dynamo.Entry {
		e, ok := snap.Get(id)
		Expect(ok).To(BeTrue())
		return e
	}

	Context("with the swap policy", func() {
		BeforeEach(func() {
			resolver = NewResolver(PolicySwap, rand.New(rand.NewSource(7)))
		})

		It("exchanges velocities and speeds", func() {
			c := resolver.Resolve(snap, []*dynamo.Particle{a, b})
			Expect(c.Pairs).To(Equal(1))
			Expect(get(a.ID).Velocity).To(Equal(b.Velocity))
			Expect(get(b.ID).Velocity).To(Equal(a.Velocity))
		})

		It("separates the pair to at least the radius sum", func() {
			resolver.Resolve(snap, []*dynamo.Particle{a, b})
			d := get(a.ID).Position.Distance(get(b.ID).Position)
			Expect(d).To(BeNumerically(">=", a.Radius()+b.Radius()-1e-12))
		})

		It("pushes each particle along the contact normal only", func() {
			resolver.Resolve(snap, []*dynamo.Particle{a, b})
			Expect(get(a.ID).Position.Y).To(BeNumerically("~", 0, 1e-12))
			Expect(get(a.ID).Position.X).To(BeNumerically("~", -1.5, 1e-12))
			Expect(get(b.ID).Position.X).To(BeNumerically("~", 1.5, 1e-12))
		})
	})

	Context("with the redirect policy", func() {
		BeforeEach(func() {
			resolver = NewResolver(PolicyRedirect, nil)
		})

		It("keeps each particle's own speed", func() {
			resolver.Resolve(snap, []*dynamo.Particle{a, b})
			Expect(get(a.ID).Velocity.Norm()).To(BeNumerically("~", a.Speed(), 1e-12))
			Expect(get(b.ID).Velocity.Norm()).To(BeNumerically("~", b.Speed(), 1e-12))
		})

		It("sends both particles apart", func() {
			resolver.Resolve(snap, []*dynamo.Particle{a, b})
			Expect(get(a.ID).Velocity.X).To(BeNumerically("<", 0))
			Expect(get(b.ID).Velocity.X).To(BeNumerically(">", 0))
		})
	})

	Context("when centers coincide", func() {
		BeforeEach(func() {
			snap.Set(b.ID, dynamo.Entry{Position: a.Position, Velocity: b.Velocity})
			resolver = NewResolver(PolicySwap, rand.New(rand.NewSource(42)))
		})

		It("escapes along two different unit directions", func() {
			c := resolver.Resolve(snap, []*dynamo.Particle{a, b})
			Expect(c.Degenerate).To(Equal(1))

			rSum := a.Radius() + b.Radius()
			da := a.Position.Sub(get(a.ID).Position).Scale(1 / rSum)
			db := a.Position.Sub(get(b.ID).Position).Scale(1 / rSum)

			Expect(da.Norm()).To(BeNumerically("~", 1, 1e-9))
			Expect(db.Norm()).To(BeNumerically("~", 1, 1e-9))
			Expect(da.Sub(db).Norm()).To(BeNumerically(">", 1e-9))
		})

		It("never produces NaN", func() {
			resolver.Resolve(snap, []*dynamo.Particle{a, b})
			Expect(get(a.ID).Position.IsValid()).To(BeTrue())
			Expect(get(b.ID).Position.IsValid()).To(BeTrue())
		})
	})
})

var _ = Describe("Reflect", func() {
	It("flips both axes in a corner", func() {
		p := &dynamo.Particle{ID: 1, Position: dynamo.Vec3{X: -9.5, Y: 9.5}, Velocity: dynamo.Vec3{X: -1, Y: 1}, BaseRadius: 1, Scale: 1}
		snap := dynamo.NewSnapshot(1)
		snap.Put(p.ID, dynamo.Entry{Position: p.Position, Velocity: p.Velocity})

		hits := Reflect(snap, []*dynamo.Particle{p}, dynamo.Bounds{Width: 20, Height: 20})
		Expect(hits).To(Equal(2))

		e, _ := snap.Get(p.ID)
		Expect(e.Velocity).To(Equal(dynamo.Vec3{X: 1, Y: -1}))
		Expect(e.Position.X).To(BeNumerically("~", -9, 1e-12))
		Expect(e.Position.Y).To(BeNumerically("~", 9, 1e-12))
	})
})

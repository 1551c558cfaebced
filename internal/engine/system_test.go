package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigid2d/internal/body"
	"github.com/san-kum/rigid2d/internal/engine"
)

func mustCircle(x, y, vx, vy, m, r, k float64) *body.Body {
	b, err := body.NewCircle(x, y, vx, vy, m, r, k)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func mustRect(x, y, w, h, angle float64) *body.Body {
	b, err := body.NewFixedRect(x, y, w, h, angle)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func mustMass(x, y, vx, vy, m float64) *body.Body {
	b, err := body.NewMass(x, y, vx, vy, m)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func newSystem(g float64, bodies ...*body.Body) *engine.System {
	sys := engine.New(g)
	for _, b := range bodies {
		Expect(sys.Add(b)).To(Succeed())
	}
	return sys
}

// forces runs gravity and collisions without integrating so the
// accumulated accelerations can be inspected.
func forces(sys *engine.System) []body.Snapshot {
	sys.GravityAll()
	sys.CollisionAll()
	return sys.Snapshot()
}

var _ = Describe("System", func() {
	Describe("integration", func() {
		It("follows the semi-implicit Euler recurrence under gravity", func() {
			const (
				g  = 10.0
				dt = 0.03
				n  = 200
			)
			sys := newSystem(g, mustCircle(0, 1000, 0, 0, 3, 1, 0))

			p, v := 1000.0, 0.0
			for k := 0; k < n; k++ {
				sys.Step(dt)
				v -= g * dt
				p += v * dt

				s := sys.Snapshot()[0]
				Expect(s.VY).To(BeNumerically("~", v, 1e-9))
				Expect(s.Y).To(BeNumerically("~", p, 1e-9))
				Expect(s.X).To(BeNumerically("==", 0))
			}
			Expect(sys.Snapshot()[0].VY).To(BeNumerically("~", -g*n*dt, 1e-9))
		})

		It("clears accumulated acceleration after every step", func() {
			sys := newSystem(10, mustCircle(0, 0, 0, 0, 1, 1, 0))
			sys.Step(0.01)
			s := sys.Snapshot()[0]
			Expect(s.AX).To(BeNumerically("==", 0))
			Expect(s.AY).To(BeNumerically("==", 0))
		})

		It("moves free masses but never fixed rectangles", func() {
			m := mustMass(0, 5, 1, 0, 2)
			r := mustRect(-1, -1, 2, 2, 0.4)
			sys := newSystem(10, m, r)
			before := sys.Snapshot()[1]
			for i := 0; i < 20; i++ {
				sys.Step(0.05)
			}
			after := sys.Snapshot()
			Expect(after[0].X).To(BeNumerically("~", 1.0, 1e-9))
			Expect(after[0].Y).To(BeNumerically("<", 5))
			Expect(after[1]).To(Equal(before))
		})

		It("refreshes circle bounding boxes as they move", func() {
			sys := newSystem(0, mustCircle(0, 0, 2, 0, 1, 3, 0))
			sys.Step(0.5)
			Expect(sys.Snapshot()[0].Box).To(Equal(body.Box{MinX: -2, MinY: -3, MaxX: 4, MaxY: 3}))
		})
	})

	Describe("circle against circle", func() {
		It("applies equal and opposite penalty forces proportional to overlap", func() {
			a := mustCircle(0, 0, 0, 0, 2, 1, 100)
			b := mustCircle(1.5, 0, 0, 0, 4, 1, 300)
			sys := newSystem(0, a, b)

			snap := forces(sys)
			k := (100.0 + 300.0) / 2
			D, S := 1.5, 2.0
			// (c2-c1)·k(D-S)/D, magnitude k(S-D), pointing from b towards a
			fx := 1.5 * k * (D - S) / D
			Expect(fx).To(BeNumerically("~", -100, 1e-12))

			Expect(snap[0].AX * snap[0].Mass).To(BeNumerically("~", fx, 1e-9))
			Expect(snap[1].AX * snap[1].Mass).To(BeNumerically("~", -fx, 1e-9))
			Expect(snap[0].AY).To(BeNumerically("~", 0, 1e-12))
			Expect(sys.Stats().Contacts).To(Equal(1))
		})

		It("applies nothing when the centres are farther apart than the radii", func() {
			sys := newSystem(0,
				mustCircle(0, 0, 0, 0, 1, 1, 100),
				mustCircle(1.5, 1.5, 0, 0, 1, 1, 100),
			)
			snap := forces(sys)
			Expect(sys.Stats().Candidates).To(Equal(1))
			Expect(sys.Stats().Contacts).To(Equal(0))
			for _, s := range snap {
				Expect(s.AX).To(BeNumerically("==", 0))
				Expect(s.AY).To(BeNumerically("==", 0))
			}
		})

		It("treats exactly touching circles as a zero-force contact", func() {
			sys := newSystem(0,
				mustCircle(0, 0, 0, 0, 1, 1, 100),
				mustCircle(2, 0, 0, 0, 1, 1, 100),
			)
			snap := forces(sys)
			Expect(sys.Stats().Contacts).To(Equal(1))
			Expect(snap[0].AX).To(BeNumerically("==", 0))
		})

		It("skips coincident centres and keeps processing other pairs", func() {
			sys := newSystem(0,
				mustCircle(0, 0, 0, 0, 1, 1, 100),
				mustCircle(0, 0, 0, 0, 1, 1, 100),
				mustCircle(1.5, 0, 0, 0, 1, 1, 100),
			)
			snap := forces(sys)
			Expect(sys.Stats().Degenerate).To(Equal(1))
			Expect(sys.Stats().Contacts).To(Equal(2))
			for _, s := range snap {
				Expect(math.IsNaN(s.AX) || math.IsNaN(s.AY)).To(BeFalse())
			}
			Expect(snap[0].AX).To(BeNumerically("~", -50, 1e-9))
			Expect(snap[1].AX).To(BeNumerically("~", -50, 1e-9))
			Expect(snap[2].AX).To(BeNumerically("~", 100, 1e-9))
		})
	})

	Describe("circle against fixed rectangle", func() {
		const k = 1000.0

		It("pushes the circle out along the rectangle x axis", func() {
			sys := newSystem(0,
				mustRect(0, 0, 10, 10, 0),
				mustCircle(-4, 5, 0, 0, 1, 5, k),
			)
			snap := forces(sys)
			Expect(snap[1].AX).To(BeNumerically("~", -k, 1e-9))
			Expect(snap[1].AY).To(BeNumerically("~", 0, 1e-9))
			Expect(snap[0].AX).To(BeNumerically("==", 0))
		})

		It("resolves along the local axis of a rotated rectangle", func() {
			theta := 0.3
			ex := []float64{math.Cos(theta), math.Sin(theta)}
			ey := []float64{-math.Sin(theta), math.Cos(theta)}
			// local coordinates (-4, 5): one unit of overlap past the left edge
			cx := -4*ex[0] + 5*ey[0]
			cy := -4*ex[1] + 5*ey[1]

			sys := newSystem(0,
				mustCircle(cx, cy, 0, 0, 2, 5, k),
				mustRect(0, 0, 10, 10, theta),
			)
			snap := forces(sys)
			fx, fy := snap[0].AX*snap[0].Mass, snap[0].AY*snap[0].Mass
			Expect(math.Hypot(fx, fy)).To(BeNumerically("~", k, 1e-6))
			Expect(fx).To(BeNumerically("~", -k*ex[0], 1e-6))
			Expect(fy).To(BeNumerically("~", -k*ex[1], 1e-6))
		})

		It("pushes upward off a floor", func() {
			sys := newSystem(0,
				mustRect(-50, -10, 100, 10, 0),
				mustCircle(0, 9.5, 0, 0, 1, 10, k),
			)
			snap := forces(sys)
			Expect(snap[1].AY).To(BeNumerically("~", 0.5*k, 1e-9))
			Expect(snap[1].AX).To(BeNumerically("~", 0, 1e-9))
		})

		It("ignores circles whose bounding box is clear of the rectangle", func() {
			sys := newSystem(0,
				mustRect(0, 0, 10, 10, 0),
				mustCircle(20, 5, 0, 0, 1, 5, k),
			)
			snap := forces(sys)
			Expect(sys.Stats().Candidates).To(Equal(0))
			Expect(snap[1].AX).To(BeNumerically("==", 0))
		})

		It("separates on the corner axis when only the boxes overlap", func() {
			sys := newSystem(0,
				mustRect(0, 0, 10, 10, 0),
				mustCircle(-3, -3, 0, 0, 1, 4, k),
			)
			snap := forces(sys)
			Expect(sys.Stats().Candidates).To(Equal(1))
			Expect(sys.Stats().Contacts).To(Equal(0))
			Expect(snap[1].AX).To(BeNumerically("==", 0))
			Expect(snap[1].AY).To(BeNumerically("==", 0))
		})

		It("still resolves when the circle centre sits on a vertex", func() {
			sys := newSystem(0,
				mustRect(0, 0, 10, 10, 0),
				mustCircle(0, 0, 0, 0, 1, 2, k),
			)
			snap := forces(sys)
			Expect(sys.Stats().Degenerate).To(Equal(1))
			Expect(sys.Stats().Contacts).To(Equal(1))
			Expect(math.Hypot(snap[1].AX, snap[1].AY)).To(BeNumerically("~", 2*k, 1e-9))
		})
	})

	Describe("pairs without a collision rule", func() {
		It("leaves overlapping rectangles alone", func() {
			sys := newSystem(0, mustRect(0, 0, 10, 10, 0), mustRect(5, 5, 10, 10, 0.2))
			forces(sys)
			Expect(sys.Stats().Candidates).To(Equal(1))
			Expect(sys.Stats().Unhandled).To(Equal(1))
			Expect(sys.Stats().Contacts).To(Equal(0))
		})

		It("leaves a free mass inside a circle alone", func() {
			sys := newSystem(0,
				mustMass(0.5, 0, 0, 0, 1),
				mustCircle(0, 0, 0, 0, 1, 1, 1000),
				mustMass(0.5, 0, 0, 0, 1),
			)
			snap := forces(sys)
			Expect(sys.Stats().Unhandled).To(Equal(3))
			for _, s := range snap {
				Expect(s.AX).To(BeNumerically("==", 0))
				Expect(s.AY).To(BeNumerically("==", 0))
			}
		})
	})

	Describe("ids", func() {
		It("are strictly increasing across systems sharing an allocator", func() {
			ids := body.NewIDAllocator()
			s1 := engine.New(10, engine.WithIDAllocator(ids))
			s2 := engine.New(10, engine.WithIDAllocator(ids))

			var last uint64
			for i := 0; i < 10; i++ {
				b := mustCircle(float64(i), 0, 0, 0, 1, 1, 0)
				target := s1
				if i%2 == 1 {
					target = s2
				}
				Expect(target.Add(b)).To(Succeed())
				Expect(b.ID()).To(BeNumerically(">", last))
				last = b.ID()
			}
		})

		It("rejects a body already owned by a system", func() {
			b := mustCircle(0, 0, 0, 0, 1, 1, 0)
			s1 := newSystem(10, b)
			s2 := engine.New(10)
			Expect(s1.Add(b)).To(MatchError(body.ErrAlreadyOwned))
			Expect(s2.Add(b)).To(MatchError(body.ErrAlreadyOwned))
			Expect(s1.Len()).To(Equal(1))
			Expect(s2.Len()).To(Equal(0))
		})
	})

	Describe("energy", func() {
		It("sums kinetic and gravitational potential energy of movable bodies", func() {
			sys := newSystem(10,
				mustCircle(0, 5, 3, 4, 2, 1, 0),
				mustRect(0, 100, 10, 10, 0),
			)
			Expect(sys.TotalEnergy()).To(BeNumerically("~", 125, 1e-9))
		})
	})

	Describe("parallel collision phase", func() {
		build := func(opts ...engine.Option) *engine.System {
			sys := engine.New(10, opts...)
			Expect(sys.Add(mustRect(-10, -10, 100, 10, 0))).To(Succeed())
			for i := 0; i < 48; i++ {
				x := float64(i%8) * 1.7
				y := float64(i/8)*1.7 + 0.5
				Expect(sys.Add(mustCircle(x, y, 0, 0, 1, 1, 500))).To(Succeed())
			}
			return sys
		}

		It("accumulates the same forces as the sequential loop", func() {
			serial := build()
			parallel := build(engine.WithWorkers(4))

			a := forces(serial)
			b := forces(parallel)
			Expect(parallel.Stats()).To(Equal(serial.Stats()))
			Expect(serial.Stats().Contacts).To(BeNumerically(">", 0))
			for i := range a {
				Expect(b[i].AX).To(BeNumerically("~", a[i].AX, 1e-9))
				Expect(b[i].AY).To(BeNumerically("~", a[i].AY, 1e-9))
			}
		})
	})
})

package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigid2d/internal/engine"
)

var _ = Describe("a circle on a floor", func() {
	const (
		g      = 10.0
		dt     = 0.03
		mass   = 100.0
		radius = 10.0
		k      = 50000.0
	)

	var sys *engine.System

	setup := func(y float64) {
		sys = engine.New(g)
		Expect(sys.Add(mustCircle(0, y, 0, 0, mass, radius, k))).To(Succeed())
		// top edge at y = 0
		Expect(sys.Add(mustRect(-500, -10, 1000, 10, 0))).To(Succeed())
	}

	It("rests at the spring equilibrium depth m·g/k", func() {
		setup(radius)
		e0 := sys.TotalEnergy()

		const steps = 2000
		depth := 0.0
		for i := 0; i < steps; i++ {
			sys.Step(dt)
			s := sys.Snapshot()[0]
			depth += radius - s.Y

			Expect(s.VY).To(BeNumerically("<", 1))
			Expect(s.VY).To(BeNumerically(">", -1))
			Expect(s.X).To(BeNumerically("~", 0, 1e-9))
			Expect(sys.TotalEnergy()).To(BeNumerically("~", e0, 0.01*e0))
		}
		Expect(depth / steps).To(BeNumerically("~", mass*g/k, 0.05*mass*g/k))
	})

	It("bounces off without tunnelling or gaining energy", func() {
		setup(50)
		e0 := sys.TotalEnergy()

		minY, maxE := 50.0, e0
		for i := 0; i < 500; i++ {
			sys.Step(dt)
			minY = min(minY, sys.Snapshot()[0].Y)
			maxE = max(maxE, sys.TotalEnergy())
			Expect(sys.Finite()).To(BeTrue())
		}
		Expect(minY).To(BeNumerically("<", radius))
		Expect(minY).To(BeNumerically(">", radius-2))
		Expect(maxE).To(BeNumerically("<", 1.2*e0))
	})
})

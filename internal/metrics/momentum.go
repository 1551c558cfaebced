package metrics

import (
	"math"

	"github.com/san-kum/rigid2d/internal/body"
	"github.com/san-kum/rigid2d/internal/sim"
)

// Momentum averages Σ m·|v| over the steps of a run.
type Momentum struct {
	name    string
	sum     float64
	samples int
}

func NewMomentum() *Momentum {
	return &Momentum{
		name: "momentum",
	}
}

func (m *Momentum) Name() string {
	return m.name
}

func (m *Momentum) Observe(t, energy float64, bodies []body.Snapshot) {
	for _, b := range bodies {
		if !b.Movable() {
			continue
		}
		m.sum += b.Mass * math.Hypot(b.VX, b.VY)
	}
	m.samples++
}

func (m *Momentum) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Momentum) Reset() {
	m.sum = 0
	m.samples = 0
}

// Standard returns the metrics the CLI attaches to every run.
func Standard(speedThreshold float64) []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergySpread(),
		NewEnergyDrift(),
		NewMomentum(),
		NewPeakSpeed(),
		NewStability(speedThreshold),
	}
}

package metrics

import (
	"math"

	"github.com/san-kum/rigid2d/internal/body"
	"gonum.org/v1/gonum/stat"
)

// Energy reports the mean total mechanical energy over a run.
type Energy struct {
	name    string
	samples []float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(t, energy float64, bodies []body.Snapshot) {
	e.samples = append(e.samples, energy)
}

func (e *Energy) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return stat.Mean(e.samples, nil)
}

func (e *Energy) Reset() {
	e.samples = e.samples[:0]
}

// EnergySpread is the standard deviation of the energy series. A penalty
// scene at rest keeps it small.
type EnergySpread struct {
	name    string
	samples []float64
}

func NewEnergySpread() *EnergySpread {
	return &EnergySpread{name: "energy_spread"}
}

func (e *EnergySpread) Name() string { return e.name }

func (e *EnergySpread) Observe(t, energy float64, bodies []body.Snapshot) {
	e.samples = append(e.samples, energy)
}

func (e *EnergySpread) Value() float64 {
	if len(e.samples) < 2 {
		return 0
	}
	return stat.StdDev(e.samples, nil)
}

func (e *EnergySpread) Reset() {
	e.samples = e.samples[:0]
}

// EnergyDrift is the largest relative departure from the first observed
// energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t, energy float64, bodies []body.Snapshot) {
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

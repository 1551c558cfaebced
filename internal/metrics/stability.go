package metrics

import (
	"math"

	"github.com/san-kum/rigid2d/internal/body"
)

// Stability is the fraction of steps in which no movable body moved faster
// than threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t, energy float64, bodies []body.Snapshot) {
	s.samples++
	if MaxSpeed(bodies) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakSpeed records the fastest body speed seen during a run.
type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(t, energy float64, bodies []body.Snapshot) {
	p.peak = math.Max(p.peak, MaxSpeed(bodies))
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }

// MaxSpeed returns the largest |v| among the movable bodies.
func MaxSpeed(bodies []body.Snapshot) float64 {
	peak := 0.0
	for _, b := range bodies {
		if !b.Movable() {
			continue
		}
		peak = math.Max(peak, math.Hypot(b.VX, b.VY))
	}
	return peak
}

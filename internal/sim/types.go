package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/rigid2d/internal/body"
)

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(t, energy float64, bodies []body.Snapshot)
	Value() float64
	Reset()
}

// Observer is notified after every completed step. The snapshot belongs to
// the observer.
type Observer interface {
	OnStep(step int, t float64, bodies []body.Snapshot)
}

type Config struct {
	Dt       float64
	Duration float64
	// Pace is the wall-clock delay between steps; zero runs flat out.
	Pace time.Duration
	// RecordEvery keeps a body frame every n steps; zero records none.
	RecordEvery int
	// ProgressEvery logs progress every n steps; zero disables it.
	ProgressEvery int
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.03,
		Duration: 30,
	}
}

// Frame is the state of every body after a step.
type Frame struct {
	Step   int
	Time   float64
	Bodies []body.Snapshot
}

type Result struct {
	Times       []float64
	Energy      []float64
	Frames      []Frame
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Elapsed     time.Duration
}

// StepError reports the step at which a run stopped.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/rigid2d/internal/engine"
)

var (
	// ErrInvalidConfig indicates a non-positive step or duration.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")

	// ErrDiverged indicates a body state became NaN or infinite.
	ErrDiverged = errors.New("sim: state diverged (NaN or Inf)")
)

// Driver repeatedly steps a System with a fixed dt. It is the only caller of
// System.Step during a run, so ticks never overlap.
type Driver struct {
	sys       *engine.System
	metrics   []Metric
	observers []Observer
	log       *slog.Logger
}

func New(sys *engine.System) *Driver {
	return &Driver{
		sys:       sys,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (d *Driver) AddMetric(m Metric)       { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer)   { d.observers = append(d.observers, o) }
func (d *Driver) SetLogger(l *slog.Logger) { d.log = l }
func (d *Driver) System() *engine.System   { return d.sys }

func (d *Driver) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Energy:  make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range d.metrics {
		m.Reset()
	}

	start := time.Now()
	t := 0.0
	initialEnergy := d.sys.TotalEnergy()
	result.Times = append(result.Times, t)
	result.Energy = append(result.Energy, initialEnergy)
	if cfg.RecordEvery > 0 {
		result.Frames = append(result.Frames, Frame{Step: 0, Time: t, Bodies: d.sys.Snapshot()})
	}

	d.log.Info("run started", "bodies", d.sys.Len(), "dt", cfg.Dt, "steps", steps)

	var runErr error
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		d.sys.Step(cfg.Dt)
		t = float64(i) * cfg.Dt

		if !d.sys.Finite() {
			runErr = &StepError{Step: i, Time: t, Wrapped: ErrDiverged}
			break
		}

		result.StepsTaken++
		energy := d.sys.TotalEnergy()
		result.Times = append(result.Times, t)
		result.Energy = append(result.Energy, energy)

		needSnapshot := len(d.metrics) > 0 || len(d.observers) > 0 ||
			(cfg.RecordEvery > 0 && i%cfg.RecordEvery == 0)
		if needSnapshot {
			bodies := d.sys.Snapshot()
			for _, m := range d.metrics {
				m.Observe(t, energy, bodies)
			}
			for _, obs := range d.observers {
				obs.OnStep(i, t, bodies)
			}
			if cfg.RecordEvery > 0 && i%cfg.RecordEvery == 0 {
				result.Frames = append(result.Frames, Frame{Step: i, Time: t, Bodies: bodies})
			}
		}

		if cfg.ProgressEvery > 0 && i%cfg.ProgressEvery == 0 {
			st := d.sys.Stats()
			d.log.Debug("progress", "step", i, "t", t, "energy", energy, "contacts", st.Contacts, "degenerate", st.Degenerate)
		}

		if cfg.Pace > 0 {
			if err := sleep(ctx, cfg.Pace); err != nil {
				runErr = err
				break
			}
		}
	}

	finalEnergy := d.sys.TotalEnergy()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)

	if runErr != nil {
		d.log.Warn("run stopped", "steps", result.StepsTaken, "err", runErr)
		return result, runErr
	}
	d.log.Info("run finished", "steps", result.StepsTaken, "elapsed", result.Elapsed, "energy_drift", result.EnergyDrift)
	return result, nil
}

// RunWithCallback steps until the duration is reached, the context ends or
// fn returns false. fn sees the system after each step.
func (d *Driver) RunWithCallback(ctx context.Context, cfg Config, fn func(step int, t float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d.sys.Step(cfg.Dt)
		t := float64(i) * cfg.Dt
		if !d.sys.Finite() {
			return &StepError{Step: i, Time: t, Wrapped: ErrDiverged}
		}
		if !fn(i, t) {
			return nil
		}
		if cfg.Pace > 0 {
			if err := sleep(ctx, cfg.Pace); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.RecordEvery < 0 || cfg.ProgressEvery < 0 {
		return fmt.Errorf("%w: intervals must not be negative", ErrInvalidConfig)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

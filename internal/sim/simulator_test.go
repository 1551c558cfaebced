package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/rigid2d/internal/body"
	"github.com/san-kum/rigid2d/internal/engine"
)

func fallingSystem(t *testing.T) *engine.System {
	t.Helper()
	sys := engine.New(10)
	c, err := body.NewCircle(0, 100, 0, 0, 1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := sys.Add(c); err != nil {
		t.Fatal(err)
	}
	return sys
}

func TestDriverRun(t *testing.T) {
	d := New(fallingSystem(t))

	result, err := d.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, RecordEvery: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 11 || len(result.Energy) != 11 {
		t.Errorf("expected 11 samples, got %d times and %d energies", len(result.Times), len(result.Energy))
	}
	if len(result.Frames) != 3 {
		t.Errorf("expected frames at steps 0, 5, 10, got %d", len(result.Frames))
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %f", result.Times[10])
	}

	final := result.Frames[len(result.Frames)-1].Bodies[0]
	if math.Abs(final.VY+10) > 1e-9 {
		t.Errorf("expected vy -10 after 1s, got %f", final.VY)
	}
}

func TestDriverInvalidConfig(t *testing.T) {
	d := New(fallingSystem(t))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"NaN dt", Config{Dt: math.NaN(), Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative record interval", Config{Dt: 0.1, Duration: 1, RecordEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type countMetric struct {
	count int
	sum   float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(t, energy float64, bodies []body.Snapshot) {
	c.count++
	c.sum += bodies[0].Y
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset() {
	c.count = 0
	c.sum = 0
}

type stepRecorder struct {
	steps []int
}

func (s *stepRecorder) OnStep(step int, t float64, bodies []body.Snapshot) {
	s.steps = append(s.steps, step)
}

func TestDriverMetricsAndObservers(t *testing.T) {
	d := New(fallingSystem(t))
	metric := &countMetric{}
	obs := &stepRecorder{}
	d.AddMetric(metric)
	d.AddObserver(obs)

	result, err := d.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations, got %f", result.Metrics["count"])
	}
	if len(obs.steps) != 10 || obs.steps[0] != 1 || obs.steps[9] != 10 {
		t.Errorf("unexpected observed steps %v", obs.steps)
	}
}

func TestDriverCancel(t *testing.T) {
	d := New(fallingSystem(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := d.Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps after cancel, got %d", result.StepsTaken)
	}
}

func TestDriverPaceHonoursDeadline(t *testing.T) {
	d := New(fallingSystem(t))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := d.Run(ctx, Config{Dt: 0.01, Duration: 100, Pace: 5 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if result.StepsTaken == 0 || result.StepsTaken >= 10000 {
		t.Errorf("unexpected step count %d", result.StepsTaken)
	}
}

func TestDriverDetectsDivergence(t *testing.T) {
	sys := engine.New(math.MaxFloat64)
	c, _ := body.NewCircle(0, 0, 0, 0, 1e300, 1, 0)
	sys.Add(c)

	_, err := New(sys).Run(context.Background(), Config{Dt: 1e300, Duration: 1e301})
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if !errors.Is(err, ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	d := New(fallingSystem(t))
	calls := 0
	err := d.RunWithCallback(context.Background(), Config{Dt: 0.1, Duration: 10}, func(step int, t float64) bool {
		calls++
		return step < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("expected 3 callbacks, got %d", calls)
	}
}

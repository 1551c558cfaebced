package config

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/san-kum/rigid2d/internal/body"
	"github.com/san-kum/rigid2d/internal/engine"
	"github.com/san-kum/rigid2d/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGravity   = 10.0
	DefaultDt        = 0.03
	DefaultDuration  = 30.0
	DefaultStiffness = 50000.0
	DefaultMinRadius = 20.0
	DefaultMaxRadius = 30.0
)

const (
	KindCircle = "circle"
	KindRect   = "rect"
	KindMass   = "mass"
)

var ErrInvalidConfig = errors.New("config: invalid scene")

type Config struct {
	Name          string        `yaml:"name"`
	Gravity       float64       `yaml:"gravity"`
	Dt            float64       `yaml:"dt"`
	Duration      float64       `yaml:"duration"`
	Seed          int64         `yaml:"seed"`
	Workers       int           `yaml:"workers"`
	View          View          `yaml:"view"`
	Bodies        []BodyConfig  `yaml:"bodies"`
	RandomCircles RandomCircles `yaml:"random_circles"`
}

// View is the world rectangle shown by renderers. A zero view is fitted to
// the bodies.
type View struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

func (v View) Empty() bool { return !(v.MaxX > v.MinX && v.MaxY > v.MinY) }

type BodyConfig struct {
	Kind      string  `yaml:"kind"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	VX        float64 `yaml:"vx,omitempty"`
	VY        float64 `yaml:"vy,omitempty"`
	Mass      float64 `yaml:"mass,omitempty"`
	Radius    float64 `yaml:"radius,omitempty"`
	Stiffness float64 `yaml:"stiffness,omitempty"`
	Width     float64 `yaml:"width,omitempty"`
	Height    float64 `yaml:"height,omitempty"`
	Angle     float64 `yaml:"angle,omitempty"`
}

// RandomCircles scatters Count circles of mass r² inside Region, drawing
// the radius first and then the centre, so that a seed reproduces a scene.
type RandomCircles struct {
	Count     int     `yaml:"count"`
	MinRadius float64 `yaml:"min_radius"`
	MaxRadius float64 `yaml:"max_radius"`
	Stiffness float64 `yaml:"stiffness"`
	Region    View    `yaml:"region"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "custom",
		Gravity:  DefaultGravity,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Seed:     1,
		RandomCircles: RandomCircles{
			MinRadius: DefaultMinRadius,
			MaxRadius: DefaultMaxRadius,
			Stiffness: DefaultStiffness,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

// Validate checks the run parameters and the random placement. Individual
// bodies are checked by their constructors in Build.
func (c *Config) Validate() error {
	if math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return invalid("gravity must be finite")
	}
	if !positive(c.Dt) {
		return invalid("dt must be positive, got %g", c.Dt)
	}
	if !positive(c.Duration) {
		return invalid("duration must be positive, got %g", c.Duration)
	}
	if c.Workers < 0 {
		return invalid("workers must not be negative")
	}
	for i, b := range c.Bodies {
		switch b.Kind {
		case KindCircle, KindRect, KindMass:
		default:
			return invalid("body %d: unknown kind %q", i, b.Kind)
		}
	}

	rc := c.RandomCircles
	if rc.Count < 0 {
		return invalid("random_circles.count must not be negative")
	}
	if rc.Count > 0 {
		if !positive(rc.MinRadius) || rc.MaxRadius < rc.MinRadius {
			return invalid("random_circles radius range [%g, %g]", rc.MinRadius, rc.MaxRadius)
		}
		if !positive(rc.Stiffness) {
			return invalid("random_circles.stiffness must be positive")
		}
		if rc.Region.MaxX-rc.Region.MinX < 2*rc.MaxRadius || rc.Region.MaxY-rc.Region.MinY < 2*rc.MaxRadius {
			return invalid("random_circles.region cannot hold radius %g", rc.MaxRadius)
		}
	}
	return nil
}

// Build validates the scene and assembles a System with the listed bodies
// followed by the random circles.
func (c *Config) Build(opts ...engine.Option) (*engine.System, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	opts = append([]engine.Option{engine.WithWorkers(c.Workers)}, opts...)
	sys := engine.New(c.Gravity, opts...)

	for i, bc := range c.Bodies {
		b, err := bc.build()
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Kind, err)
		}
		if err := sys.Add(b); err != nil {
			return nil, err
		}
	}

	circles, err := c.RandomCircles.Generate(rand.New(rand.NewSource(c.Seed)))
	if err != nil {
		return nil, err
	}
	for _, b := range circles {
		if err := sys.Add(b); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

func (bc BodyConfig) build() (*body.Body, error) {
	switch bc.Kind {
	case KindCircle:
		return body.NewCircle(bc.X, bc.Y, bc.VX, bc.VY, bc.Mass, bc.Radius, bc.Stiffness)
	case KindRect:
		return body.NewFixedRect(bc.X, bc.Y, bc.Width, bc.Height, bc.Angle)
	case KindMass:
		return body.NewMass(bc.X, bc.Y, bc.VX, bc.VY, bc.Mass)
	default:
		return nil, invalid("unknown kind %q", bc.Kind)
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Generate draws the circles from rng. The circles are not yet owned by a
// system.
func (rc RandomCircles) Generate(rng *rand.Rand) ([]*body.Body, error) {
	out := make([]*body.Body, 0, rc.Count)
	for i := 0; i < rc.Count; i++ {
		r := uniform(rng, rc.MinRadius, rc.MaxRadius)
		x := uniform(rng, rc.Region.MinX+r, rc.Region.MaxX-r)
		y := uniform(rng, rc.Region.MinY+r, rc.Region.MaxY-r)
		b, err := body.NewCircle(x, y, 0, 0, r*r, r, rc.Stiffness)
		if err != nil {
			return nil, fmt.Errorf("random circle %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{Dt: c.Dt, Duration: c.Duration}
}

// SetParam overrides a scalar scene parameter by name: gravity, dt,
// duration, or stiffness (applied to every circle, listed or random).
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "gravity":
		c.Gravity = v
	case "dt":
		c.Dt = v
	case "duration":
		c.Duration = v
	case "stiffness":
		for i := range c.Bodies {
			if c.Bodies[i].Kind == KindCircle {
				c.Bodies[i].Stiffness = v
			}
		}
		c.RandomCircles.Stiffness = v
	default:
		return invalid("unknown parameter %q", name)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &out
}

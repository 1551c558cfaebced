package engine

import (
	"io"
	"log/slog"

	"github.com/san-kum/rigid2d/internal/body"
	"github.com/san-kum/rigid2d/internal/planar"
)

// Stats counts what the collision phase of the most recent tick did.
type Stats struct {
	Pairs      int // pairs examined
	Candidates int // pairs passing the bounding-box broad phase
	Contacts   int // pairs that produced a (possibly zero) force
	Unhandled  int // candidate pairs with no collision rule
	Degenerate int // pairs or axes skipped for lack of a direction
	Failed     int // pairs dropped because of a math-layer error
}

func (s *Stats) merge(o Stats) {
	s.Pairs += o.Pairs
	s.Candidates += o.Candidates
	s.Contacts += o.Contacts
	s.Unhandled += o.Unhandled
	s.Degenerate += o.Degenerate
	s.Failed += o.Failed
}

type Option func(*System)

// WithLogger sets the logger used for per-pair diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDAllocator makes the system draw body ids from a shared allocator.
func WithIDAllocator(a *body.IDAllocator) Option {
	return func(s *System) {
		if a != nil {
			s.ids = a
		}
	}
}

// WithWorkers spreads the collision phase over n goroutines. Values below
// two keep the phase sequential.
func WithWorkers(n int) Option {
	return func(s *System) { s.workers = n }
}

type System struct {
	g       float64
	bodies  []*body.Body
	ids     *body.IDAllocator
	log     *slog.Logger
	workers int
	stats   Stats
}

func New(g float64, opts ...Option) *System {
	s := &System{
		g:   g,
		ids: body.NewIDAllocator(),
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) Gravity() float64 { return s.g }
func (s *System) Len() int         { return len(s.bodies) }

// Stats returns the collision counters of the last CollisionAll.
func (s *System) Stats() Stats { return s.stats }

// Add assigns b an id and appends it to the system. A body can belong to
// one system only.
func (s *System) Add(b *body.Body) error {
	if err := s.ids.Assign(b); err != nil {
		return err
	}
	s.bodies = append(s.bodies, b)
	return nil
}

// Step runs one tick: gravity, collisions, integration.
func (s *System) Step(dt float64) {
	s.GravityAll()
	s.CollisionAll()
	s.MoveAll(dt)
}

func (s *System) GravityAll() {
	for _, b := range s.bodies {
		if !b.Movable() {
			continue
		}
		if err := b.ApplyForce(planar.Vec(0, -b.Mass()*s.g)); err != nil {
			s.log.Error("gravity", "body", b.ID(), "err", err)
		}
	}
}

func (s *System) MoveAll(dt float64) {
	for _, b := range s.bodies {
		if !b.Movable() {
			continue
		}
		if err := b.Integrate(dt); err != nil {
			s.log.Error("integrate", "body", b.ID(), "err", err)
		}
	}
}

// TotalEnergy returns Σ ½m|v|² + m·g·y over the movable bodies. Penalty
// spring energy is not included.
func (s *System) TotalEnergy() float64 {
	total := 0.0
	for _, b := range s.bodies {
		if !b.Movable() {
			continue
		}
		m := b.Mass()
		total += 0.5*m*b.Velocity().SizeSquared() + m*s.g*b.Position()[1]
	}
	return total
}

// Snapshot copies the state of every body in insertion order.
func (s *System) Snapshot() []body.Snapshot {
	out := make([]body.Snapshot, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = b.Snapshot()
	}
	return out
}

// Finite reports whether every movable body has a finite position and
// velocity.
func (s *System) Finite() bool {
	for _, b := range s.bodies {
		if !b.Movable() {
			continue
		}
		if !b.Position().IsFinite() || !b.Velocity().IsFinite() {
			return false
		}
	}
	return true
}

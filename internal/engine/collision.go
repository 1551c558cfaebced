package engine

import (
	"errors"
	"math"

	"github.com/san-kum/rigid2d/internal/body"
	"github.com/san-kum/rigid2d/internal/linalg"
	"github.com/san-kum/rigid2d/internal/planar"
)

// IntervalDist returns the signed gap between [min1,max1] and [min2,max2].
// Positive means separated; zero or negative means touching or overlapping.
func IntervalDist(min1, max1, min2, max2 float64) float64 {
	if min1 < min2 {
		return min2 - max1
	}
	return min1 - max2
}

// contact holds the forces a narrow-phase test produced. A nil force means
// the body receives nothing.
type contact struct {
	forceA, forceB linalg.Vector
	skipped        int
}

type forceSink func(idx int, f linalg.Vector)

func (s *System) CollisionAll() {
	s.stats = Stats{}
	n := len(s.bodies)
	if s.workers > 1 && n >= parallelThreshold {
		s.collideParallel()
		return
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s.collide(i, j, s.apply, &s.stats)
		}
	}
}

func (s *System) apply(idx int, f linalg.Vector) {
	b := s.bodies[idx]
	if err := b.ApplyForce(f); err != nil {
		s.log.Error("apply force", "body", b.ID(), "err", err)
	}
}

func (s *System) collide(i, j int, sink forceSink, st *Stats) {
	a, b := s.bodies[i], s.bodies[j]
	st.Pairs++

	ba, bb := a.Box(), b.Box()
	if IntervalDist(ba.MinX, ba.MaxX, bb.MinX, bb.MaxX) > 0 {
		return
	}
	if IntervalDist(ba.MinY, ba.MaxY, bb.MinY, bb.MaxY) > 0 {
		return
	}
	st.Candidates++

	var (
		c      *contact
		err    error
		ai, bi = i, j
	)
	switch {
	case a.Kind() == body.KindCircle && b.Kind() == body.KindCircle:
		c, err = circleCircle(a, b)
	case a.Kind() == body.KindCircle && b.Kind() == body.KindFixedRect:
		c, err = circleRect(a, b)
	case a.Kind() == body.KindFixedRect && b.Kind() == body.KindCircle:
		c, err = circleRect(b, a)
		ai, bi = j, i
	default:
		st.Unhandled++
		return
	}

	if err != nil {
		if errors.Is(err, linalg.ErrDegenerate) {
			st.Degenerate++
			s.log.Debug("degenerate pair", "a", a.ID(), "b", b.ID())
		} else {
			st.Failed++
			s.log.Error("collision", "a", a.ID(), "b", b.ID(), "err", err)
		}
		return
	}
	if c == nil {
		return
	}

	st.Contacts++
	st.Degenerate += c.skipped
	if c.forceA != nil {
		sink(ai, c.forceA)
	}
	if c.forceB != nil {
		sink(bi, c.forceB)
	}
}

// circleCircle pushes overlapping circles apart with a spring of stiffness
// (k1+k2)/2 proportional to the overlap. Coincident centres have no
// direction and return ErrDegenerate.
func circleCircle(a, b *body.Body) (*contact, error) {
	ca, _ := a.Circle()
	cb, _ := b.Circle()
	pa, pb := a.Position(), b.Position()

	dist, err := linalg.Distance(pa, pb)
	if err != nil {
		return nil, err
	}
	stable := ca.Radius + cb.Radius
	if dist > stable {
		return nil, nil
	}

	d, err := linalg.Subtract(pb, pa)
	if err != nil {
		return nil, err
	}
	dir, err := d.Normalized()
	if err != nil {
		return nil, err
	}

	k := (ca.Stiffness + cb.Stiffness) / 2
	dir.Scale(k * (dist - stable))
	opposite := dir.Clone()
	opposite.Scale(-1)
	return &contact{forceA: dir, forceB: opposite}, nil
}

// circleRect runs a separating-axis test over the nearest-vertex axis and
// the rectangle's two local axes. The circle is pushed out along the axis
// of least overlap with force overlap·k; the rectangle receives nothing.
func circleRect(c, r *body.Body) (*contact, error) {
	circ, _ := c.Circle()
	rect, _ := r.Rect()
	center := c.Position()

	nearest := rect.Vertices[0]
	best := math.Inf(1)
	for _, v := range rect.Vertices {
		d, err := linalg.DistanceSquared(center, v)
		if err != nil {
			return nil, err
		}
		if d < best {
			best, nearest = d, v
		}
	}

	out := &contact{}
	axes := make([]linalg.Vector, 0, 3)
	toCenter, err := linalg.Subtract(center, nearest)
	if err != nil {
		return nil, err
	}
	if axis, err := toCenter.Normalized(); err == nil {
		axes = append(axes, axis)
	} else if errors.Is(err, linalg.ErrDegenerate) {
		out.skipped++
	} else {
		return nil, err
	}
	ex, ey := planar.Axes(rect.Angle)
	axes = append(axes, ex, ey)

	minOverlap := math.Inf(1)
	var force linalg.Vector
	for _, axis := range axes {
		p, err := linalg.Inner(center, axis)
		if err != nil {
			return nil, err
		}
		min1, max1 := p-circ.Radius, p+circ.Radius

		min2, max2 := math.Inf(1), math.Inf(-1)
		for _, v := range rect.Vertices {
			q, err := linalg.Inner(v, axis)
			if err != nil {
				return nil, err
			}
			min2 = math.Min(min2, q)
			max2 = math.Max(max2, q)
		}

		gap := IntervalDist(min1, max1, min2, max2)
		if gap > 0 {
			return nil, nil
		}
		if -gap < minOverlap {
			minOverlap = -gap
			force = axis.Clone()
			if min1 < min2 {
				force.Scale(-minOverlap * circ.Stiffness)
			} else {
				force.Scale(minOverlap * circ.Stiffness)
			}
		}
	}

	out.forceA = force
	return out, nil
}

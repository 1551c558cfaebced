// Package body defines the simulated bodies: free point masses, circles and
// fixed oriented rectangles.
//
// A [Body] is a tagged variant. All bodies share an identity, a position
// and an axis-aligned bounding box; the movable variants ([KindMass],
// [KindCircle]) carry a [Motion] payload, circles add a [Circle] payload and
// fixed rectangles a [Rect] payload. Callers dispatch on [Body.Kind].
//
// Bodies receive their id from an [IDAllocator] when they are added to a
// system; a zero id means the body is not owned yet.
package body

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/linalg"
	"github.com/san-kum/rigid2d/internal/planar"
)

var (
	// ErrInvalidBody indicates a violated construction precondition.
	ErrInvalidBody = errors.New("body: invalid construction parameter")

	// ErrImmovable indicates a force or integration request on a fixed body.
	ErrImmovable = errors.New("body: body is immovable")

	// ErrAlreadyOwned indicates a body that already has an id.
	ErrAlreadyOwned = errors.New("body: body already belongs to a system")
)

type Kind uint8

const (
	KindMass Kind = iota
	KindCircle
	KindFixedRect
)

func (k Kind) String() string {
	switch k {
	case KindMass:
		return "mass"
	case KindCircle:
		return "circle"
	case KindFixedRect:
		return "rect"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindMass, KindCircle, KindFixedRect} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("body: unknown kind %q", s)
}

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Motion is the dynamic state of a movable body. Acc accumulates f/m during
// a tick and is cleared by Integrate.
type Motion struct {
	Vel  linalg.Vector
	Acc  linalg.Vector
	Mass float64
}

type Circle struct {
	Radius    float64
	Stiffness float64
}

// Rect is a fixed rectangle anchored at its first vertex and rotated by
// Angle around it.
type Rect struct {
	Width, Height float64
	Angle         float64
	Vertices      [4]linalg.Vector
}

type Body struct {
	id     uint64
	kind   Kind
	pos    linalg.Vector
	box    Box
	motion *Motion
	circle *Circle
	rect   *Rect
}

func invalid(param string, v float64) error {
	return fmt.Errorf("%w: %s = %g", ErrInvalidBody, param, v)
}

func finite(params map[string]float64) error {
	for name, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(name, v)
		}
	}
	return nil
}

// NewMass creates a free point mass. It has no extent and takes part in
// gravity and integration only.
func NewMass(x, y, vx, vy, m float64) (*Body, error) {
	if err := finite(map[string]float64{"x": x, "y": y, "vx": vx, "vy": vy, "mass": m}); err != nil {
		return nil, err
	}
	if m <= 0 {
		return nil, invalid("mass", m)
	}
	b := &Body{
		kind: KindMass,
		pos:  planar.Vec(x, y),
		motion: &Motion{
			Vel:  planar.Vec(vx, vy),
			Acc:  linalg.Zeros(2),
			Mass: m,
		},
	}
	b.refreshBox()
	return b, nil
}

// NewCircle creates a movable circle. A zero stiffness means the circle never
// generates penalty force.
func NewCircle(x, y, vx, vy, m, radius, stiffness float64) (*Body, error) {
	b, err := NewMass(x, y, vx, vy, m)
	if err != nil {
		return nil, err
	}
	if err := finite(map[string]float64{"radius": radius, "stiffness": stiffness}); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, invalid("radius", radius)
	}
	if stiffness < 0 {
		return nil, invalid("stiffness", stiffness)
	}
	b.kind = KindCircle
	b.circle = &Circle{Radius: radius, Stiffness: stiffness}
	b.refreshBox()
	return b, nil
}

// NewFixedRect creates an immovable rectangle with its anchor vertex at
// (x, y), edges w·(cosθ, sinθ) and h·(-sinθ, cosθ).
func NewFixedRect(x, y, w, h, angle float64) (*Body, error) {
	if err := finite(map[string]float64{"x": x, "y": y, "width": w, "height": h, "angle": angle}); err != nil {
		return nil, err
	}
	if w <= 0 {
		return nil, invalid("width", w)
	}
	if h <= 0 {
		return nil, invalid("height", h)
	}

	ex, ey := planar.Axes(angle)
	ex.Scale(w)
	ey.Scale(h)

	p := planar.Vec(x, y)
	p1 := p.Clone()
	p1.Add(ex, 1)
	p2 := p1.Clone()
	p2.Add(ey, 1)
	p3 := p.Clone()
	p3.Add(ey, 1)

	b := &Body{
		kind: KindFixedRect,
		pos:  p,
		rect: &Rect{
			Width:    w,
			Height:   h,
			Angle:    angle,
			Vertices: [4]linalg.Vector{p.Clone(), p1, p2, p3},
		},
	}
	b.box = Box{MinX: x, MinY: y, MaxX: x, MaxY: y}
	for _, v := range b.rect.Vertices {
		b.box.MinX = math.Min(b.box.MinX, v[0])
		b.box.MinY = math.Min(b.box.MinY, v[1])
		b.box.MaxX = math.Max(b.box.MaxX, v[0])
		b.box.MaxY = math.Max(b.box.MaxY, v[1])
	}
	return b, nil
}

func (b *Body) ID() uint64    { return b.id }
func (b *Body) Kind() Kind    { return b.kind }
func (b *Body) Movable() bool { return b.motion != nil }
func (b *Body) Box() Box      { return b.box }

// Position returns a copy of the body's position.
func (b *Body) Position() linalg.Vector { return b.pos.Clone() }

// Velocity returns a copy of the velocity, or the zero vector for a fixed
// body.
func (b *Body) Velocity() linalg.Vector {
	if b.motion == nil {
		return linalg.Zeros(2)
	}
	return b.motion.Vel.Clone()
}

// Mass returns the inertial mass, or zero for a fixed body.
func (b *Body) Mass() float64 {
	if b.motion == nil {
		return 0
	}
	return b.motion.Mass
}

func (b *Body) Circle() (Circle, bool) {
	if b.circle == nil {
		return Circle{}, false
	}
	return *b.circle, true
}

// Rect returns the rectangle payload with its vertices copied.
func (b *Body) Rect() (Rect, bool) {
	if b.rect == nil {
		return Rect{}, false
	}
	r := *b.rect
	for i, v := range b.rect.Vertices {
		r.Vertices[i] = v.Clone()
	}
	return r, true
}

// ApplyForce accumulates acc += f/m. Several forces within one tick add up.
func (b *Body) ApplyForce(f linalg.Vector) error {
	if b.motion == nil {
		return ErrImmovable
	}
	return b.motion.Acc.Add(f, 1/b.motion.Mass)
}

// Integrate advances the body by dt with semi-implicit Euler: velocity is
// updated first and the new velocity moves the position. The accumulated
// acceleration is cleared afterwards.
func (b *Body) Integrate(dt float64) error {
	if b.motion == nil {
		return ErrImmovable
	}
	m := b.motion
	if err := m.Vel.Add(m.Acc, dt); err != nil {
		return err
	}
	if err := b.pos.Add(m.Vel, dt); err != nil {
		return err
	}
	m.Acc.Reset()
	b.refreshBox()
	return nil
}

// Momentum returns m·|v|.
func (b *Body) Momentum() float64 {
	if b.motion == nil {
		return 0
	}
	return b.motion.Mass * b.motion.Vel.Size()
}

func (b *Body) refreshBox() {
	r := 0.0
	if b.circle != nil {
		r = b.circle.Radius
	}
	x, y := b.pos[0], b.pos[1]
	b.box = Box{MinX: x - r, MinY: y - r, MaxX: x + r, MaxY: y + r}
}

package body

import "log/slog"

// Snapshot is a read-only copy of a body's observable state, taken after a
// tick completes. It is what renderers and recorders consume.
type Snapshot struct {
	ID        uint64
	Kind      Kind
	X, Y      float64
	VX, VY    float64
	AX, AY    float64
	Mass      float64
	Radius    float64
	Stiffness float64
	Width     float64
	Height    float64
	Angle     float64
	Vertices  [4][2]float64
	Box       Box
}

func (b *Body) Snapshot() Snapshot {
	s := Snapshot{
		ID:   b.id,
		Kind: b.kind,
		X:    b.pos[0],
		Y:    b.pos[1],
		Box:  b.box,
	}
	if m := b.motion; m != nil {
		s.VX, s.VY = m.Vel[0], m.Vel[1]
		s.AX, s.AY = m.Acc[0], m.Acc[1]
		s.Mass = m.Mass
	}
	if c := b.circle; c != nil {
		s.Radius = c.Radius
		s.Stiffness = c.Stiffness
	}
	if r := b.rect; r != nil {
		s.Width, s.Height, s.Angle = r.Width, r.Height, r.Angle
		for i, v := range r.Vertices {
			s.Vertices[i] = [2]float64{v[0], v[1]}
		}
	}
	return s
}

func (s Snapshot) Movable() bool { return s.Kind != KindFixedRect }

// LogValue implements slog.LogValuer.
func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Uint64("id", s.ID),
		slog.String("kind", s.Kind.String()),
		slog.Float64("x", s.X),
		slog.Float64("y", s.Y),
	}
	if s.Movable() {
		attrs = append(attrs, slog.Float64("vx", s.VX), slog.Float64("vy", s.VY))
	}
	return slog.GroupValue(attrs...)
}

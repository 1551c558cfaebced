package viz

import (
	"math"

	"github.com/san-kum/rigid2d/internal/body"
)

// Bounds is a world-space rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }
func (b Bounds) Empty() bool     { return !(b.Width() > 0 && b.Height() > 0) }

// Fit returns the union of the bodies' boxes grown by pad on every side.
func Fit(bodies []body.Snapshot, pad float64) Bounds {
	if len(bodies) == 0 {
		return Bounds{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	}
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, s := range bodies {
		b.MinX = math.Min(b.MinX, s.Box.MinX)
		b.MinY = math.Min(b.MinY, s.Box.MinY)
		b.MaxX = math.Max(b.MaxX, s.Box.MaxX)
		b.MaxY = math.Max(b.MaxY, s.Box.MaxY)
	}
	b.MinX -= pad
	b.MinY -= pad
	b.MaxX += pad
	b.MaxY += pad
	if b.Width() == 0 {
		b.MinX, b.MaxX = b.MinX-1, b.MaxX+1
	}
	if b.Height() == 0 {
		b.MinY, b.MaxY = b.MinY-1, b.MaxY+1
	}
	return b
}

// Projector maps world coordinates onto a width x height pixel grid with a
// uniform scale, centring the bounds and flipping y.
type Projector struct {
	bounds     Bounds
	scale      float64
	offX, offY float64
	width      int
	height     int
}

func NewProjector(b Bounds, width, height int) Projector {
	if b.Empty() {
		b = Bounds{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	}
	sx := float64(width-1) / b.Width()
	sy := float64(height-1) / b.Height()
	scale := math.Min(sx, sy)
	return Projector{
		bounds: b,
		scale:  scale,
		offX:   (float64(width-1) - b.Width()*scale) / 2,
		offY:   (float64(height-1) - b.Height()*scale) / 2,
		width:  width,
		height: height,
	}
}

func (p Projector) Scale() float64 { return p.scale }

// PointF returns the unrounded pixel position of world point (x, y).
func (p Projector) PointF(x, y float64) (float64, float64) {
	px := p.offX + (x-p.bounds.MinX)*p.scale
	py := float64(p.height-1) - (p.offY + (y-p.bounds.MinY)*p.scale)
	return px, py
}

func (p Projector) Point(x, y float64) (int, int) {
	px, py := p.PointF(x, y)
	return int(math.Round(px)), int(math.Round(py))
}

// Length converts a world distance to pixels.
func (p Projector) Length(l float64) int {
	return int(math.Round(l * p.scale))
}

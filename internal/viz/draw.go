package viz

import (
	"github.com/san-kum/rigid2d/internal/body"
)

// DrawSnapshot outlines circles, draws the four edges of each rectangle and
// a dot for each point mass.
func DrawSnapshot(c *Canvas, p Projector, bodies []body.Snapshot) {
	for _, b := range bodies {
		switch b.Kind {
		case body.KindCircle:
			x, y := p.Point(b.X, b.Y)
			c.DrawCircle(x, y, p.Length(b.Radius))
		case body.KindFixedRect:
			for i := range b.Vertices {
				a, z := b.Vertices[i], b.Vertices[(i+1)%len(b.Vertices)]
				x0, y0 := p.Point(a[0], a[1])
				x1, y1 := p.Point(z[0], z[1])
				c.DrawLine(x0, y0, x1, y1)
			}
		default:
			x, y := p.Point(b.X, b.Y)
			c.Set(x, y)
		}
	}
}

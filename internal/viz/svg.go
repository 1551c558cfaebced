package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/rigid2d/internal/body"
)

// SnapshotSVG draws one element per body: a <circle> for circles, a
// <polygon> for rectangles and a small dot for point masses.
func SnapshotSVG(bodies []body.Snapshot, b Bounds, width, height int) string {
	p := NewProjector(b, width, height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range bodies {
		switch s.Kind {
		case body.KindCircle:
			x, y := p.PointF(s.X, s.Y)
			sb.WriteString(fmt.Sprintf(`<circle data-id="%d" cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#00ff88"/>
`, s.ID, x, y, s.Radius*p.Scale()))
		case body.KindFixedRect:
			pts := make([]string, len(s.Vertices))
			for i, v := range s.Vertices {
				x, y := p.PointF(v[0], v[1])
				pts[i] = fmt.Sprintf("%.1f,%.1f", x, y)
			}
			sb.WriteString(fmt.Sprintf(`<polygon data-id="%d" points="%s" fill="#333344" stroke="#888899"/>
`, s.ID, strings.Join(pts, " ")))
		default:
			x, y := p.PointF(s.X, s.Y)
			sb.WriteString(fmt.Sprintf(`<circle data-id="%d" cx="%.1f" cy="%.1f" r="1.5" fill="#ffcc00"/>
`, s.ID, x, y))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// TrajectorySVG draws the path of each body as a polyline over the same
// projection as SnapshotSVG.
func TrajectorySVG(paths map[uint64][][2]float64, b Bounds, width, height int, strokeColor string) string {
	p := NewProjector(b, width, height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for id, pts := range paths {
		if len(pts) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path data-id="%d" fill="none" stroke="%s" stroke-width="1.5" d="M`, id, strokeColor))
		for i, pt := range pts {
			x, y := p.PointF(pt[0], pt[1])
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

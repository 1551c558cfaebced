package config

import "sort"

const (
	boxWidth  = 1000.0
	boxHeight = 600.0
	boxWall   = 500.0
)

func circle(x, y, m, r float64) BodyConfig {
	return BodyConfig{Kind: KindCircle, X: x, Y: y, Mass: m, Radius: r, Stiffness: DefaultStiffness}
}

func rect(x, y, w, h, angle float64) BodyConfig {
	return BodyConfig{Kind: KindRect, X: x, Y: y, Width: w, Height: h, Angle: angle}
}

var Presets = map[string]*Config{
	// A single circle dropped onto a floor whose top edge is y=0.
	"drop": {
		Name: "drop", Gravity: DefaultGravity, Dt: DefaultDt, Duration: 15, Seed: 1,
		View: View{MinX: -60, MinY: -15, MaxX: 60, MaxY: 65},
		Bodies: []BodyConfig{
			circle(0, 50, 100, 10),
			rect(-500, -10, 1000, 10, 0),
		},
	},
	// Floor, two walls and a tilted ramp with thirty random circles.
	"box": {
		Name: "box", Gravity: DefaultGravity, Dt: DefaultDt, Duration: 60, Seed: 1,
		View: View{MinX: -20, MinY: -20, MaxX: boxWidth + 20, MaxY: boxHeight + 20},
		Bodies: []BodyConfig{
			rect(0, -boxWall, boxWidth, boxWall, 0),
			rect(boxWidth, 0, boxWall, boxHeight, 0),
			rect(300, 300, 500, 100, 0.5),
			rect(-boxWall, 0, boxWall, boxHeight, 0),
		},
		RandomCircles: RandomCircles{
			Count:     30,
			MinRadius: DefaultMinRadius,
			MaxRadius: DefaultMaxRadius,
			Stiffness: DefaultStiffness,
			Region:    View{MaxX: boxWidth, MaxY: boxHeight},
		},
	},
	"stack": {
		Name: "stack", Gravity: DefaultGravity, Dt: DefaultDt, Duration: 30, Seed: 1,
		View: View{MinX: -80, MinY: -15, MaxX: 80, MaxY: 120},
		Bodies: []BodyConfig{
			rect(-500, -10, 1000, 10, 0),
			circle(0, 10, 100, 10),
			circle(0, 30, 100, 10),
			circle(0, 50, 100, 10),
			circle(0, 70, 100, 10),
			circle(0, 90, 100, 10),
		},
	},
	// Circles slide down a frictionless incline into a wall.
	"ramp": {
		Name: "ramp", Gravity: DefaultGravity, Dt: DefaultDt, Duration: 30, Seed: 1,
		View: View{MinX: -20, MinY: -20, MaxX: 420, MaxY: 260},
		Bodies: []BodyConfig{
			rect(0, -20, 400, 20, 0),
			rect(400, -20, 20, 260, 0),
			rect(0, 150, 300, 20, -0.3),
			circle(20, 195, 100, 10),
			circle(50, 190, 100, 10),
			circle(80, 180, 100, 10),
		},
	},
}

// GetPreset returns a copy of the named scene, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

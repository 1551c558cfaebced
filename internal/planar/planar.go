// Package planar adds the plane-geometry operations (rotation, angle,
// projection) on top of the dimension-2 vectors of package linalg.
package planar

import (
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/linalg"
)

// Vec returns the 2D vector (x, y).
func Vec(x, y float64) linalg.Vector {
	return linalg.Vector{x, y}
}

func check(op string, v linalg.Vector) error {
	if v.Dim() != 2 {
		return fmt.Errorf("%w: %s needs a 2D vector, got dimension %d", linalg.ErrDimensionMismatch, op, v.Dim())
	}
	return nil
}

// Rotation returns the 2×2 matrix rotating counter-clockwise by theta.
func Rotation(theta float64) *linalg.Matrix {
	sin, cos := math.Sincos(theta)
	m, _ := linalg.NewMatrix(2, 2, cos, -sin, sin, cos)
	return m
}

// Rotate returns v rotated by theta radians.
func Rotate(v linalg.Vector, theta float64) (linalg.Vector, error) {
	if err := check("rotate", v); err != nil {
		return nil, err
	}
	return Rotation(theta).Apply(v)
}

// Angle returns atan2(y, x).
func Angle(v linalg.Vector) (float64, error) {
	if err := check("angle", v); err != nil {
		return 0, err
	}
	return math.Atan2(v[1], v[0]), nil
}

// Projector returns the rank-1 matrix uuᵀ/|u|² projecting onto the line
// spanned by u.
func Projector(u linalg.Vector) (*linalg.Matrix, error) {
	if err := check("projector", u); err != nil {
		return nil, err
	}
	x, y := u[0], u[1]
	n := x*x + y*y
	if n == 0 {
		return nil, linalg.ErrDegenerate
	}
	return linalg.NewMatrix(2, 2, x*x/n, x*y/n, x*y/n, y*y/n)
}

// Project returns the projection of v onto the line spanned by onto.
func Project(v, onto linalg.Vector) (linalg.Vector, error) {
	if err := check("project", v); err != nil {
		return nil, err
	}
	p, err := Projector(onto)
	if err != nil {
		return nil, err
	}
	return p.Apply(v)
}

// ScalarProjection returns ⟨v, onto⟩ / |onto|.
func ScalarProjection(v, onto linalg.Vector) (float64, error) {
	if err := check("scalar projection", v); err != nil {
		return 0, err
	}
	size := onto.Size()
	if size == 0 {
		return 0, linalg.ErrDegenerate
	}
	dot, err := linalg.Inner(v, onto)
	if err != nil {
		return 0, err
	}
	return dot / size, nil
}

// Axes returns the unit x and y axes of a frame rotated by theta:
// (cosθ, sinθ) and (-sinθ, cosθ).
func Axes(theta float64) (ex, ey linalg.Vector) {
	sin, cos := math.Sincos(theta)
	return Vec(cos, sin), Vec(-sin, cos)
}

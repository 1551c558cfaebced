package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is an ordered sequence of float64 components. Its dimension is
// fixed at construction; methods that mutate do so in place.
type Vector []float64

// New returns a vector holding a copy of the given components.
func New(components ...float64) Vector {
	v := make(Vector, len(components))
	copy(v, components)
	return v
}

// Zeros returns the n-dimensional zero vector.
func Zeros(n int) Vector {
	return make(Vector, n)
}

func (v Vector) Dim() int { return len(v) }

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Add performs v += scale*other in place.
func (v Vector) Add(other Vector, scale float64) error {
	if len(v) != len(other) {
		return mismatch("add", len(other), len(v))
	}
	floats.AddScaled(v, scale, other)
	return nil
}

// Scale multiplies every component by c in place.
func (v Vector) Scale(c float64) {
	floats.Scale(c, v)
}

// Reset sets every component to zero.
func (v Vector) Reset() {
	for i := range v {
		v[i] = 0
	}
}

func (v Vector) SizeSquared() float64 {
	return floats.Dot(v, v)
}

func (v Vector) Size() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

// Normalized returns a unit vector with the direction of v. A zero-length
// (or non-finite) vector has no direction and yields ErrDegenerate.
func (v Vector) Normalized() (Vector, error) {
	size := v.Size()
	if size == 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, ErrDegenerate
	}
	u := v.Clone()
	u.Scale(1 / size)
	return u, nil
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Transform replaces the components of v with m·v. The matrix column count
// must equal the dimension of v; the result has dimension m.Rows().
func (v *Vector) Transform(m *Matrix) error {
	w, err := m.Apply(*v)
	if err != nil {
		return err
	}
	*v = w
	return nil
}

func Inner(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, mismatch("inner product", len(b), len(a))
	}
	return floats.Dot(a, b), nil
}

func DistanceSquared(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, mismatch("distance", len(b), len(a))
	}
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum, nil
}

func Distance(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, mismatch("distance", len(b), len(a))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, 2), nil
}

// Subtract returns a - b as a new vector.
func Subtract(a, b Vector) (Vector, error) {
	result := a.Clone()
	if err := result.Add(b, -1); err != nil {
		return nil, err
	}
	return result, nil
}

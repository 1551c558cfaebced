package planar

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rigid2d/internal/linalg"
)

const tol = 1e-9

func TestRotatePreservesNorm(t *testing.T) {
	vectors := []linalg.Vector{Vec(1, 0), Vec(3, -4), Vec(-1e3, 2.5), Vec(0, 0), Vec(1e-6, 7)}
	angles := []float64{0, 0.5, math.Pi / 2, math.Pi, -2.3, 10}

	for _, v := range vectors {
		for _, theta := range angles {
			r, err := Rotate(v, theta)
			if err != nil {
				t.Fatalf("rotate failed: %v", err)
			}
			if math.Abs(r.Size()-v.Size()) > tol*math.Max(1, v.Size()) {
				t.Errorf("rotate %v by %.2f: norm %f, want %f", v, theta, r.Size(), v.Size())
			}
		}
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	r, _ := Rotate(Vec(1, 0), math.Pi/2)
	if math.Abs(r[0]) > tol || math.Abs(r[1]-1) > tol {
		t.Errorf("expected (0, 1), got %v", r)
	}
}

func TestAngle(t *testing.T) {
	a, err := Angle(Vec(0, 2))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a-math.Pi/2) > tol {
		t.Errorf("expected pi/2, got %f", a)
	}
}

func TestProject(t *testing.T) {
	p, err := Project(Vec(3, 4), Vec(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p[0]-3) > tol || math.Abs(p[1]) > tol {
		t.Errorf("expected (3, 0), got %v", p)
	}

	p, _ = Project(Vec(1, 0), Vec(1, 1))
	if math.Abs(p[0]-0.5) > tol || math.Abs(p[1]-0.5) > tol {
		t.Errorf("expected (0.5, 0.5), got %v", p)
	}
}

func TestScalarProjection(t *testing.T) {
	s, err := ScalarProjection(Vec(3, 4), Vec(0, 10))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(s-4) > tol {
		t.Errorf("expected 4, got %f", s)
	}
}

func TestDegenerateAndDimension(t *testing.T) {
	if _, err := Project(Vec(1, 1), Vec(0, 0)); !errors.Is(err, linalg.ErrDegenerate) {
		t.Errorf("project onto zero: expected ErrDegenerate, got %v", err)
	}
	if _, err := ScalarProjection(Vec(1, 1), Vec(0, 0)); !errors.Is(err, linalg.ErrDegenerate) {
		t.Errorf("scalar projection onto zero: expected ErrDegenerate, got %v", err)
	}
	v3 := linalg.New(1, 2, 3)
	if _, err := Rotate(v3, 1); !errors.Is(err, linalg.ErrDimensionMismatch) {
		t.Errorf("rotate 3D: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := Angle(v3); !errors.Is(err, linalg.ErrDimensionMismatch) {
		t.Errorf("angle 3D: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := ScalarProjection(Vec(1, 1), v3); !errors.Is(err, linalg.ErrDimensionMismatch) {
		t.Errorf("scalar projection 2D onto 3D: expected ErrDimensionMismatch, got %v", err)
	}
}

func TestAxesOrthonormal(t *testing.T) {
	ex, ey := Axes(0.7)
	dot, _ := linalg.Inner(ex, ey)
	if math.Abs(dot) > tol {
		t.Errorf("axes not orthogonal: %f", dot)
	}
	if math.Abs(ex.Size()-1) > tol || math.Abs(ey.Size()-1) > tol {
		t.Error("axes not unit length")
	}
}

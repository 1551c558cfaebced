package linalg

import (
	"errors"
	"fmt"
)

// Domain errors for vector and matrix operations.
var (
	// ErrDimensionMismatch indicates operands of incompatible dimensions.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrDegenerate indicates an operation without a defined result, such as
	// normalizing a zero-length vector.
	ErrDegenerate = errors.New("linalg: degenerate geometry")
)

func mismatch(op string, got, want int) error {
	return fmt.Errorf("%w: %s got %d, want %d", ErrDimensionMismatch, op, got, want)
}

// Package linalg provides the small linear-algebra layer used by the engine.
//
// The package defines two types:
//
//   - [Vector]: fixed-dimension float64 vector with in-place arithmetic
//   - [Matrix]: dense row-major linear map applied to vectors
//
// Numeric kernels are delegated to gonum. Unlike gonum, every binary
// operation checks dimensions first and reports [ErrDimensionMismatch]
// instead of panicking; the operands are left untouched on failure.
//
// # Degenerate input
//
// Normalizing a zero-length vector returns [ErrDegenerate] rather than a
// vector of NaNs.
package linalg

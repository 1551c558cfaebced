// Package engine advances a collection of bodies under gravity with
// penalty-based collision response.
//
// One tick of [System.Step] runs three phases in order:
//
//   - [System.GravityAll]: every movable body receives (0, -m·g)
//   - [System.CollisionAll]: every unordered pair is tested (bounding-box
//     broad phase, then circle/circle or circle/rectangle narrow phase) and
//     penalty forces are accumulated
//   - [System.MoveAll]: every movable body is integrated by dt
//
// Forces accumulate on the bodies until the integration at the end of the
// same tick consumes them, so ticks must not overlap.
//
// # Unhandled pairs
//
// Only circle↔circle and circle↔rectangle pairs interact. Rectangle pairs
// and any pair involving a free point mass are counted in [Stats.Unhandled]
// and produce no force.
//
// # Thread Safety
//
// A System is NOT safe for concurrent use. [WithWorkers] parallelises the
// pair loop internally with per-worker force buffers merged before
// integration; callers still drive ticks from one goroutine.
package engine

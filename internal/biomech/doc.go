// Package biomech provides the core primitives shared across the
// musculoskeletal simulation packages.
//
// The package defines the generalized-coordinate vector types and the
// domain error values:
//
//   - [GeneralizedCoordinates]: joint configuration vector (Q)
//   - [GeneralizedVelocity]: joint velocity vector (QDot)
//   - [GeneralizedAcceleration]: joint acceleration vector (QDDot)
//   - [GeneralizedTorque]: joint torque vector (Tau)
//
// All four are thin []float64 types ordered by degree of freedom. They are
// produced by the caller or the integrator and consumed by the rigid-body
// solver and the muscle registry.
//
// # Thread Safety
//
// None of the types in this package carry synchronization. A registry or
// solver instance assumes a single logical "current pose" at any time;
// callers wanting parallelism run independent instances.
package biomech

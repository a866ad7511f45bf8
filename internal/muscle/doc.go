// Package muscle implements the musculotendon layer: muscle groups, path
// geometry, the muscle-length Jacobian and the force-to-torque mapping.
//
// The entry point is [Registry], which owns the named muscle groups and
// orchestrates recomputation against an injected [rigid.Solver]:
//
//	reg := muscle.NewRegistry(solver)
//	reg.AddMuscleGroup("arm", "upper", "fore")
//	...
//	reg.UpdateMuscles(q, true)
//	tau, err := reg.MuscularJointTorque(forces)
//
// Every cached quantity (via-point positions, lengths, the assembled
// Jacobian) is tagged with the pose version it was computed at. Queries
// that would silently return stale physics instead fail with
// [biomech.ErrStaleGeometry].
package muscle

package rigid

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
)

// Solver is the rigid-body collaborator the muscle packages are built
// against. It owns the kinematic-tree topology and the pose-dependent
// kinematic cache; UpdateKinematics refreshes that cache and every other
// query answers at the cached pose.
type Solver interface {
	// NbQ returns the number of generalized coordinates (degrees of freedom).
	NbQ() int

	// BodyID resolves a segment name to its body identifier, or -1 if the
	// segment is unknown.
	BodyID(name string) int

	// UpdateKinematics refreshes the internal joint-transform cache from Q.
	UpdateKinematics(q biomech.GeneralizedCoordinates) error

	// GlobalTransform returns the world transform of a body at the cached pose.
	GlobalTransform(body int) (RotoTrans, error)

	// PointJacobian returns the 3xNbQ positional Jacobian of a point rigidly
	// attached to a body, expressed in world coordinates, at the cached pose.
	PointJacobian(body int, local r3.Vec) (*mat.Dense, error)

	// ForwardDynamics returns the generalized accelerations produced by tau
	// at (q, qdot).
	ForwardDynamics(q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity, tau biomech.GeneralizedTorque) (biomech.GeneralizedAcceleration, error)
}

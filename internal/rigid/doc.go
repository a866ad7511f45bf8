// Package rigid defines the contract consumed from the rigid-body solver
// and a planar kinematic-chain reference implementation of it.
//
// The [Solver] interface is the boundary of the muscle packages: anything
// that can answer body transforms, point Jacobians and forward dynamics at
// a pose can drive the muscle geometry. The bundled [PlanarChain] is a
// serial revolute chain used by the demo models and the test suites; a
// production deployment plugs in a full-featured solver instead.
package rigid

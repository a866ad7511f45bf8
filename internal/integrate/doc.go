// Package integrate advances a generalized-coordinate/velocity state
// forward in time, using the rigid-body solver's forward dynamics as the
// ODE right-hand side.
//
// The flattened state vector is (Q, QDot); its derivative is (QDot, QDDot)
// with QDDot supplied by the solver. Steppers are error-aware because the
// right-hand side is itself an expensive multibody computation that can
// fail; a solver failure is fatal to the current run and surfaces as a
// [biomech.StepError] wrapping [biomech.ErrNumericalFailure].
package integrate

package biomech

import (
	"errors"
	"fmt"
)

// Domain errors for musculoskeletal operations.
var (
	// ErrOutOfRange indicates an index-based accessor beyond the current count.
	ErrOutOfRange = errors.New("biomech: index out of range")

	// ErrDuplicateName indicates a named entity that already exists.
	ErrDuplicateName = errors.New("biomech: duplicate name")

	// ErrUnknownSegment indicates a via-point bound to a segment the solver
	// does not know about.
	ErrUnknownSegment = errors.New("biomech: unknown segment")

	// ErrStaleGeometry indicates a force/torque query against muscle geometry
	// that was never computed, or that predates the current pose.
	ErrStaleGeometry = errors.New("biomech: muscle geometry is stale (call UpdateMuscles first)")

	// ErrNumericalFailure indicates a fatal solver-level failure (singular or
	// degenerate kinematics). Not recoverable by retry.
	ErrNumericalFailure = errors.New("biomech: numerical failure in rigid-body solver")

	// ErrDimensionMismatch indicates vectors whose lengths disagree with the
	// model's degrees of freedom or muscle count.
	ErrDimensionMismatch = errors.New("biomech: dimension mismatch")
)

// StepError wraps an error with the integration step it occurred at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("integration step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

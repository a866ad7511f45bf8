package integrate

import (
	"context"
	"fmt"
	"math"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/rigid"
)

// Integrator advances (Q, QDot) under an externally supplied generalized
// torque vector. Every accepted step is appended to an observation log
// that grows across repeated Integrate calls and is never overwritten.
type Integrator struct {
	solver  rigid.Solver
	stepper Stepper
	ndof    int

	log   [][]float64 // flattened (Q, QDot) per accepted step
	times []float64
}

func New(solver rigid.Solver, stepper Stepper) *Integrator {
	return &Integrator{
		solver:  solver,
		stepper: stepper,
		ndof:    solver.NbQ(),
	}
}

// Integrate advances from (q0, qdot0) over [t0, t1] with step dt, holding
// tau constant. The initial state is recorded, then one observation per
// accepted step. A solver failure aborts the run with a StepError; the
// observations accepted before the failure remain in the log.
func (in *Integrator) Integrate(ctx context.Context, q0 biomech.GeneralizedCoordinates, qdot0 biomech.GeneralizedVelocity, tau biomech.GeneralizedTorque, t0, t1, dt float64) error {
	n := in.ndof
	if len(q0) != n || len(qdot0) != n || len(tau) != n {
		return fmt.Errorf("%w: q %d, qdot %d, tau %d for %d dof", biomech.ErrDimensionMismatch, len(q0), len(qdot0), len(tau), n)
	}
	if dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", dt)
	}
	if t1 <= t0 {
		return fmt.Errorf("t1 must exceed t0, got [%f, %f]", t0, t1)
	}

	f := func(t float64, x []float64) ([]float64, error) {
		qddot, err := in.solver.ForwardDynamics(
			biomech.GeneralizedCoordinates(x[:n]),
			biomech.GeneralizedVelocity(x[n:]),
			tau,
		)
		if err != nil {
			return nil, err
		}
		dx := make([]float64, 2*n)
		copy(dx[:n], x[n:])
		copy(dx[n:], qddot)
		return dx, nil
	}

	x := make([]float64, 2*n)
	copy(x[:n], q0)
	copy(x[n:], qdot0)
	in.record(x, t0)

	steps := int(math.Ceil((t1 - t0) / dt))
	t := t0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h := math.Min(dt, t1-t)
		next, err := in.stepper.Step(f, x, t, h)
		if err != nil {
			return &biomech.StepError{Step: in.Steps(), Time: t, Wrapped: err}
		}
		if !biomech.GeneralizedCoordinates(next).IsValid() {
			return &biomech.StepError{
				Step:    in.Steps(),
				Time:    t,
				Wrapped: fmt.Errorf("%w: state diverged", biomech.ErrNumericalFailure),
			}
		}

		x = next
		t += h
		in.record(x, t)
	}
	return nil
}

func (in *Integrator) record(x []float64, t float64) {
	obs := make([]float64, len(x))
	copy(obs, x)
	in.log = append(in.log, obs)
	in.times = append(in.times, t)
}

// Steps returns how many observations have been recorded so far.
func (in *Integrator) Steps() int { return len(in.log) }

// GetX returns the generalized coordinates recorded at a step index.
func (in *Integrator) GetX(step int) (biomech.GeneralizedCoordinates, error) {
	if step < 0 || step >= len(in.log) {
		return nil, fmt.Errorf("%w: step %d of %d", biomech.ErrOutOfRange, step, len(in.log))
	}
	q := make(biomech.GeneralizedCoordinates, in.ndof)
	copy(q, in.log[step][:in.ndof])
	return q, nil
}

// GetXDot returns the generalized velocities recorded at a step index.
func (in *Integrator) GetXDot(step int) (biomech.GeneralizedVelocity, error) {
	if step < 0 || step >= len(in.log) {
		return nil, fmt.Errorf("%w: step %d of %d", biomech.ErrOutOfRange, step, len(in.log))
	}
	v := make(biomech.GeneralizedVelocity, in.ndof)
	copy(v, in.log[step][in.ndof:])
	return v, nil
}

// Times returns a copy of the recorded timestamps.
func (in *Integrator) Times() []float64 {
	out := make([]float64, len(in.times))
	copy(out, in.times)
	return out
}

// States returns a copy of the full recorded state vectors.
func (in *Integrator) States() [][]float64 {
	out := make([][]float64, len(in.log))
	for i, x := range in.log {
		out[i] = make([]float64, len(x))
		copy(out[i], x)
	}
	return out
}

// DeepCopy duplicates the configuration only: the copy starts with a fresh,
// empty observation log. History stays with the instance that recorded it.
func (in *Integrator) DeepCopy() *Integrator {
	return New(in.solver, in.stepper)
}

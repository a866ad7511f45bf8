package integrate

// Derivative evaluates dx/dt at (t, x). Evaluations may fail; steppers
// propagate the failure without committing the step.
type Derivative func(t float64, x []float64) ([]float64, error)

// Stepper advances the state by one fixed step.
type Stepper interface {
	Step(f Derivative, x []float64, t, dt float64) ([]float64, error)
}

// AdaptiveStepper additionally proposes the next step size from a local
// error estimate.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(f Derivative, x []float64, t, dt, tol float64) ([]float64, float64, error)
}

// Euler is the explicit first-order stepper. Cheap, mostly useful as a
// baseline in comparisons.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Step(f Derivative, x []float64, t, dt float64) ([]float64, error) {
	dx, err := f(t, x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + dt*dx[i]
	}
	return out, nil
}

package experiment

import (
	"context"
	"fmt"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/integrate"
)

// Config drives one muscle-driven forward simulation.
type Config struct {
	Model       string
	Integrator  string
	Dt          float64   // integration step within one control interval
	ControlDt   float64   // interval between muscle torque refreshes
	Duration    float64
	Excitations []float64 // one per muscle, held constant over the run
}

// Result is the recorded trajectory of one run.
type Result struct {
	Times       []float64
	Q           [][]float64
	QDot        [][]float64
	Lengths     [][]float64 // muscle lengths per control step
	Activations [][]float64
	Torques     [][]float64
	MuscleNames []string
}

// Experiment couples a model with an integrator and runs the
// activation -> force -> torque -> integrate loop. Torques are refreshed
// every ControlDt through repeated short-horizon Integrate calls, so the
// integrator's observation log spans the whole run.
type Experiment struct {
	cfg   Config
	model *Model
	integ *integrate.Integrator
}

func New(cfg Config, model *Model, stepper integrate.Stepper) *Experiment {
	return &Experiment{
		cfg:   cfg,
		model: model,
		integ: integrate.New(model.Chain, stepper),
	}
}

// Integrator exposes the underlying integrator, e.g. to inspect the
// observation log after a run.
func (e *Experiment) Integrator() *integrate.Integrator { return e.integ }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	reg := e.model.Muscles
	nb := reg.NbMuscles()
	if len(e.cfg.Excitations) != nb {
		return nil, fmt.Errorf("%w: %d excitations for %d muscles", biomech.ErrDimensionMismatch, len(e.cfg.Excitations), nb)
	}
	if e.cfg.Dt <= 0 || e.cfg.ControlDt <= 0 || e.cfg.Duration <= 0 {
		return nil, fmt.Errorf("dt, control dt and duration must be positive")
	}

	states := reg.StateSet()
	for i, s := range states {
		s.Excitation = e.cfg.Excitations[i]
	}

	n := e.model.Chain.NbQ()
	q := e.model.InitQ.Clone()
	qdot := make(biomech.GeneralizedVelocity, n)

	result := &Result{MuscleNames: reg.MuscleNames()}

	steps := int(e.cfg.Duration / e.cfg.ControlDt)
	t := 0.0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		// first-order activation update at the control rate
		adot, err := reg.ActivationDot(states, true)
		if err != nil {
			return result, err
		}
		for k, s := range states {
			s.Activation = clamp01(s.Activation + e.cfg.ControlDt*adot[k])
		}

		tau, err := reg.MuscularJointTorqueFromStatesAt(states, q, qdot)
		if err != nil {
			return result, err
		}

		if err := e.integ.Integrate(ctx, q, qdot, tau, t, t+e.cfg.ControlDt, e.cfg.Dt); err != nil {
			return result, err
		}
		last := e.integ.Steps() - 1
		if q, err = e.integ.GetX(last); err != nil {
			return result, err
		}
		if qdot, err = e.integ.GetXDot(last); err != nil {
			return result, err
		}
		t += e.cfg.ControlDt

		result.Times = append(result.Times, t)
		result.Q = append(result.Q, append([]float64(nil), q...))
		result.QDot = append(result.QDot, append([]float64(nil), qdot...))
		result.Torques = append(result.Torques, append([]float64(nil), tau...))

		lengths := make([]float64, nb)
		acts := make([]float64, nb)
		for k, m := range reg.Muscles() {
			lengths[k] = m.Length()
			acts[k] = states[k].Activation
		}
		result.Lengths = append(result.Lengths, lengths)
		result.Activations = append(result.Activations, acts)
	}

	return result, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/integrate"
	"github.com/tleroux/myosim/internal/muscle"
	"github.com/tleroux/myosim/internal/rigid"
)

// Model bundles a reference chain, its muscle registry and a starting pose.
// It stands in for a model loaded from a description file; the loading
// layer itself lives outside this core.
type Model struct {
	Name    string
	Chain   *rigid.PlanarChain
	Muscles *muscle.Registry
	InitQ   biomech.GeneralizedCoordinates
}

type Registry struct {
	models   map[string]func() (*Model, error)
	steppers map[string]func() integrate.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:   make(map[string]func() (*Model, error)),
		steppers: make(map[string]func() integrate.Stepper),
	}

	r.models["arm2"] = buildArm2
	r.models["finger3"] = buildFinger3

	r.steppers["euler"] = func() integrate.Stepper { return integrate.NewEuler() }
	r.steppers["rk4"] = func() integrate.Stepper { return integrate.NewRK4() }
	r.steppers["rk45"] = func() integrate.Stepper { return integrate.NewRK45() }

	return r
}

func (r *Registry) GetModel(name string) (*Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn()
}

func (r *Registry) GetStepper(name string) (integrate.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

func (r *Registry) ListSteppers() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	return names
}

// buildArm2 is a two-link planar arm: shoulder and elbow revolute joints,
// an antagonist muscle pair per joint.
func buildArm2() (*Model, error) {
	chain := rigid.NewPlanarChain(9.81,
		rigid.Link{Name: "upperarm", Length: 0.30, Mass: 2.0, Inertia: 0.015, Damping: 0.10},
		rigid.Link{Name: "forearm", Length: 0.25, Mass: 1.5, Inertia: 0.010, Damping: 0.05},
	)

	reg := muscle.NewRegistry(chain)
	char := muscle.Characteristics{
		OptimalLength:   0.12,
		MaxVelocity:     1.2,
		TauActivation:   0.01,
		TauDeactivation: 0.04,
	}

	if err := reg.AddMuscleGroup("shoulder", rigid.GroundName, "upperarm"); err != nil {
		return nil, err
	}
	shoulder, err := reg.MuscleGroupNamed("shoulder")
	if err != nil {
		return nil, err
	}
	shoulder.AddMuscle(muscle.NewMuscle("deltoid_ant", char, muscle.Hill{MaxForce: 900},
		muscle.NewPathNode("origin", rigid.GroundName, r3.Vec{X: -0.02, Y: 0.05}),
		muscle.NewPathNode("insertion", "upperarm", r3.Vec{X: 0.12, Y: 0.02}),
	))
	shoulder.AddMuscle(muscle.NewMuscle("deltoid_post", char, muscle.Hill{MaxForce: 900},
		muscle.NewPathNode("origin", rigid.GroundName, r3.Vec{X: -0.02, Y: -0.05}),
		muscle.NewPathNode("insertion", "upperarm", r3.Vec{X: 0.12, Y: -0.02}),
	))

	if err := reg.AddMuscleGroup("elbow", "upperarm", "forearm"); err != nil {
		return nil, err
	}
	elbow, err := reg.MuscleGroupNamed("elbow")
	if err != nil {
		return nil, err
	}
	elbow.AddMuscle(muscle.NewMuscle("brachialis", char, muscle.Hill{MaxForce: 700},
		muscle.NewPathNode("origin", "upperarm", r3.Vec{X: 0.18, Y: 0.015}),
		muscle.NewPathNode("insertion", "forearm", r3.Vec{X: 0.05, Y: 0.012}),
	))
	elbow.AddMuscle(muscle.NewMuscle("triceps_med", char, muscle.Hill{MaxForce: 800},
		muscle.NewPathNode("origin", "upperarm", r3.Vec{X: 0.18, Y: -0.015}),
		muscle.NewPathNode("insertion", "forearm", r3.Vec{X: 0.05, Y: -0.012}),
	))

	return &Model{
		Name:    "arm2",
		Chain:   chain,
		Muscles: reg,
		InitQ:   biomech.GeneralizedCoordinates{-1.2, 0.6},
	}, nil
}

// buildFinger3 is a three-link digit: a deep flexor routed through a
// via-point on every phalanx, a superficial flexor ending on the middle
// phalanx, and a common extensor.
func buildFinger3() (*Model, error) {
	chain := rigid.NewPlanarChain(0,
		rigid.Link{Name: "proximal", Length: 0.050, Mass: 0.05, Inertia: 2e-5, Damping: 0.002},
		rigid.Link{Name: "middle", Length: 0.030, Mass: 0.03, Inertia: 1e-5, Damping: 0.002},
		rigid.Link{Name: "distal", Length: 0.020, Mass: 0.02, Inertia: 5e-6, Damping: 0.001},
	)

	reg := muscle.NewRegistry(chain)
	char := muscle.Characteristics{
		OptimalLength:   0.08,
		MaxVelocity:     0.5,
		TauActivation:   0.01,
		TauDeactivation: 0.04,
	}

	if err := reg.AddMuscleGroup("finger", rigid.GroundName, "distal"); err != nil {
		return nil, err
	}
	finger, err := reg.MuscleGroupNamed("finger")
	if err != nil {
		return nil, err
	}
	finger.AddMuscle(muscle.NewMuscle("flexor_prof", char, muscle.Hill{MaxForce: 120},
		muscle.NewPathNode("origin", rigid.GroundName, r3.Vec{X: -0.01, Y: -0.006}),
		muscle.NewPathNode("via_proximal", "proximal", r3.Vec{X: 0.025, Y: -0.005}),
		muscle.NewPathNode("via_middle", "middle", r3.Vec{X: 0.015, Y: -0.004}),
		muscle.NewPathNode("insertion", "distal", r3.Vec{X: 0.012, Y: -0.003}),
	))
	finger.AddMuscle(muscle.NewMuscle("flexor_sup", char, muscle.Hill{MaxForce: 100},
		muscle.NewPathNode("origin", rigid.GroundName, r3.Vec{X: -0.01, Y: -0.008}),
		muscle.NewPathNode("via_proximal", "proximal", r3.Vec{X: 0.025, Y: -0.006}),
		muscle.NewPathNode("insertion", "middle", r3.Vec{X: 0.018, Y: -0.004}),
	))
	finger.AddMuscle(muscle.NewMuscle("extensor_comm", char, muscle.Hill{MaxForce: 80},
		muscle.NewPathNode("origin", rigid.GroundName, r3.Vec{X: -0.01, Y: 0.006}),
		muscle.NewPathNode("via_proximal", "proximal", r3.Vec{X: 0.025, Y: 0.005}),
		muscle.NewPathNode("insertion", "distal", r3.Vec{X: 0.012, Y: 0.003}),
	))

	return &Model{
		Name:    "finger3",
		Chain:   chain,
		Muscles: reg,
		InitQ:   biomech.GeneralizedCoordinates{0.2, 0.3, 0.2},
	}, nil
}

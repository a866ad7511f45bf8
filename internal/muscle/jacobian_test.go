package muscle

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/rigid"
)

func fingerModel(t *testing.T) (*rigid.PlanarChain, *Registry) {
	t.Helper()
	chain := rigid.NewPlanarChain(0,
		rigid.Link{Name: "proximal", Length: 0.05, Mass: 0.05, Inertia: 2e-5},
		rigid.Link{Name: "middle", Length: 0.03, Mass: 0.03, Inertia: 1e-5},
	)
	reg := NewRegistry(chain)

	if err := reg.AddMuscleGroup("finger", rigid.GroundName, "middle"); err != nil {
		t.Fatalf("add group failed: %v", err)
	}
	g, _ := reg.MuscleGroupNamed("finger")
	g.AddMuscle(NewMuscle("flexor", DefaultCharacteristics(), Ideal{MaxForce: 100},
		NewPathNode("origin", rigid.GroundName, r3.Vec{X: -0.01, Y: -0.006}),
		NewPathNode("via", "proximal", r3.Vec{X: 0.025, Y: -0.005}),
		NewPathNode("insertion", "middle", r3.Vec{X: 0.015, Y: -0.004}),
	))
	g.AddMuscle(NewMuscle("extensor", DefaultCharacteristics(), Ideal{MaxForce: 80},
		NewPathNode("origin", rigid.GroundName, r3.Vec{X: -0.01, Y: 0.006}),
		NewPathNode("insertion", "middle", r3.Vec{X: 0.015, Y: 0.004}),
	))
	return chain, reg
}

func muscleLengthsAt(t *testing.T, reg *Registry, q biomech.GeneralizedCoordinates) []float64 {
	t.Helper()
	if err := reg.UpdateMuscles(q, true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	out := make([]float64, 0, reg.NbMuscles())
	for _, m := range reg.Muscles() {
		out = append(out, m.Length())
	}
	return out
}

func TestLengthJacobianFiniteDifference(t *testing.T) {
	_, reg := fingerModel(t)
	q := biomech.GeneralizedCoordinates{0.4, 0.6}

	jac, err := reg.MusclesLengthJacobianAt(q)
	if err != nil {
		t.Fatalf("jacobian failed: %v", err)
	}

	const h = 1e-7
	for k := range q {
		qp := q.Clone()
		qm := q.Clone()
		qp[k] += h
		qm[k] -= h

		lp := muscleLengthsAt(t, reg, qp)
		lm := muscleLengthsAt(t, reg, qm)

		for i := 0; i < reg.NbMuscles(); i++ {
			fd := (lp[i] - lm[i]) / (2 * h)
			if math.Abs(jac.At(i, k)-fd) > 1e-6 {
				t.Errorf("muscle %d dof %d: analytic %e, finite difference %e", i, k, jac.At(i, k), fd)
			}
		}
	}
}

func TestMuscularJointTorqueMatchesJacobian(t *testing.T) {
	_, reg := fingerModel(t)
	q := biomech.GeneralizedCoordinates{0.2, 0.5}
	f := []float64{40, 15}

	jac, err := reg.MusclesLengthJacobianAt(q)
	if err != nil {
		t.Fatalf("jacobian failed: %v", err)
	}
	tau, err := reg.MuscularJointTorque(f)
	if err != nil {
		t.Fatalf("torque failed: %v", err)
	}

	// tau = -J^T F, by hand
	for k := range q {
		want := 0.0
		for i := range f {
			want -= jac.At(i, k) * f[i]
		}
		if math.Abs(tau[k]-want) > 1e-12 {
			t.Errorf("joint %d: expected torque %f, got %f", k, want, tau[k])
		}
	}
}

func TestAntagonistGradientsOppose(t *testing.T) {
	_, reg := fingerModel(t)

	// the two muscles straddle the joint axis: rotating the proximal joint
	// lengthens one and shortens the other
	jac, err := reg.MusclesLengthJacobianAt(biomech.GeneralizedCoordinates{0.1, 0.1})
	if err != nil {
		t.Fatalf("jacobian failed: %v", err)
	}
	if jac.At(0, 0)*jac.At(1, 0) >= 0 {
		t.Errorf("expected opposite length gradients, got %e and %e", jac.At(0, 0), jac.At(1, 0))
	}
}

func TestSetMusclePointsBypass(t *testing.T) {
	chain, reg := fingerModel(t)
	q := biomech.GeneralizedCoordinates{0.3, 0.4}

	// reference pass through the full geometry pipeline
	if err := reg.UpdateMuscles(q, true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	wantJac, err := reg.MusclesLengthJacobian()
	if err != nil {
		t.Fatalf("jacobian failed: %v", err)
	}
	wantLengths := make([]float64, 0, reg.NbMuscles())
	for _, m := range reg.Muscles() {
		wantLengths = append(wantLengths, m.Length())
	}

	// feed the same positions and point Jacobians through the bypass
	points := make([][]r3.Vec, 0, reg.NbMuscles())
	jacs := make([][]*mat.Dense, 0, reg.NbMuscles())
	for _, m := range reg.Muscles() {
		ps := make([]r3.Vec, 0, len(m.Nodes()))
		js := make([]*mat.Dense, 0, len(m.Nodes()))
		for _, n := range m.Nodes() {
			ps = append(ps, n.Global())
			j, err := chain.PointJacobian(chain.BodyID(n.Parent), n.Local)
			if err != nil {
				t.Fatalf("point jacobian failed: %v", err)
			}
			js = append(js, j)
		}
		points = append(points, ps)
		jacs = append(jacs, js)
	}

	if err := reg.SetMusclePoints(points, jacs); err != nil {
		t.Fatalf("bypass update failed: %v", err)
	}

	gotJac, err := reg.MusclesLengthJacobian()
	if err != nil {
		t.Fatalf("jacobian failed: %v", err)
	}
	for i, m := range reg.Muscles() {
		if math.Abs(m.Length()-wantLengths[i]) > 1e-12 {
			t.Errorf("muscle %d: bypass length %f, pipeline length %f", i, m.Length(), wantLengths[i])
		}
		for k := 0; k < 2; k++ {
			if math.Abs(gotJac.At(i, k)-wantJac.At(i, k)) > 1e-12 {
				t.Errorf("muscle %d dof %d: bypass %e, pipeline %e", i, k, gotJac.At(i, k), wantJac.At(i, k))
			}
		}
	}
}

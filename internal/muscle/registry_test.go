package muscle

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/rigid"
)

func TestAddMuscleGroupDuplicate(t *testing.T) {
	_, reg := oneLinkModel()

	if err := reg.AddMuscleGroup("grp", rigid.GroundName, "link"); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	err := reg.AddMuscleGroup("grp", rigid.GroundName, "link")
	if !errors.Is(err, biomech.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestMuscleGroupID(t *testing.T) {
	_, reg := oneLinkModel()

	if id := reg.MuscleGroupID("missing"); id != -1 {
		t.Errorf("expected -1 before any group, got %d", id)
	}

	if err := reg.AddMuscleGroup("first", rigid.GroundName, "link"); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddMuscleGroup("second", rigid.GroundName, "link"); err != nil {
		t.Fatal(err)
	}

	if id := reg.MuscleGroupID("first"); id != 0 {
		t.Errorf("expected id 0, got %d", id)
	}
	if id := reg.MuscleGroupID("second"); id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}
	if id := reg.MuscleGroupID("missing"); id != -1 {
		t.Errorf("expected -1 for unknown group, got %d", id)
	}
}

func TestMuscleGroupOutOfRange(t *testing.T) {
	_, reg := oneLinkModel()

	if _, err := reg.MuscleGroup(0); !errors.Is(err, biomech.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestMuscleCountsAndOrder(t *testing.T) {
	_, reg := oneLinkModel()
	char := DefaultCharacteristics()

	if err := reg.AddMuscleGroup("a", rigid.GroundName, "link"); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddMuscleGroup("b", rigid.GroundName, "link"); err != nil {
		t.Fatal(err)
	}
	ga, _ := reg.MuscleGroupNamed("a")
	gb, _ := reg.MuscleGroupNamed("b")

	node := func() []*PathNode {
		return []*PathNode{
			NewPathNode("origin", rigid.GroundName, r3.Vec{}),
			NewPathNode("insertion", "link", r3.Vec{X: 0.5}),
		}
	}
	ga.AddMuscle(NewMuscle("m1", char, Ideal{MaxForce: 1}, node()...))
	ga.AddMuscle(NewMuscle("m2", char, Ideal{MaxForce: 1}, node()...))
	gb.AddMuscle(NewMuscle("m3", char, Ideal{MaxForce: 1}, node()...))

	if got := reg.NbMuscleGroups(); got != 2 {
		t.Errorf("expected 2 groups, got %d", got)
	}
	if got := reg.NbMuscles(); got != 3 {
		t.Errorf("expected 3 muscles, got %d", got)
	}
	if got := reg.NbMuscleTotal(); got != 3 {
		t.Errorf("expected total 3, got %d", got)
	}

	// group-major order defines the Jacobian rows
	names := reg.MuscleNames()
	want := []string{"m1", "m2", "m3"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}

	m, err := reg.Muscle(2)
	if err != nil {
		t.Fatalf("muscle lookup failed: %v", err)
	}
	if m.Name() != "m3" {
		t.Errorf("expected m3 at flat index 2, got %s", m.Name())
	}
	if _, err := reg.Muscle(3); !errors.Is(err, biomech.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestStaleGeometryRejected(t *testing.T) {
	_, reg := oneLinkModel()
	addStraightMuscle(t, reg)

	if _, err := reg.MusclesLengthJacobian(); !errors.Is(err, biomech.ErrStaleGeometry) {
		t.Errorf("expected ErrStaleGeometry before any update, got %v", err)
	}
	if _, err := reg.MuscularJointTorque([]float64{1}); !errors.Is(err, biomech.ErrStaleGeometry) {
		t.Errorf("expected ErrStaleGeometry for torque query, got %v", err)
	}

	if err := reg.UpdateMuscles(biomech.GeneralizedCoordinates{0.2}, true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := reg.MusclesLengthJacobian(); err != nil {
		t.Errorf("expected fresh jacobian after update, got %v", err)
	}
}

func TestUpdateMusclesDimensionMismatch(t *testing.T) {
	_, reg := oneLinkModel()
	addStraightMuscle(t, reg)

	err := reg.UpdateMuscles(biomech.GeneralizedCoordinates{0, 0}, true)
	if !errors.Is(err, biomech.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	err = reg.UpdateMusclesVelocity(biomech.GeneralizedCoordinates{0}, biomech.GeneralizedVelocity{0, 0}, true)
	if !errors.Is(err, biomech.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for qdot, got %v", err)
	}
}

func TestTorqueWithoutMuscles(t *testing.T) {
	_, reg := oneLinkModel()

	if err := reg.UpdateMuscles(biomech.GeneralizedCoordinates{0.1}, true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	tau, err := reg.MuscularJointTorque([]float64{})
	if err != nil {
		t.Fatalf("torque failed: %v", err)
	}
	if len(tau) != 1 || tau[0] != 0 {
		t.Errorf("expected zero torque vector, got %v", tau)
	}
}

func TestStateSetReused(t *testing.T) {
	_, reg := oneLinkModel()
	addStraightMuscle(t, reg)

	states := reg.StateSet()
	if len(states) != 1 {
		t.Fatalf("expected 1 state, got %d", len(states))
	}
	states[0].Excitation = 0.7

	again := reg.StateSet()
	if again[0] != states[0] {
		t.Error("expected the same state instances on repeated calls")
	}
	if again[0].Excitation != 0.7 {
		t.Errorf("expected excitation to persist, got %f", again[0].Excitation)
	}
}

func TestDeepCopyIndependence(t *testing.T) {
	_, reg := oneLinkModel()
	m := addStraightMuscle(t, reg)

	if err := reg.UpdateMuscles(biomech.GeneralizedCoordinates{0.5}, true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	reg.StateSet()[0].Activation = 0.3

	cp := reg.DeepCopy()

	cpMuscle, err := cp.Muscle(0)
	if err != nil {
		t.Fatalf("copy muscle lookup failed: %v", err)
	}
	if cpMuscle == m {
		t.Fatal("copy shares muscle instances with the original")
	}
	if math.Abs(cpMuscle.Length()-m.Length()) > 1e-15 {
		t.Errorf("copy lost cached length: %f vs %f", cpMuscle.Length(), m.Length())
	}

	// mutating the copy must not leak back
	cp.StateSet()[0].Activation = 0.9
	if reg.StateSet()[0].Activation != 0.3 {
		t.Errorf("original state mutated through the copy: %f", reg.StateSet()[0].Activation)
	}

	// the copy's cached jacobian stays queryable without a fresh update
	if _, err := cp.MusclesLengthJacobian(); err != nil {
		t.Errorf("expected fresh jacobian in the copy, got %v", err)
	}
}

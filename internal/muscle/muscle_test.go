package muscle

import (
	"math"
	"testing"
)

func TestActivationDotSigns(t *testing.T) {
	m := NewMuscle("m", DefaultCharacteristics(), Ideal{MaxForce: 1})

	rising := NewState(1.0, 0.1)
	if adot := m.ActivationDot(rising, true); adot <= 0 {
		t.Errorf("expected positive derivative when excitation exceeds activation, got %f", adot)
	}

	falling := NewState(0.0, 0.8)
	if adot := m.ActivationDot(falling, true); adot >= 0 {
		t.Errorf("expected negative derivative when excitation is below activation, got %f", adot)
	}

	settled := NewState(0.5, 0.5)
	if adot := m.ActivationDot(settled, true); adot != 0 {
		t.Errorf("expected zero derivative at equilibrium, got %f", adot)
	}
}

func TestActivationFasterThanDeactivation(t *testing.T) {
	m := NewMuscle("m", DefaultCharacteristics(), Ideal{MaxForce: 1})

	up := m.ActivationDot(NewState(1.0, 0.5), true)
	down := m.ActivationDot(NewState(0.0, 0.5), true)
	if up <= -down {
		t.Errorf("expected activation (%f) to outpace deactivation (%f)", up, -down)
	}
}

func TestActivationDotNormalizesExcitation(t *testing.T) {
	m := NewMuscle("m", DefaultCharacteristics(), Ideal{MaxForce: 1})

	s := NewState(2.0, 0.5)
	s.ExcitationMax = 2.0

	raw := m.ActivationDot(s, false)

	ref := NewState(1.0, 0.5)
	want := m.ActivationDot(ref, true)
	if math.Abs(raw-want) > 1e-15 {
		t.Errorf("expected rescaled excitation to match, got %f vs %f", raw, want)
	}

	// out-of-range excitation clamps to [0,1]
	s2 := NewState(3.5, 0.5)
	clamped := m.ActivationDot(s2, true)
	if math.Abs(clamped-want) > 1e-15 {
		t.Errorf("expected clamped excitation to match unit excitation, got %f vs %f", clamped, want)
	}
}

func TestIdealForce(t *testing.T) {
	model := Ideal{MaxForce: 500}

	if f := model.Force(NewState(0, 0.5), 1.3, -0.2); f != 250 {
		t.Errorf("expected 250, got %f", f)
	}
	if f := model.Force(NewState(0, 0), 1, 0); f != 0 {
		t.Errorf("expected zero force at zero activation, got %f", f)
	}
}

func TestHillForceAtOptimal(t *testing.T) {
	model := Hill{MaxForce: 100}

	// fully activated, optimal length, isometric: peak active force
	if f := model.Force(NewState(0, 1), 1.0, 0.0); math.Abs(f-100) > 1e-12 {
		t.Errorf("expected peak force 100, got %f", f)
	}
}

func TestHillForceLengthFalloff(t *testing.T) {
	model := Hill{MaxForce: 100}
	s := NewState(0, 1)

	peak := model.Force(s, 1.0, 0.0)
	short := model.Force(s, 0.7, 0.0)
	if short >= peak {
		t.Errorf("expected reduced force away from optimal length, got %f >= %f", short, peak)
	}
}

func TestHillForceVelocity(t *testing.T) {
	model := Hill{MaxForce: 100}
	s := NewState(0, 1)

	iso := model.Force(s, 1.0, 0.0)
	concentric := model.Force(s, 1.0, -0.5)
	eccentric := model.Force(s, 1.0, 0.5)

	if concentric >= iso {
		t.Errorf("expected shortening to reduce force: %f >= %f", concentric, iso)
	}
	if eccentric <= iso {
		t.Errorf("expected lengthening to increase force: %f <= %f", eccentric, iso)
	}

	// at the maximal shortening velocity the active force vanishes
	if f := model.Force(s, 1.0, -1.0); math.Abs(f) > 1e-12 {
		t.Errorf("expected zero force at max shortening velocity, got %f", f)
	}
}

func TestHillPassiveForce(t *testing.T) {
	model := Hill{MaxForce: 100}

	// no activation: only the passive element, and only beyond optimal length
	if f := model.Force(NewState(0, 0), 0.9, 0.0); f != 0 {
		t.Errorf("expected no passive force below optimal length, got %f", f)
	}
	if f := model.Force(NewState(0, 0), 1.3, 0.0); f <= 0 {
		t.Errorf("expected passive force beyond optimal length, got %f", f)
	}
}

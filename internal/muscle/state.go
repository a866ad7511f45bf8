package muscle

import "math"

// State is the dynamic state of one muscle: its neural excitation and its
// contractile activation. One State per muscle is supplied per simulation
// step; the registry converts a batch of them into forces or activation
// derivatives.
type State struct {
	Excitation float64
	Activation float64

	// ExcitationMax rescales raw excitation into the canonical [0,1] range
	// when a query is made with alreadyNormalized=false.
	ExcitationMax float64
}

func NewState(excitation, activation float64) *State {
	return &State{Excitation: excitation, Activation: activation, ExcitationMax: 1}
}

func (s *State) clone() *State {
	c := *s
	return &c
}

// normalizedExcitation clamps excitation into [0,1], rescaling by
// ExcitationMax first unless the caller asserts it is already normalized.
func (s *State) normalizedExcitation(alreadyNormalized bool) float64 {
	e := s.Excitation
	if !alreadyNormalized && s.ExcitationMax > 0 {
		e /= s.ExcitationMax
	}
	return math.Min(1, math.Max(0, e))
}

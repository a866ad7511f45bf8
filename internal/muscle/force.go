package muscle

import "math"

// ForceModel turns a muscle's dynamic state and its normalized length and
// velocity into a scalar tension.
type ForceModel interface {
	Force(s *State, normLength, normVelocity float64) float64
}

// Ideal is the simplest force model: tension proportional to activation,
// independent of length and velocity.
type Ideal struct {
	MaxForce float64
}

func (m Ideal) Force(s *State, normLength, normVelocity float64) float64 {
	return m.MaxForce * s.Activation
}

// Hill is a reduced Hill-type model: gaussian active force-length,
// hyperbolic force-velocity and an exponential passive element.
type Hill struct {
	MaxForce float64
}

func (m Hill) Force(s *State, normLength, normVelocity float64) float64 {
	fl := math.Exp(-(normLength - 1) * (normLength - 1) / 0.45)

	v := math.Max(-1, normVelocity)
	var fv float64
	if v < 0 {
		// concentric branch, zero force at the max shortening velocity
		fv = (1 + v) / (1 - 4*v)
	} else {
		fv = 1 + 0.5*v/(0.25+v)
	}

	fp := 0.0
	if normLength > 1 {
		fp = 0.02 * (math.Exp(5*(normLength-1)) - 1)
	}

	return m.MaxForce * (s.Activation*fl*fv + fp)
}

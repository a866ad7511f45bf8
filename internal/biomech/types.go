package biomech

import "math"

type GeneralizedCoordinates []float64

func (q GeneralizedCoordinates) Clone() GeneralizedCoordinates {
	c := make(GeneralizedCoordinates, len(q))
	copy(c, q)
	return c
}

func (q GeneralizedCoordinates) IsValid() bool { return isValid(q) }

type GeneralizedVelocity []float64

func (v GeneralizedVelocity) Clone() GeneralizedVelocity {
	c := make(GeneralizedVelocity, len(v))
	copy(c, v)
	return c
}

func (v GeneralizedVelocity) IsValid() bool { return isValid(v) }

type GeneralizedAcceleration []float64

func (a GeneralizedAcceleration) Clone() GeneralizedAcceleration {
	c := make(GeneralizedAcceleration, len(a))
	copy(c, a)
	return c
}

func (a GeneralizedAcceleration) IsValid() bool { return isValid(a) }

type GeneralizedTorque []float64

func (tau GeneralizedTorque) Clone() GeneralizedTorque {
	c := make(GeneralizedTorque, len(tau))
	copy(c, tau)
	return c
}

func (tau GeneralizedTorque) IsValid() bool { return isValid(tau) }

func (tau GeneralizedTorque) Norm() float64 {
	sum := 0.0
	for _, v := range tau {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func isValid(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/rigid"
)

// EnergyMeter evaluates the mechanical energy of a planar chain state:
// translational and rotational kinetic energy of every link plus the
// gravitational potential referenced to y=0.
type EnergyMeter struct {
	chain *rigid.PlanarChain
}

func NewEnergyMeter(chain *rigid.PlanarChain) *EnergyMeter {
	return &EnergyMeter{chain: chain}
}

func (e *EnergyMeter) Total(q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity) (float64, error) {
	if err := e.chain.UpdateKinematics(q); err != nil {
		return 0, err
	}

	g := e.chain.Gravity()
	total := 0.0
	omega := 0.0
	for i, l := range e.chain.Links() {
		if i < len(qdot) {
			omega += qdot[i]
		}

		jc, err := e.chain.PointJacobian(i+1, r3.Vec{X: l.Length / 2})
		if err != nil {
			return 0, err
		}

		var vx, vy float64
		for k := 0; k < e.chain.NbQ() && k < len(qdot); k++ {
			vx += jc.At(0, k) * qdot[k]
			vy += jc.At(1, k) * qdot[k]
		}

		rt, err := e.chain.GlobalTransform(i + 1)
		if err != nil {
			return 0, err
		}
		com := rt.Apply(r3.Vec{X: l.Length / 2})

		total += 0.5*l.Mass*(vx*vx+vy*vy) + 0.5*l.Inertia*omega*omega + l.Mass*g*com.Y
	}
	return total, nil
}

// Series evaluates the energy at every recorded sample.
func (e *EnergyMeter) Series(q, qdot [][]float64) ([]float64, error) {
	out := make([]float64, len(q))
	for i := range q {
		total, err := e.Total(q[i], qdot[i])
		if err != nil {
			return nil, err
		}
		out[i] = total
	}
	return out, nil
}

// Drift is the largest deviation from the initial energy over a series,
// relative to the initial magnitude. Zero for empty or constant series.
func Drift(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	ref := series[0]
	scale := math.Abs(ref)
	if scale < 1e-12 {
		scale = 1
	}

	max := 0.0
	for _, v := range series[1:] {
		if d := math.Abs(v-ref) / scale; d > max {
			max = d
		}
	}
	return max
}

package muscle

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/rigid"
)

// geometryEngine recomputes a muscle's via-point world positions and its
// path length from the solver's body transforms at the cached pose.
type geometryEngine struct {
	solver rigid.Solver
}

// update refreshes node positions and the path length of one muscle. The
// solver kinematics must already be current.
func (e geometryEngine) update(m *Muscle) error {
	for _, n := range m.nodes {
		if !n.bound {
			id := e.solver.BodyID(n.Parent)
			if id < 0 {
				return fmt.Errorf("%w: %q (via-point %q of muscle %q)", biomech.ErrUnknownSegment, n.Parent, n.Name, m.name)
			}
			n.body = id
			n.bound = true
		}
		rt, err := e.solver.GlobalTransform(n.body)
		if err != nil {
			return err
		}
		n.global = rt.Apply(n.Local)
	}

	m.length = pathLength(m.effectivePath())
	return nil
}

func (m *Muscle) effectivePath() []r3.Vec {
	points := make([]r3.Vec, len(m.nodes))
	for i, n := range m.nodes {
		points[i] = n.global
	}
	return m.path.EffectivePath(points)
}

func pathLength(points []r3.Vec) float64 {
	length := 0.0
	for i := 1; i < len(points); i++ {
		length += r3.Norm(r3.Sub(points[i], points[i-1]))
	}
	return length
}

package muscle

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/rigid"
)

// jacobianAssembler differentiates muscle path length with respect to the
// generalized coordinates: one row per muscle, built from the per-via-point
// positional Jacobians supplied by the solver.
type jacobianAssembler struct {
	solver rigid.Solver
}

// row accumulates, over consecutive via-point pairs, the unit path
// direction contracted with the difference of the endpoint Jacobians:
//
//	dL/dq = sum_i u_i^T (J(p_{i+1}) - J(p_i))
//
// Node world positions must already be current.
func (a jacobianAssembler) row(m *Muscle) ([]float64, error) {
	n := a.solver.NbQ()
	out := make([]float64, n)

	if len(m.nodes) < 2 {
		return out, nil
	}

	prev, err := a.solver.PointJacobian(m.nodes[0].body, m.nodes[0].Local)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(m.nodes); i++ {
		cur, err := a.solver.PointJacobian(m.nodes[i].body, m.nodes[i].Local)
		if err != nil {
			return nil, err
		}

		seg := r3.Sub(m.nodes[i].global, m.nodes[i-1].global)
		if norm := r3.Norm(seg); norm > 0 {
			u := r3.Scale(1/norm, seg)
			accumulateRow(out, u, cur, prev)
		}
		prev = cur
	}
	return out, nil
}

// rowFromPoints is the bypass form: the caller supplies the world positions
// and one 3xNbQ Jacobian per via-point.
func rowFromPoints(points []r3.Vec, jacs []*mat.Dense, ndof int) []float64 {
	out := make([]float64, ndof)
	for i := 1; i < len(points); i++ {
		seg := r3.Sub(points[i], points[i-1])
		norm := r3.Norm(seg)
		if norm == 0 {
			continue
		}
		u := r3.Scale(1/norm, seg)
		accumulateRow(out, u, jacs[i], jacs[i-1])
	}
	return out
}

func accumulateRow(out []float64, u r3.Vec, far, near mat.Matrix) {
	for k := range out {
		out[k] += u.X*(far.At(0, k)-near.At(0, k)) +
			u.Y*(far.At(1, k)-near.At(1, k)) +
			u.Z*(far.At(2, k)-near.At(2, k))
	}
}

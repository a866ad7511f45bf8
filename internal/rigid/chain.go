package rigid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
)

// GroundName is the implicit root segment every chain carries. Its body id
// is 0 and its transform is the identity at every pose.
const GroundName = "ground"

// Link is one segment of a planar chain. The link frame sits at the
// proximal joint with the x axis running along the link, so the distal end
// is at local (Length, 0, 0).
type Link struct {
	Name    string
	Length  float64
	Mass    float64
	Inertia float64 // about the joint axis, at the link COM
	Damping float64 // viscous joint damping
}

// PlanarChain is a serial revolute-Z chain rooted at the ground. It is the
// reference Solver used by the demo models and the test suites.
//
// Forward dynamics assembles the joint-space mass matrix from the link COM
// Jacobians and solves M qddot = tau + g(q) - d qdot. Velocity-product
// terms are omitted; a production solver owns the exact equations of
// motion.
type PlanarChain struct {
	links   []Link
	gravity float64
	ids     map[string]int

	// pose cache
	q      biomech.GeneralizedCoordinates
	frames []RotoTrans
	fresh  bool
}

func NewPlanarChain(gravity float64, links ...Link) *PlanarChain {
	ids := map[string]int{GroundName: 0}
	for i, l := range links {
		ids[l.Name] = i + 1
	}
	return &PlanarChain{
		links:   links,
		gravity: gravity,
		ids:     ids,
		frames:  make([]RotoTrans, len(links)+1),
	}
}

func (c *PlanarChain) NbQ() int { return len(c.links) }

// Links returns the chain's links in root-to-tip order.
func (c *PlanarChain) Links() []Link { return c.links }

// Gravity returns the gravitational acceleration acting along -y.
func (c *PlanarChain) Gravity() float64 { return c.gravity }

func (c *PlanarChain) BodyID(name string) int {
	id, ok := c.ids[name]
	if !ok {
		return -1
	}
	return id
}

func (c *PlanarChain) UpdateKinematics(q biomech.GeneralizedCoordinates) error {
	if len(q) != c.NbQ() {
		return fmt.Errorf("%w: got %d coordinates, chain has %d dof", biomech.ErrDimensionMismatch, len(q), c.NbQ())
	}
	if !q.IsValid() {
		return fmt.Errorf("%w: non-finite generalized coordinates", biomech.ErrNumericalFailure)
	}

	c.frames[0] = Identity()
	for i := range c.links {
		parent := c.frames[i]
		if i > 0 {
			parent = parent.Mul(Translation(r3.Vec{X: c.links[i-1].Length}))
		}
		c.frames[i+1] = parent.Mul(RotZ(q[i]))
	}

	c.q = q.Clone()
	c.fresh = true
	return nil
}

func (c *PlanarChain) GlobalTransform(body int) (RotoTrans, error) {
	if body < 0 || body >= len(c.frames) {
		return RotoTrans{}, fmt.Errorf("%w: body %d of %d", biomech.ErrOutOfRange, body, len(c.frames))
	}
	if !c.fresh {
		return RotoTrans{}, biomech.ErrStaleGeometry
	}
	return c.frames[body], nil
}

// PointJacobian builds the world-frame positional Jacobian analytically:
// each joint at or below the body contributes a column z x (p - o), where o
// is that joint's world position.
func (c *PlanarChain) PointJacobian(body int, local r3.Vec) (*mat.Dense, error) {
	if body < 0 || body >= len(c.frames) {
		return nil, fmt.Errorf("%w: body %d of %d", biomech.ErrOutOfRange, body, len(c.frames))
	}
	if !c.fresh {
		return nil, biomech.ErrStaleGeometry
	}

	jac := mat.NewDense(3, c.NbQ(), nil)
	p := c.frames[body].Apply(local)
	for j := 1; j <= body; j++ {
		r := r3.Sub(p, c.frames[j].Trans())
		jac.Set(0, j-1, -r.Y)
		jac.Set(1, j-1, r.X)
	}
	return jac, nil
}

func (c *PlanarChain) ForwardDynamics(q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity, tau biomech.GeneralizedTorque) (biomech.GeneralizedAcceleration, error) {
	n := c.NbQ()
	if len(qdot) != n || len(tau) != n {
		return nil, fmt.Errorf("%w: qdot %d, tau %d, chain has %d dof", biomech.ErrDimensionMismatch, len(qdot), len(tau), n)
	}
	if err := c.UpdateKinematics(q); err != nil {
		return nil, err
	}

	m := mat.NewDense(n, n, nil)
	rhs := make([]float64, n)
	copy(rhs, tau)

	grav := r3.Vec{Y: -c.gravity}
	for i, l := range c.links {
		jc, err := c.PointJacobian(i+1, r3.Vec{X: l.Length / 2})
		if err != nil {
			return nil, err
		}

		// M += m Jc^T Jc, plus the rotational inertia of every joint pair
		// driving this link (planar: omega_i is the sum of the joint rates).
		var mt mat.Dense
		mt.Mul(jc.T(), jc)
		for r := 0; r < n; r++ {
			for col := 0; col < n; col++ {
				add := l.Mass * mt.At(r, col)
				if r <= i && col <= i {
					add += l.Inertia
				}
				m.Set(r, col, m.At(r, col)+add)
			}
		}

		// Generalized gravity: g_k = m g . Jc[:,k].
		for k := 0; k < n; k++ {
			rhs[k] += l.Mass * (grav.X*jc.At(0, k) + grav.Y*jc.At(1, k) + grav.Z*jc.At(2, k))
		}

		rhs[i] -= l.Damping * qdot[i]
	}

	sym := mat.NewSymDense(n, nil)
	for r := 0; r < n; r++ {
		for col := r; col < n; col++ {
			sym.SetSym(r, col, m.At(r, col))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: mass matrix is not positive definite", biomech.ErrNumericalFailure)
	}

	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, mat.NewVecDense(n, rhs)); err != nil {
		return nil, fmt.Errorf("%w: %v", biomech.ErrNumericalFailure, err)
	}

	qddot := make(biomech.GeneralizedAcceleration, n)
	for i := 0; i < n; i++ {
		qddot[i] = sol.AtVec(i)
	}
	if !qddot.IsValid() {
		return nil, fmt.Errorf("%w: non-finite accelerations", biomech.ErrNumericalFailure)
	}
	return qddot, nil
}

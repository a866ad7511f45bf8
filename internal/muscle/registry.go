package muscle

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/rigid"
)

// Registry owns the named muscle groups of one model and orchestrates all
// pose-dependent recomputation. The rigid-body solver is injected at
// construction and held as a non-owning reference; deep copies of the
// registry share it.
type Registry struct {
	solver rigid.Solver
	geom   geometryEngine
	assemb jacobianAssembler
	groups []*Group

	// version counts kinematic updates; cached quantities carry the
	// version they were computed at and are stale when the two disagree.
	version    uint64
	jac        *mat.Dense
	jacVersion uint64

	states []*State
}

func NewRegistry(solver rigid.Solver) *Registry {
	return &Registry{
		solver: solver,
		geom:   geometryEngine{solver: solver},
		assemb: jacobianAssembler{solver: solver},
	}
}

// AddMuscleGroup appends a new empty group. The name must be unique.
func (r *Registry) AddMuscleGroup(name, origin, insertion string) error {
	if r.MuscleGroupID(name) >= 0 {
		return fmt.Errorf("%w: muscle group %q", biomech.ErrDuplicateName, name)
	}
	r.groups = append(r.groups, &Group{name: name, origin: origin, insertion: insertion})
	return nil
}

// MuscleGroupID returns the dense id of a named group, or -1 if absent.
func (r *Registry) MuscleGroupID(name string) int {
	for i, g := range r.groups {
		if g.name == name {
			return i
		}
	}
	return -1
}

func (r *Registry) MuscleGroup(idx int) (*Group, error) {
	if idx < 0 || idx >= len(r.groups) {
		return nil, fmt.Errorf("%w: muscle group %d of %d", biomech.ErrOutOfRange, idx, len(r.groups))
	}
	return r.groups[idx], nil
}

func (r *Registry) MuscleGroupNamed(name string) (*Group, error) {
	id := r.MuscleGroupID(name)
	if id < 0 {
		return nil, fmt.Errorf("%w: muscle group %q", biomech.ErrOutOfRange, name)
	}
	return r.groups[id], nil
}

func (r *Registry) NbMuscleGroups() int { return len(r.groups) }

func (r *Registry) NbMuscles() int {
	n := 0
	for _, g := range r.groups {
		n += g.NbMuscles()
	}
	return n
}

// NbMuscleTotal is an alias kept for symmetry with the introspection API.
func (r *Registry) NbMuscleTotal() int { return r.NbMuscles() }

// Muscles returns every muscle in group-major order. This order defines
// the rows of the muscle-length Jacobian and the force vector layout.
func (r *Registry) Muscles() []*Muscle {
	out := make([]*Muscle, 0, r.NbMuscles())
	for _, g := range r.groups {
		out = append(out, g.muscles...)
	}
	return out
}

func (r *Registry) Muscle(idx int) (*Muscle, error) {
	if idx < 0 {
		return nil, fmt.Errorf("%w: muscle %d", biomech.ErrOutOfRange, idx)
	}
	for _, g := range r.groups {
		if idx < g.NbMuscles() {
			return g.muscles[idx], nil
		}
		idx -= g.NbMuscles()
	}
	return nil, fmt.Errorf("%w: muscle index exceeds %d muscles", biomech.ErrOutOfRange, r.NbMuscles())
}

func (r *Registry) MuscleNames() []string {
	names := make([]string, 0, r.NbMuscles())
	for _, g := range r.groups {
		for _, m := range g.muscles {
			names = append(names, m.name)
		}
	}
	return names
}

// UpdateMuscles recomputes via-point world positions, path lengths and the
// muscle-length Jacobian at Q. With updateKinematics=false the solver's
// joint-transform cache is trusted as-is; the caller holds that invariant.
func (r *Registry) UpdateMuscles(q biomech.GeneralizedCoordinates, updateKinematics bool) error {
	return r.update(q, nil, updateKinematics)
}

// UpdateMusclesVelocity additionally derives each muscle's lengthening
// velocity by contracting its Jacobian row with QDot.
func (r *Registry) UpdateMusclesVelocity(q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity, updateKinematics bool) error {
	if len(qdot) != r.solver.NbQ() {
		return fmt.Errorf("%w: qdot has %d entries, model has %d dof", biomech.ErrDimensionMismatch, len(qdot), r.solver.NbQ())
	}
	return r.update(q, qdot, updateKinematics)
}

func (r *Registry) update(q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity, updateKinematics bool) error {
	if len(q) != r.solver.NbQ() {
		return fmt.Errorf("%w: q has %d entries, model has %d dof", biomech.ErrDimensionMismatch, len(q), r.solver.NbQ())
	}
	if updateKinematics {
		if err := r.solver.UpdateKinematics(q); err != nil {
			return err
		}
	}

	nb := r.NbMuscles()
	ndof := r.solver.NbQ()
	var jac *mat.Dense
	if nb > 0 {
		jac = mat.NewDense(nb, ndof, nil)
	}

	r.version++
	i := 0
	for _, g := range r.groups {
		for _, m := range g.muscles {
			if err := r.geom.update(m); err != nil {
				return err
			}
			row, err := r.assemb.row(m)
			if err != nil {
				return err
			}
			m.jacRow = row
			m.velocity = dot(row, qdot)
			m.version = r.version
			jac.SetRow(i, row)
			i++
		}
	}

	r.jac = jac
	r.jacVersion = r.version
	return nil
}

// SetMusclePoints is the bypass update: the caller injects precomputed
// world via-point positions and per-point Jacobians, one slice per muscle
// in group-major order. Used to reuse one geometry evaluation across
// several force queries at the same pose.
func (r *Registry) SetMusclePoints(points [][]r3.Vec, jacs [][]*mat.Dense) error {
	return r.setPoints(points, jacs, nil)
}

// SetMusclePointsVelocity is the bypass update with muscle velocities
// derived from QDot.
func (r *Registry) SetMusclePointsVelocity(points [][]r3.Vec, jacs [][]*mat.Dense, qdot biomech.GeneralizedVelocity) error {
	if len(qdot) != r.solver.NbQ() {
		return fmt.Errorf("%w: qdot has %d entries, model has %d dof", biomech.ErrDimensionMismatch, len(qdot), r.solver.NbQ())
	}
	return r.setPoints(points, jacs, qdot)
}

func (r *Registry) setPoints(points [][]r3.Vec, jacs [][]*mat.Dense, qdot biomech.GeneralizedVelocity) error {
	nb := r.NbMuscles()
	if len(points) != nb || len(jacs) != nb {
		return fmt.Errorf("%w: %d point sets and %d jacobian sets for %d muscles", biomech.ErrDimensionMismatch, len(points), len(jacs), nb)
	}

	ndof := r.solver.NbQ()
	var jac *mat.Dense
	if nb > 0 {
		jac = mat.NewDense(nb, ndof, nil)
	}

	r.version++
	i := 0
	for _, g := range r.groups {
		for _, m := range g.muscles {
			if len(points[i]) != len(m.nodes) || len(jacs[i]) != len(m.nodes) {
				return fmt.Errorf("%w: muscle %q has %d via-points, got %d positions and %d jacobians",
					biomech.ErrDimensionMismatch, m.name, len(m.nodes), len(points[i]), len(jacs[i]))
			}
			for k, n := range m.nodes {
				n.global = points[i][k]
			}
			m.length = pathLength(m.effectivePath())
			m.jacRow = rowFromPoints(points[i], jacs[i], ndof)
			m.velocity = dot(m.jacRow, qdot)
			m.version = r.version
			jac.SetRow(i, m.jacRow)
			i++
		}
	}

	r.jac = jac
	r.jacVersion = r.version
	return nil
}

// MusclesLengthJacobian returns a copy of the cached muscle-length
// Jacobian (#muscles x ndof). It fails with ErrStaleGeometry if no update
// has run yet.
func (r *Registry) MusclesLengthJacobian() (*mat.Dense, error) {
	if err := r.requireFresh(); err != nil {
		return nil, err
	}
	if r.jac == nil {
		return nil, nil
	}
	return mat.DenseCopyOf(r.jac), nil
}

// MusclesLengthJacobianAt recomputes the geometry at Q first.
func (r *Registry) MusclesLengthJacobianAt(q biomech.GeneralizedCoordinates) (*mat.Dense, error) {
	if err := r.UpdateMuscles(q, true); err != nil {
		return nil, err
	}
	return r.MusclesLengthJacobian()
}

// MuscularJointTorque maps muscle forces to generalized joint torques via
// the virtual-power principle, tau = -J^T F. The geometry must be current.
func (r *Registry) MuscularJointTorque(f []float64) (biomech.GeneralizedTorque, error) {
	if err := r.requireFresh(); err != nil {
		return nil, err
	}
	nb := r.NbMuscles()
	if len(f) != nb {
		return nil, fmt.Errorf("%w: %d forces for %d muscles", biomech.ErrDimensionMismatch, len(f), nb)
	}

	n := r.solver.NbQ()
	tau := make(biomech.GeneralizedTorque, n)
	if nb == 0 {
		return tau, nil
	}

	var v mat.VecDense
	v.MulVec(r.jac.T(), mat.NewVecDense(nb, f))
	for k := 0; k < n; k++ {
		tau[k] = -v.AtVec(k)
	}
	return tau, nil
}

// MuscularJointTorqueAt refreshes the geometry at (Q, QDot) and then maps
// forces to torques. Safe but more expensive than MuscularJointTorque.
func (r *Registry) MuscularJointTorqueAt(f []float64, q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity) (biomech.GeneralizedTorque, error) {
	if err := r.UpdateMusclesVelocity(q, qdot, true); err != nil {
		return nil, err
	}
	return r.MuscularJointTorque(f)
}

// MuscularJointTorqueFromStates converts states to forces through each
// muscle's force model, then maps them to torques.
func (r *Registry) MuscularJointTorqueFromStates(states []*State) (biomech.GeneralizedTorque, error) {
	f, err := r.MuscleForces(states)
	if err != nil {
		return nil, err
	}
	return r.MuscularJointTorque(f)
}

// MuscularJointTorqueFromStatesAt refreshes geometry at (Q, QDot) first.
func (r *Registry) MuscularJointTorqueFromStatesAt(states []*State, q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity) (biomech.GeneralizedTorque, error) {
	if err := r.UpdateMusclesVelocity(q, qdot, true); err != nil {
		return nil, err
	}
	return r.MuscularJointTorqueFromStates(states)
}

// MuscleForces evaluates each muscle's force model at the cached geometry,
// group-major order. The geometry must be current.
func (r *Registry) MuscleForces(states []*State) ([]float64, error) {
	if err := r.requireFresh(); err != nil {
		return nil, err
	}
	nb := r.NbMuscles()
	if len(states) != nb {
		return nil, fmt.Errorf("%w: %d states for %d muscles", biomech.ErrDimensionMismatch, len(states), nb)
	}

	f := make([]float64, nb)
	i := 0
	for _, g := range r.groups {
		for _, m := range g.muscles {
			f[i] = m.Force(states[i])
			i++
		}
	}
	return f, nil
}

// MuscleForcesAt refreshes geometry at (Q, QDot) first.
func (r *Registry) MuscleForcesAt(states []*State, q biomech.GeneralizedCoordinates, qdot biomech.GeneralizedVelocity) ([]float64, error) {
	if err := r.UpdateMusclesVelocity(q, qdot, true); err != nil {
		return nil, err
	}
	return r.MuscleForces(states)
}

// ActivationDot returns each state's activation time-derivative under its
// muscle's activation dynamics. Pure state dynamics: no geometry needed.
func (r *Registry) ActivationDot(states []*State, alreadyNormalized bool) ([]float64, error) {
	nb := r.NbMuscles()
	if len(states) != nb {
		return nil, fmt.Errorf("%w: %d states for %d muscles", biomech.ErrDimensionMismatch, len(states), nb)
	}

	out := make([]float64, nb)
	i := 0
	for _, g := range r.groups {
		for _, m := range g.muscles {
			out[i] = m.ActivationDot(states[i], alreadyNormalized)
			i++
		}
	}
	return out, nil
}

// StateSet returns one State per muscle in group-major order. The slice is
// created on first use and reused afterwards, so callers mutate the same
// states across steps.
func (r *Registry) StateSet() []*State {
	if len(r.states) != r.NbMuscles() {
		r.states = make([]*State, r.NbMuscles())
		for i := range r.states {
			r.states[i] = NewState(0, 0)
		}
	}
	return r.states
}

// DeepCopy duplicates every group, muscle, via-point and cache so that
// mutating the copy never affects the original. The solver reference is
// shared: it is owned by the surrounding model, not by the registry.
func (r *Registry) DeepCopy() *Registry {
	c := NewRegistry(r.solver)
	c.version = r.version
	c.jacVersion = r.jacVersion
	c.groups = make([]*Group, len(r.groups))
	for i, g := range r.groups {
		c.groups[i] = g.deepCopy()
	}
	if r.jac != nil {
		c.jac = mat.DenseCopyOf(r.jac)
	}
	if r.states != nil {
		c.states = make([]*State, len(r.states))
		for i, s := range r.states {
			c.states[i] = s.clone()
		}
	}
	return c
}

func (r *Registry) requireFresh() error {
	if r.version == 0 || r.jacVersion != r.version {
		return biomech.ErrStaleGeometry
	}
	return nil
}

func dot(row []float64, v []float64) float64 {
	if v == nil {
		return 0
	}
	sum := 0.0
	for i := range row {
		sum += row[i] * v[i]
	}
	return sum
}

package muscle

// Characteristics are the constant parameters of one musculotendon unit.
type Characteristics struct {
	OptimalLength   float64 // m, length at which active force peaks
	MaxVelocity     float64 // m/s, maximal shortening velocity
	TauActivation   float64 // s
	TauDeactivation float64 // s
}

func DefaultCharacteristics() Characteristics {
	return Characteristics{
		OptimalLength:   0.10,
		MaxVelocity:     1.0,
		TauActivation:   0.01,
		TauDeactivation: 0.04,
	}
}

// Muscle is one musculotendon path: an ordered chain of via-points from
// origin to insertion plus a force model. Length, velocity and the Jacobian
// row are derived quantities cached per the most recent kinematic update,
// tagged with the pose version they were computed at.
type Muscle struct {
	name  string
	nodes []*PathNode
	char  Characteristics
	model ForceModel
	path  PathPolicy

	length   float64
	velocity float64
	jacRow   []float64
	version  uint64 // 0 means never computed
}

func NewMuscle(name string, char Characteristics, model ForceModel, nodes ...*PathNode) *Muscle {
	return &Muscle{
		name:  name,
		nodes: nodes,
		char:  char,
		model: model,
		path:  StraightLine{},
	}
}

// SetPathPolicy swaps the wrapping policy applied to the raw via-points.
func (m *Muscle) SetPathPolicy(p PathPolicy) { m.path = p }

func (m *Muscle) Name() string { return m.name }

func (m *Muscle) Characteristics() Characteristics { return m.char }

// Nodes returns the via-points in origin-to-insertion order.
func (m *Muscle) Nodes() []*PathNode { return m.nodes }

// Length is the musculotendon length from the last geometry update.
func (m *Muscle) Length() float64 { return m.length }

// Velocity is the lengthening rate from the last velocity-aware update.
func (m *Muscle) Velocity() float64 { return m.velocity }

// Force evaluates the muscle's force model at the cached length and
// velocity, normalized by the muscle characteristics.
func (m *Muscle) Force(s *State) float64 {
	nl := 1.0
	if m.char.OptimalLength > 0 {
		nl = m.length / m.char.OptimalLength
	}
	nv := 0.0
	if m.char.MaxVelocity > 0 {
		nv = m.velocity / m.char.MaxVelocity
	}
	return m.model.Force(s, nl, nv)
}

// ActivationDot is the first-order activation dynamics of the muscle. The
// time constant is asymmetric: activation is faster than deactivation, and
// both scale with the current activation level.
func (m *Muscle) ActivationDot(s *State, alreadyNormalized bool) float64 {
	e := s.normalizedExcitation(alreadyNormalized)
	a := s.Activation

	num := e - a
	var denom float64
	if num > 0 {
		denom = m.char.TauActivation * (0.5 + 1.5*a)
	} else {
		denom = m.char.TauDeactivation / (0.5 + 1.5*a)
	}
	return num / denom
}

func (m *Muscle) deepCopy() *Muscle {
	c := &Muscle{
		name:     m.name,
		nodes:    make([]*PathNode, len(m.nodes)),
		char:     m.char,
		model:    m.model,
		path:     m.path,
		length:   m.length,
		velocity: m.velocity,
		version:  m.version,
	}
	for i, n := range m.nodes {
		c.nodes[i] = n.clone()
	}
	if m.jacRow != nil {
		c.jacRow = make([]float64, len(m.jacRow))
		copy(c.jacRow, m.jacRow)
	}
	return c
}

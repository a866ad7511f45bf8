package muscle

import "gonum.org/v1/gonum/spatial/r3"

// PathNode is one via-point of a muscle path: a 3D point rigidly attached
// to a parent body segment. Its world position follows that segment's
// transform and is cached per the most recent geometry update.
type PathNode struct {
	Name   string
	Parent string
	Local  r3.Vec

	body   int // resolved on first geometry update
	bound  bool
	global r3.Vec
}

func NewPathNode(name, parent string, local r3.Vec) *PathNode {
	return &PathNode{Name: name, Parent: parent, Local: local}
}

// Global returns the cached world position from the last geometry update.
func (n *PathNode) Global() r3.Vec { return n.global }

func (n *PathNode) clone() *PathNode {
	c := *n
	return &c
}

// PathPolicy maps the raw via-point chain to the effective path the length
// computation runs over. Wrapping geometries plug in here; the default is
// the straight-line identity.
type PathPolicy interface {
	EffectivePath(points []r3.Vec) []r3.Vec
}

type StraightLine struct{}

func (StraightLine) EffectivePath(points []r3.Vec) []r3.Vec { return points }

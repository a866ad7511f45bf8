package muscle

import (
	"fmt"

	"github.com/tleroux/myosim/internal/biomech"
)

// Group is a named container of muscles sharing an origin/insertion
// segment pair. Groups own their muscles.
type Group struct {
	name      string
	origin    string
	insertion string
	muscles   []*Muscle
}

func (g *Group) Name() string      { return g.name }
func (g *Group) Origin() string    { return g.origin }
func (g *Group) Insertion() string { return g.insertion }

func (g *Group) AddMuscle(m *Muscle) { g.muscles = append(g.muscles, m) }

func (g *Group) NbMuscles() int { return len(g.muscles) }

func (g *Group) Muscle(idx int) (*Muscle, error) {
	if idx < 0 || idx >= len(g.muscles) {
		return nil, fmt.Errorf("%w: muscle %d of %d in group %q", biomech.ErrOutOfRange, idx, len(g.muscles), g.name)
	}
	return g.muscles[idx], nil
}

func (g *Group) deepCopy() *Group {
	c := &Group{
		name:      g.name,
		origin:    g.origin,
		insertion: g.insertion,
		muscles:   make([]*Muscle, len(g.muscles)),
	}
	for i, m := range g.muscles {
		c.muscles[i] = m.deepCopy()
	}
	return c
}

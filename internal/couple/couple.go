// Package couple marks which embedded solute particles take part in
// the solvent collision step. The group only reads solute state: it
// never mutates positions or velocities and never changes the particle
// count or identity between calls, so the solute integration methods
// stay the sole owners of solute dynamics.
package couple

import (
	"fmt"

	"github.com/san-kum/mesoflow/internal/meso"
)

// Group references (never copies) a solute particle store and selects
// the subset coupled into the collision cells.
type Group struct {
	particles *meso.Particles
	mask      []bool
	selected  []int
}

// NewGroup couples every particle in the store by default.
func NewGroup(p *meso.Particles) (*Group, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: coupling group needs a solute store", meso.ErrNotReady)
	}
	return &Group{particles: p}, nil
}

func (g *Group) Particles() *meso.Particles { return g.particles }

// SetMask restricts coupling to the flagged particles. The mask length
// must match the store; particle identity is positional and stable.
func (g *Group) SetMask(mask []bool) error {
	if len(mask) != g.particles.N() {
		return fmt.Errorf("%w: mask length %d does not match %d solute particles",
			meso.ErrParameter, len(mask), g.particles.N())
	}
	g.mask = mask
	return nil
}

// Select returns the indices participating in the next collision. The
// returned slice is reused between calls; callers must not retain it
// across rebuilds.
func (g *Group) Select() []int {
	g.selected = g.selected[:0]
	for i := 0; i < g.particles.N(); i++ {
		if g.mask == nil || g.mask[i] {
			g.selected = append(g.selected, i)
		}
	}
	return g.selected
}

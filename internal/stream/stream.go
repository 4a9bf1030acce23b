package stream

import (
	"fmt"

	"github.com/san-kum/mesoflow/internal/meso"
)

// Method advances solvent positions ballistically over one streaming
// interval. Streaming never touches solute particles; those belong to
// the per-base-step integration methods.
type Method interface {
	Advance(p *meso.Particles, box meso.Box, dt float64)
	Period() int
	Phase() int
}

// Bulk is unconfined free streaming in a fully periodic box. Velocities
// are untouched.
type Bulk struct {
	period int
	phase  int
}

func NewBulk(period, phase int) (*Bulk, error) {
	if err := checkPeriod(period, phase); err != nil {
		return nil, err
	}
	return &Bulk{period: period, phase: phase}, nil
}

func (b *Bulk) Period() int { return b.period }
func (b *Bulk) Phase() int  { return b.phase }

func (b *Bulk) Advance(p *meso.Particles, box meso.Box, dt float64) {
	meso.ParallelFor(p.N(), 256, func(start, end int) {
		for i := start; i < end; i++ {
			p.Pos[i] = box.Wrap(p.Pos[i].Add(p.Vel[i].Scale(dt)))
		}
	})
}

func checkPeriod(period, phase int) error {
	if period < 1 {
		return fmt.Errorf("%w: period must be >= 1, got %d", meso.ErrParameter, period)
	}
	if phase < 0 {
		return fmt.Errorf("%w: phase must be >= 0, got %d", meso.ErrParameter, phase)
	}
	return nil
}

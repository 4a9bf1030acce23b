package stream

import (
	"fmt"

	"github.com/san-kum/mesoflow/internal/meso"
)

// Slit is an analytic confinement geometry: two parallel plates normal
// to z, at z = Lo and z = Hi. The box stays periodic in x and y.
type Slit struct {
	Lo, Hi float64
}

// Bounceback streams particles ballistically and reflects trajectories
// off the slit walls. The crossing time is solved exactly so the total
// displacement magnitude over dt is preserved and no particle sits
// outside the walls at any sub-instant.
type Bounceback struct {
	period int
	phase  int
	slit   Slit
	noSlip bool
}

// NewBounceback builds the confined streaming variant. noSlip reverses
// the full velocity at the wall (the no-slip rule); otherwise only the
// wall-normal component is reversed (specular).
func NewBounceback(period, phase int, slit Slit, noSlip bool) (*Bounceback, error) {
	if err := checkPeriod(period, phase); err != nil {
		return nil, err
	}
	if slit.Lo >= slit.Hi {
		return nil, fmt.Errorf("%w: slit walls must satisfy lo < hi, got [%g, %g]", meso.ErrConfig, slit.Lo, slit.Hi)
	}
	return &Bounceback{period: period, phase: phase, slit: slit, noSlip: noSlip}, nil
}

func (b *Bounceback) Period() int { return b.period }
func (b *Bounceback) Phase() int  { return b.phase }
func (b *Bounceback) Geometry() Slit { return b.slit }

func (b *Bounceback) Advance(p *meso.Particles, box meso.Box, dt float64) {
	meso.ParallelFor(p.N(), 128, func(start, end int) {
		for i := start; i < end; i++ {
			pos, vel := b.reflect(p.Pos[i], p.Vel[i], dt)
			pos[0] = box.WrapAxis(pos[0], 0)
			pos[1] = box.WrapAxis(pos[1], 1)
			p.Pos[i] = pos
			p.Vel[i] = vel
		}
	})
}

// reflect advances one particle for dt, folding the trajectory at the
// walls. Each reflection leaves the velocity pointing inward, so the
// loop terminates; the iteration cap only guards against degenerate
// velocities many times faster than the gap width.
func (b *Bounceback) reflect(pos, vel meso.Vec3, dt float64) (meso.Vec3, meso.Vec3) {
	remaining := dt
	for iter := 0; remaining > 0 && iter < 64; iter++ {
		z := pos[2] + vel[2]*remaining
		if z >= b.slit.Lo && z <= b.slit.Hi {
			break
		}
		if vel[2] == 0 {
			break
		}

		wall := b.slit.Lo
		if vel[2] > 0 {
			wall = b.slit.Hi
		}
		hit := (wall - pos[2]) / vel[2]
		// A particle that starts outside the walls yields a negative
		// crossing time. Snap it to the wall without crediting travel
		// time, so remaining never grows past dt.
		if hit < 0 {
			hit = 0
		}

		pos = pos.Add(vel.Scale(hit))
		pos[2] = wall
		remaining -= hit

		if b.noSlip {
			vel = vel.Scale(-1)
		} else {
			vel[2] = -vel[2]
		}
	}
	return pos.Add(vel.Scale(remaining)), vel
}

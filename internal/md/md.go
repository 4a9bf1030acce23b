// Package md integrates the embedded solute subsystem. Solute
// particles advance every base step by ordinary deterministic
// dynamics; the concrete potentials stay behind the [ForceField]
// interface and are supplied by the caller.
package md

import "github.com/san-kum/mesoflow/internal/meso"

// Method advances one solute store by a single base timestep.
type Method interface {
	Step(p *meso.Particles, box meso.Box, dt float64)
}

// ForceField evaluates forces on every particle in a store. out has
// length p.N() and is overwritten.
type ForceField interface {
	Forces(p *meso.Particles, box meso.Box, out []meso.Vec3)
}

// ZeroForce is the free-particle field.
type ZeroForce struct{}

func (ZeroForce) Forces(p *meso.Particles, box meso.Box, out []meso.Vec3) {
	for i := range out {
		out[i] = meso.Vec3{}
	}
}

// VelocityVerlet is an NVE method with the usual half-kick layout. The
// force buffer from the end of one step is reused as the start of the
// next, so the field is evaluated once per step after the first.
type VelocityVerlet struct {
	field ForceField
	acc   []meso.Vec3
	fresh bool
}

func NewVelocityVerlet(field ForceField) *VelocityVerlet {
	return &VelocityVerlet{field: field}
}

func (v *VelocityVerlet) ensure(n int) {
	if len(v.acc) != n {
		v.acc = make([]meso.Vec3, n)
		v.fresh = false
	}
}

func (v *VelocityVerlet) Step(p *meso.Particles, box meso.Box, dt float64) {
	n := p.N()
	v.ensure(n)

	if !v.fresh {
		v.field.Forces(p, box, v.acc)
		v.fresh = true
	}

	invM := 1.0 / p.Mass
	half := 0.5 * dt

	for i := 0; i < n; i++ {
		p.Vel[i] = p.Vel[i].Add(v.acc[i].Scale(half * invM))
		p.Pos[i] = box.Wrap(p.Pos[i].Add(p.Vel[i].Scale(dt)))
	}

	v.field.Forces(p, box, v.acc)

	for i := 0; i < n; i++ {
		p.Vel[i] = p.Vel[i].Add(v.acc[i].Scale(half * invM))
	}
}

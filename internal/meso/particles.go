package meso

import (
	"math"
	"math/rand"
)

// Tag identifies the subsystem that owns a particle store.
type Tag int

const (
	Solvent Tag = iota
	Solute
)

func (t Tag) String() string {
	if t == Solute {
		return "solute"
	}
	return "solvent"
}

// Particles is a struct-of-arrays store for one particle subsystem.
// The owning subsystem keeps the store for the lifetime of the run and
// mutates only Pos and Vel in place; other subsystems hold references,
// never copies.
type Particles struct {
	Pos  []Vec3
	Vel  []Vec3
	Mass float64
	Tag  Tag
}

func NewParticles(n int, mass float64, tag Tag) *Particles {
	return &Particles{
		Pos:  make([]Vec3, n),
		Vel:  make([]Vec3, n),
		Mass: mass,
		Tag:  tag,
	}
}

func (p *Particles) N() int { return len(p.Pos) }

func (p *Particles) Clone() *Particles {
	c := NewParticles(p.N(), p.Mass, p.Tag)
	copy(c.Pos, p.Pos)
	copy(c.Vel, p.Vel)
	return c
}

// Momentum returns the total momentum of the store.
func (p *Particles) Momentum() Vec3 {
	var m Vec3
	for _, v := range p.Vel {
		m = m.Add(v)
	}
	return m.Scale(p.Mass)
}

// KineticEnergy returns the total translational kinetic energy.
func (p *Particles) KineticEnergy() float64 {
	ke := 0.0
	for _, v := range p.Vel {
		ke += v.Norm2()
	}
	return 0.5 * p.Mass * ke
}

// Temperature returns the kinetic temperature in reduced units (kB=1),
// using 3N degrees of freedom.
func (p *Particles) Temperature() float64 {
	if p.N() == 0 {
		return 0
	}
	return 2.0 * p.KineticEnergy() / (3.0 * float64(p.N()))
}

// NewRandomSolvent fills a box with n solvent particles at uniformly
// random positions and Maxwell-Boltzmann velocities at temperature kT.
// The net momentum is zeroed so bulk runs start at rest.
func NewRandomSolvent(n int, box Box, mass, kT float64, rng *rand.Rand) *Particles {
	p := NewParticles(n, mass, Solvent)
	sigma := math.Sqrt(kT / mass)
	for i := range p.Pos {
		for k := 0; k < 3; k++ {
			p.Pos[i][k] = rng.Float64() * box.L[k]
			p.Vel[i][k] = sigma * rng.NormFloat64()
		}
	}
	drift := p.Momentum().Scale(1.0 / (mass * float64(n)))
	for i := range p.Vel {
		p.Vel[i] = p.Vel[i].Sub(drift)
	}
	return p
}

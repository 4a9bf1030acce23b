package md

import (
	"math"
	"testing"

	"github.com/san-kum/mesoflow/internal/meso"
)

func TestZeroForceIsBallistic(t *testing.T) {
	box := meso.NewCubicBox(100)
	vv := NewVelocityVerlet(ZeroForce{})

	p := meso.NewParticles(1, 1.0, meso.Solute)
	p.Pos[0] = meso.Vec3{1, 1, 1}
	p.Vel[0] = meso.Vec3{1, 2, 3}

	for i := 0; i < 100; i++ {
		vv.Step(p, box, 0.01)
	}

	want := meso.Vec3{2, 3, 4}
	for k := 0; k < 3; k++ {
		if math.Abs(p.Pos[0][k]-want[k]) > 1e-10 {
			t.Fatalf("position %v, want %v", p.Pos[0], want)
		}
	}
}

// anchorSpring tethers every particle to a fixed point, giving each
// coordinate independent harmonic motion with omega = sqrt(k/m).
type anchorSpring struct {
	k      float64
	anchor meso.Vec3
}

func (s anchorSpring) Forces(p *meso.Particles, box meso.Box, out []meso.Vec3) {
	for i := range out {
		out[i] = s.anchor.Sub(p.Pos[i]).Scale(s.k)
	}
}

func TestVelocityVerletHarmonicAccuracy(t *testing.T) {
	box := meso.NewCubicBox(100)
	anchor := meso.Vec3{50, 50, 50}
	vv := NewVelocityVerlet(anchorSpring{k: 1.0, anchor: anchor})

	p := meso.NewParticles(1, 1.0, meso.Solute)
	p.Pos[0] = meso.Vec3{51, 50, 50}

	dt := 0.01
	steps := 100
	for i := 0; i < steps; i++ {
		vv.Step(p, box, dt)
	}

	tEnd := float64(steps) * dt
	wantX := 50 + math.Cos(tEnd)
	wantV := -math.Sin(tEnd)

	if math.Abs(p.Pos[0][0]-wantX) > 1e-4 {
		t.Errorf("x = %.6f, want %.6f", p.Pos[0][0], wantX)
	}
	if math.Abs(p.Vel[0][0]-wantV) > 1e-4 {
		t.Errorf("vx = %.6f, want %.6f", p.Vel[0][0], wantV)
	}
}

func TestVelocityVerletEnergyDrift(t *testing.T) {
	box := meso.NewCubicBox(100)
	anchor := meso.Vec3{50, 50, 50}
	spring := anchorSpring{k: 1.0, anchor: anchor}
	vv := NewVelocityVerlet(spring)

	p := meso.NewParticles(1, 1.0, meso.Solute)
	p.Pos[0] = meso.Vec3{51, 50, 50}

	energy := func() float64 {
		d := p.Pos[0].Sub(anchor)
		return 0.5*p.Vel[0].Norm2() + 0.5*spring.k*d.Norm2()
	}

	e0 := energy()
	for i := 0; i < 10000; i++ {
		vv.Step(p, box, 0.01)
	}

	if drift := math.Abs(energy()-e0) / e0; drift > 1e-4 {
		t.Errorf("energy drift %.2g over 10000 steps", drift)
	}
}

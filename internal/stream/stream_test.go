package stream

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/mesoflow/internal/meso"
)

func TestPeriodValidation(t *testing.T) {
	if _, err := NewBulk(0, 0); !errors.Is(err, meso.ErrParameter) {
		t.Errorf("period 0: got %v, want ErrParameter", err)
	}
	if _, err := NewBulk(1, -1); !errors.Is(err, meso.ErrParameter) {
		t.Errorf("negative phase: got %v, want ErrParameter", err)
	}
	if _, err := NewBounceback(2, 0, Slit{Lo: 5, Hi: 5}, false); !errors.Is(err, meso.ErrConfig) {
		t.Errorf("degenerate slit: got %v, want ErrConfig", err)
	}
}

func TestBulkAdvance(t *testing.T) {
	box := meso.NewCubicBox(10)
	b, err := NewBulk(1, 0)
	if err != nil {
		t.Fatal(err)
	}

	p := meso.NewParticles(2, 1.0, meso.Solvent)
	p.Pos[0] = meso.Vec3{1, 2, 3}
	p.Vel[0] = meso.Vec3{1, -1, 0.5}
	p.Pos[1] = meso.Vec3{9.5, 0.5, 0}
	p.Vel[1] = meso.Vec3{2, -2, 0}

	b.Advance(p, box, 1.0)

	want0 := meso.Vec3{2, 1, 3.5}
	for k := 0; k < 3; k++ {
		if math.Abs(p.Pos[0][k]-want0[k]) > 1e-12 {
			t.Fatalf("particle 0 at %v, want %v", p.Pos[0], want0)
		}
	}

	// Second particle crosses the periodic boundary in x and y.
	want1 := meso.Vec3{1.5, 8.5, 0}
	for k := 0; k < 3; k++ {
		if math.Abs(p.Pos[1][k]-want1[k]) > 1e-12 {
			t.Fatalf("particle 1 at %v, want %v", p.Pos[1], want1)
		}
	}

	if p.Vel[0] != (meso.Vec3{1, -1, 0.5}) {
		t.Error("bulk streaming must not change velocities")
	}
}

func TestBouncebackReflectsAtWall(t *testing.T) {
	box := meso.NewCubicBox(10)
	slit := Slit{Lo: 2, Hi: 8}
	b, err := NewBounceback(1, 0, slit, false)
	if err != nil {
		t.Fatal(err)
	}

	p := meso.NewParticles(1, 1.0, meso.Solvent)
	p.Pos[0] = meso.Vec3{5, 5, 7.5}
	p.Vel[0] = meso.Vec3{0, 0, 1}

	// Hits the top wall after 0.5 time units, then travels back down
	// for the remaining 0.5: ends at z = 7.5 with vz reversed.
	b.Advance(p, box, 1.0)

	if math.Abs(p.Pos[0][2]-7.5) > 1e-12 {
		t.Errorf("z = %g, want 7.5", p.Pos[0][2])
	}
	if p.Vel[0][2] != -1 {
		t.Errorf("vz = %g, want -1", p.Vel[0][2])
	}
}

func TestBouncebackNoSlipReversesFullVelocity(t *testing.T) {
	box := meso.NewCubicBox(10)
	b, err := NewBounceback(1, 0, Slit{Lo: 2, Hi: 8}, true)
	if err != nil {
		t.Fatal(err)
	}

	p := meso.NewParticles(1, 1.0, meso.Solvent)
	p.Pos[0] = meso.Vec3{5, 5, 7.5}
	p.Vel[0] = meso.Vec3{2, 0, 1}

	b.Advance(p, box, 1.0)

	if p.Vel[0][0] != -2 || p.Vel[0][2] != -1 {
		t.Errorf("no-slip wall must reverse the full velocity, got %v", p.Vel[0])
	}
}

func TestBouncebackNeverPenetrates(t *testing.T) {
	box := meso.NewCubicBox(10)
	slit := Slit{Lo: 3, Hi: 7}
	b, err := NewBounceback(1, 0, slit, false)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(11))
	p := meso.NewParticles(200, 1.0, meso.Solvent)
	for i := range p.Pos {
		p.Pos[i] = meso.Vec3{
			rng.Float64() * 10,
			rng.Float64() * 10,
			slit.Lo + rng.Float64()*(slit.Hi-slit.Lo),
		}
		for k := 0; k < 3; k++ {
			p.Vel[i][k] = 4 * (rng.Float64() - 0.5)
		}
	}

	speeds := make([]float64, p.N())
	for i := range p.Vel {
		speeds[i] = p.Vel[i].Norm()
	}

	for step := 0; step < 50; step++ {
		b.Advance(p, box, 0.7)
		for i := range p.Pos {
			z := p.Pos[i][2]
			if z < slit.Lo-1e-10 || z > slit.Hi+1e-10 {
				t.Fatalf("step %d: particle %d penetrated wall, z=%g", step, i, z)
			}
		}
	}

	// Reflection is elastic: speeds must be preserved exactly.
	for i := range p.Vel {
		if math.Abs(p.Vel[i].Norm()-speeds[i]) > 1e-10 {
			t.Fatalf("particle %d speed changed: %g -> %g", i, speeds[i], p.Vel[i].Norm())
		}
	}
}

// A particle that somehow starts inside a wall must be recovered onto
// the wall and reflected inward, without the negative crossing time
// inflating its travel budget beyond dt.
func TestBouncebackRecoversOutOfDomainParticle(t *testing.T) {
	box := meso.NewCubicBox(10)
	slit := Slit{Lo: 1, Hi: 9}
	b, err := NewBounceback(1, 0, slit, false)
	if err != nil {
		t.Fatal(err)
	}

	p := meso.NewParticles(2, 1.0, meso.Solvent)
	p.Pos[0] = meso.Vec3{5, 5, 0.5}
	p.Vel[0] = meso.Vec3{0, 0, -1}

	// Same bad start but with no wall-normal motion at all.
	p.Pos[1] = meso.Vec3{5, 5, 0.5}
	p.Vel[1] = meso.Vec3{1, 0, 0}

	b.Advance(p, box, 1.0)

	// Snapped to the Lo wall, reflected, then streamed for the full dt:
	// z = 1 + 1, never z = 2.5.
	if math.Abs(p.Pos[0][2]-2.0) > 1e-12 {
		t.Errorf("z = %g, want 2", p.Pos[0][2])
	}
	if p.Vel[0][2] != 1 {
		t.Errorf("vz = %g, want 1", p.Vel[0][2])
	}

	if p.Pos[1][2] != 0.5 || !p.Pos[1].IsValid() {
		t.Errorf("zero normal velocity: z = %g, want 0.5 and finite", p.Pos[1][2])
	}
	if math.Abs(p.Pos[1][0]-6) > 1e-12 {
		t.Errorf("in-plane motion lost, x = %g, want 6", p.Pos[1][0])
	}
}

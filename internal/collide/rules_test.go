package collide_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mesoflow/internal/cell"
	"github.com/san-kum/mesoflow/internal/collide"
	"github.com/san-kum/mesoflow/internal/meso"
)

// makeSystem builds a rebuilt cell list over a random solvent.
func makeSystem(n int, seed int64) (*cell.List, *meso.Particles, *rand.Rand) {
	box := meso.NewCubicBox(4)
	list, err := cell.NewList(box, 1.0)
	Expect(err).NotTo(HaveOccurred())

	rng := rand.New(rand.NewSource(seed))
	solvent := meso.NewRandomSolvent(n, box, 1.0, 1.0, rng)
	list.Rebuild(1, cell.DrawShift(1.0, rng), solvent, nil, nil)
	return list, solvent, rng
}

// cellMomenta returns the mass-weighted velocity sum of every cell.
func cellMomenta(list *cell.List) []meso.Vec3 {
	moms := make([]meso.Vec3, list.NumCells())
	for c := 0; c < list.NumCells(); c++ {
		for _, e := range list.Members(c) {
			m := list.Solvent().Mass
			v := list.Solvent().Vel[e.Index]
			if e.Solute {
				m = list.Solute().Mass
				v = list.Solute().Vel[e.Index]
			}
			moms[c] = moms[c].Add(v.Scale(m))
		}
	}
	return moms
}

var _ = Describe("SRD", func() {
	It("rejects invalid parameters", func() {
		_, err := collide.NewSRD(0, 1, 0)
		Expect(err).To(MatchError(meso.ErrParameter))
		_, err = collide.NewSRD(130, 0, 0)
		Expect(err).To(MatchError(meso.ErrParameter))
		_, err = collide.NewSRD(130, 1, -1)
		Expect(err).To(MatchError(meso.ErrParameter))
	})

	It("fails on a never-rebuilt cell list", func() {
		list, err := cell.NewList(meso.NewCubicBox(4), 1.0)
		Expect(err).NotTo(HaveOccurred())

		srd, err := collide.NewSRD(130, 1, 0)
		Expect(err).NotTo(HaveOccurred())

		err = srd.Apply(list, 1, rand.New(rand.NewSource(1)))
		Expect(err).To(MatchError(meso.ErrNotReady))
	})

	It("conserves per-cell momentum", func() {
		list, _, rng := makeSystem(640, 21)
		srd, err := collide.NewSRD(130, 1, 0)
		Expect(err).NotTo(HaveOccurred())

		before := cellMomenta(list)
		Expect(srd.Apply(list, 1, rng)).To(Succeed())
		after := cellMomenta(list)

		for c := range before {
			for k := 0; k < 3; k++ {
				Expect(after[c][k]).To(BeNumerically("~", before[c][k], 1e-10))
			}
		}
	})

	It("conserves kinetic energy", func() {
		list, solvent, rng := makeSystem(640, 22)
		srd, err := collide.NewSRD(130, 1, 0)
		Expect(err).NotTo(HaveOccurred())

		keBefore := solvent.KineticEnergy()
		for i := 0; i < 20; i++ {
			list.Rebuild(i+1, cell.DrawShift(1.0, rng), solvent, nil, nil)
			Expect(srd.Apply(list, i+1, rng)).To(Succeed())
		}
		Expect(solvent.KineticEnergy()).To(BeNumerically("~", keBefore, 1e-8*keBefore))
	})

	It("skips cells below the minimum occupancy", func() {
		box := meso.NewCubicBox(4)
		list, err := cell.NewList(box, 1.0)
		Expect(err).NotTo(HaveOccurred())

		solvent := meso.NewParticles(1, 1.0, meso.Solvent)
		solvent.Pos[0] = meso.Vec3{0.5, 0.5, 0.5}
		solvent.Vel[0] = meso.Vec3{1, 2, 3}
		list.Rebuild(1, meso.Vec3{}, solvent, nil, nil)

		srd, err := collide.NewSRD(130, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(srd.Apply(list, 1, rand.New(rand.NewSource(5)))).To(Succeed())

		Expect(solvent.Vel[0]).To(Equal(meso.Vec3{1, 2, 3}))
	})

	It("conserves cell angular momentum when enabled", func() {
		// One cell spanning the whole box, particles clustered in the
		// interior so periodic images play no role.
		box := meso.NewCubicBox(2)
		list, err := cell.NewList(box, 2.0)
		Expect(err).NotTo(HaveOccurred())

		rng := rand.New(rand.NewSource(33))
		solvent := meso.NewParticles(16, 1.0, meso.Solvent)
		for i := range solvent.Pos {
			for k := 0; k < 3; k++ {
				solvent.Pos[i][k] = 0.5 + rng.Float64()
				solvent.Vel[i][k] = rng.NormFloat64()
			}
		}
		list.Rebuild(1, meso.Vec3{}, solvent, nil, nil)

		before := angularMomentum(solvent)

		srd, err := collide.NewSRD(130, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		srd.ConserveAngularMomentum(true)
		Expect(srd.Apply(list, 1, rng)).To(Succeed())

		after := angularMomentum(solvent)
		for k := 0; k < 3; k++ {
			Expect(after[k]).To(BeNumerically("~", before[k], 1e-8))
		}
	})
})

var _ = Describe("Andersen", func() {
	It("rejects non-positive temperatures", func() {
		_, err := collide.NewAndersen(0, 1, 0)
		Expect(err).To(MatchError(meso.ErrParameter))
		_, err = collide.NewAndersen(-1, 1, 0)
		Expect(err).To(MatchError(meso.ErrParameter))
	})

	It("conserves per-cell momentum", func() {
		list, _, rng := makeSystem(640, 41)
		at, err := collide.NewAndersen(1.0, 1, 0)
		Expect(err).NotTo(HaveOccurred())

		before := cellMomenta(list)
		Expect(at.Apply(list, 1, rng)).To(Succeed())
		after := cellMomenta(list)

		for c := range before {
			for k := 0; k < 3; k++ {
				Expect(after[c][k]).To(BeNumerically("~", before[c][k], 1e-10))
			}
		}
	})

	It("thermostats the solvent to the target temperature", func() {
		box := meso.NewCubicBox(10)
		list, err := cell.NewList(box, 1.0)
		Expect(err).NotTo(HaveOccurred())

		rng := rand.New(rand.NewSource(43))
		// Start far from the target so the relaxation is visible.
		solvent := meso.NewRandomSolvent(5000, box, 1.0, 4.0, rng)

		at, err := collide.NewAndersen(1.0, 1, 0)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 10; i++ {
			list.Rebuild(i+1, cell.DrawShift(1.0, rng), solvent, nil, nil)
			Expect(at.Apply(list, i+1, rng)).To(Succeed())
		}

		Expect(solvent.Temperature()).To(BeNumerically("~", 1.0, 0.05))
	})

	It("includes coupled solute in the cell average", func() {
		box := meso.NewCubicBox(4)
		list, err := cell.NewList(box, 1.0)
		Expect(err).NotTo(HaveOccurred())

		rng := rand.New(rand.NewSource(47))
		solvent := meso.NewRandomSolvent(320, box, 1.0, 1.0, rng)
		solute := meso.NewRandomSolvent(10, box, 5.0, 1.0, rng)
		solute.Tag = meso.Solute

		embedded := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		list.Rebuild(1, cell.DrawShift(1.0, rng), solvent, solute, embedded)

		totalBefore := solvent.Momentum().Add(solute.Momentum())
		soluteBefore := solute.Clone()

		at, err := collide.NewAndersen(1.0, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(at.Apply(list, 1, rng)).To(Succeed())

		totalAfter := solvent.Momentum().Add(solute.Momentum())
		for k := 0; k < 3; k++ {
			Expect(totalAfter[k]).To(BeNumerically("~", totalBefore[k], 1e-9))
		}

		// The coupler path must update solute velocities but never move
		// solute positions.
		changed := false
		for i := range solute.Vel {
			Expect(solute.Pos[i]).To(Equal(soluteBefore.Pos[i]))
			if solute.Vel[i] != soluteBefore.Vel[i] {
				changed = true
			}
		}
		Expect(changed).To(BeTrue())
	})
})

func angularMomentum(p *meso.Particles) meso.Vec3 {
	var com meso.Vec3
	for _, r := range p.Pos {
		com = com.Add(r)
	}
	com = com.Scale(1.0 / float64(p.N()))

	var L meso.Vec3
	for i := range p.Pos {
		L = L.Add(p.Pos[i].Sub(com).Cross(p.Vel[i]).Scale(p.Mass))
	}
	return L
}

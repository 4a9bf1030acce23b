package collide

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/mesoflow/internal/cell"
	"github.com/san-kum/mesoflow/internal/meso"
)

// Andersen is the Andersen-thermostat rule: every member's deviation
// from the cell mean velocity is replaced by an independent Gaussian
// draw at the target temperature, then the mass-weighted mean of the
// draws is subtracted so the cell momentum comes back to exactly what
// it was. The rule thermostats the cell to kT while conserving
// momentum.
type Andersen struct {
	opts options
	kT   float64

	offsets []int
	draws   []meso.Vec3
}

func NewAndersen(kT float64, period, phase int) (*Andersen, error) {
	opts, err := newOptions(period, phase)
	if err != nil {
		return nil, err
	}
	if kT <= 0 {
		return nil, fmt.Errorf("%w: temperature must be positive, got %g", meso.ErrParameter, kT)
	}
	return &Andersen{opts: opts, kT: kT}, nil
}

func (a *Andersen) Period() int           { return a.opts.period }
func (a *Andersen) Phase() int            { return a.opts.phase }
func (a *Andersen) RequiresRebuild() bool { return true }
func (a *Andersen) Temperature() float64  { return a.kT }

// ConserveAngularMomentum toggles the omega x r refinement.
func (a *Andersen) ConserveAngularMomentum(on bool) { a.opts.conserveAM = on }

func (a *Andersen) Apply(cells *cell.List, step int, rng *rand.Rand) error {
	if err := checkBuilt(cells); err != nil {
		return err
	}

	nc := cells.NumCells()
	if len(a.offsets) != nc+1 {
		a.offsets = make([]int, nc+1)
	}
	a.draws = a.draws[:0]

	// Serial pass: one Gaussian velocity per member, drawn in cell and
	// member order. offsets[c] == offsets[c+1] marks a skipped cell.
	for c := 0; c < nc; c++ {
		a.offsets[c] = len(a.draws)
		members := cells.Members(c)
		if len(members) < minOccupancy {
			continue
		}
		for _, e := range members {
			sigma := math.Sqrt(a.kT / massOf(cells, e))
			a.draws = append(a.draws, meso.Vec3{
				sigma * rng.NormFloat64(),
				sigma * rng.NormFloat64(),
				sigma * rng.NormFloat64(),
			})
		}
	}
	a.offsets[nc] = len(a.draws)

	meso.ParallelFor(nc, 64, func(start, end int) {
		var rel, old []meso.Vec3
		for c := start; c < end; c++ {
			if a.offsets[c] == a.offsets[c+1] {
				continue
			}
			rel, old = a.applyCell(cells, c, a.draws[a.offsets[c]:a.offsets[c+1]], rel, old)
		}
	})
	return nil
}

func (a *Andersen) applyCell(cells *cell.List, c int, draws, rel, old []meso.Vec3) ([]meso.Vec3, []meso.Vec3) {
	members := cells.Members(c)
	vcm, total := meanVelocity(cells, members)

	if a.opts.conserveAM {
		rel = relPositions(cells, members, rel)
		old = old[:0]
		for _, e := range members {
			old = append(old, velOf(cells, e))
		}
	}

	// Mass-weighted mean of the fresh draws; subtracting it restores the
	// cell momentum exactly.
	var mean meso.Vec3
	for i, e := range members {
		mean = mean.Add(draws[i].Scale(massOf(cells, e)))
	}
	mean = mean.Scale(1.0 / total)

	for i, e := range members {
		setVel(cells, e, vcm.Add(draws[i].Sub(mean)))
	}

	if a.opts.conserveAM {
		restoreAngularMomentum(cells, members, rel, old)
	}
	return rel, old
}

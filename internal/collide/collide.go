package collide

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/mesoflow/internal/cell"
	"github.com/san-kum/mesoflow/internal/meso"
)

// minOccupancy is the fixed occupancy rule: cells with fewer than two
// members are skipped entirely. A singleton has no velocity deviation
// to redistribute, and merging with neighbors would couple cells that
// the rule treats as independent.
const minOccupancy = 2

// Method is the closed capability set of a collision rule. Apply
// replaces each member's velocity with vcm + rule(v - vcm) cell by
// cell, conserving the cell's momentum exactly. New rules are added as
// new implementations, not by attribute probing.
type Method interface {
	Apply(cells *cell.List, step int, rng *rand.Rand) error
	Period() int
	Phase() int
	RequiresRebuild() bool
}

// options carries the settings shared by every collision rule.
type options struct {
	period     int
	phase      int
	conserveAM bool
}

func newOptions(period, phase int) (options, error) {
	if period < 1 {
		return options{}, fmt.Errorf("%w: collision period must be >= 1, got %d", meso.ErrParameter, period)
	}
	if phase < 0 {
		return options{}, fmt.Errorf("%w: collision phase must be >= 0, got %d", meso.ErrParameter, phase)
	}
	return options{period: period, phase: phase}, nil
}

// checkBuilt is the stale-cell guard: a rule must never run on a list
// that was not rebuilt before the current collision cycle.
func checkBuilt(cells *cell.List) error {
	if cells == nil || cells.BuiltStep() < 0 {
		return fmt.Errorf("%w: collision invoked before the cell list was rebuilt", meso.ErrNotReady)
	}
	return nil
}

func velOf(cells *cell.List, e cell.Entry) meso.Vec3 {
	if e.Solute {
		return cells.Solute().Vel[e.Index]
	}
	return cells.Solvent().Vel[e.Index]
}

func setVel(cells *cell.List, e cell.Entry, v meso.Vec3) {
	if e.Solute {
		cells.Solute().Vel[e.Index] = v
	} else {
		cells.Solvent().Vel[e.Index] = v
	}
}

func posOf(cells *cell.List, e cell.Entry) meso.Vec3 {
	if e.Solute {
		return cells.Solute().Pos[e.Index]
	}
	return cells.Solvent().Pos[e.Index]
}

func massOf(cells *cell.List, e cell.Entry) float64 {
	if e.Solute {
		return cells.Solute().Mass
	}
	return cells.Solvent().Mass
}

// meanVelocity returns the mass-weighted mean velocity of a cell's
// members, solvent and coupled solute alike, plus the total mass.
func meanVelocity(cells *cell.List, members []cell.Entry) (meso.Vec3, float64) {
	var p meso.Vec3
	m := 0.0
	for _, e := range members {
		em := massOf(cells, e)
		p = p.Add(velOf(cells, e).Scale(em))
		m += em
	}
	return p.Scale(1.0 / m), m
}

// randomUnitVector samples a direction uniformly on the sphere. Two
// draws per call, consumed in a fixed order for reproducibility.
func randomUnitVector(rng *rand.Rand) meso.Vec3 {
	z := 2.0*rng.Float64() - 1.0
	phi := 2.0 * math.Pi * rng.Float64()
	s := math.Sqrt(1.0 - z*z)
	return meso.Vec3{s * math.Cos(phi), s * math.Sin(phi), z}
}

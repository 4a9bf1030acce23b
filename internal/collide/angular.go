package collide

import (
	"math"

	"github.com/san-kum/mesoflow/internal/cell"
	"github.com/san-kum/mesoflow/internal/meso"
)

// Angular-momentum conservation is an orthogonal refinement of the
// collision contract: after the stochastic rule runs, each member gets
// a rigid-rotation correction omega x r with omega chosen so the
// cell's angular momentum about its center of mass is restored. The
// correction sums to zero momentum because positions are measured
// relative to the center of mass.

// mat3 is a row-major 3x3 matrix, just enough linear algebra for the
// per-cell moment-of-inertia solve.
type mat3 [3][3]float64

func (m mat3) det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func (m mat3) solve(b meso.Vec3) (meso.Vec3, bool) {
	d := m.det()
	if math.Abs(d) < 1e-12 {
		return meso.Vec3{}, false
	}
	inv := 1.0 / d
	var x meso.Vec3
	x[0] = inv * (b[0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(b[1]*m[2][2]-m[1][2]*b[2]) +
		m[0][2]*(b[1]*m[2][1]-m[1][1]*b[2]))
	x[1] = inv * (m[0][0]*(b[1]*m[2][2]-m[1][2]*b[2]) -
		b[0]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*b[2]-b[1]*m[2][0]))
	x[2] = inv * (m[0][0]*(m[1][1]*b[2]-b[1]*m[2][1]) -
		m[0][1]*(m[1][0]*b[2]-b[1]*m[2][0]) +
		b[0]*(m[1][0]*m[2][1]-m[1][1]*m[2][0]))
	return x, true
}

// relPositions computes member positions relative to the cell's
// mass-weighted center, using minimum-image separations from the first
// member so cells straddling a periodic boundary stay compact.
func relPositions(cells *cell.List, members []cell.Entry, rel []meso.Vec3) []meso.Vec3 {
	box := cells.Box()
	ref := posOf(cells, members[0])

	rel = rel[:0]
	var com meso.Vec3
	total := 0.0
	for _, e := range members {
		r := box.MinImage(posOf(cells, e).Sub(ref))
		rel = append(rel, r)
		m := massOf(cells, e)
		com = com.Add(r.Scale(m))
		total += m
	}
	com = com.Scale(1.0 / total)
	for i := range rel {
		rel[i] = rel[i].Sub(com)
	}
	return rel
}

// restoreAngularMomentum applies the omega x r correction. old holds
// the member velocities before the stochastic rule ran.
func restoreAngularMomentum(cells *cell.List, members []cell.Entry, rel, old []meso.Vec3) {
	var dL meso.Vec3
	var inertia mat3
	for i, e := range members {
		m := massOf(cells, e)
		r := rel[i]
		dL = dL.Add(r.Cross(old[i].Sub(velOf(cells, e))).Scale(m))

		r2 := r.Norm2()
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				inertia[a][b] -= m * r[a] * r[b]
			}
			inertia[a][a] += m * r2
		}
	}

	// Collinear cells have a singular inertia tensor; leave those
	// uncorrected rather than amplifying noise through a bad solve.
	omega, ok := inertia.solve(dL)
	if !ok {
		return
	}
	for i, e := range members {
		setVel(cells, e, velOf(cells, e).Add(omega.Cross(rel[i])))
	}
}

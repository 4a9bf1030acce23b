package cell

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/mesoflow/internal/meso"
)

// Entry locates one cell member in its owning store.
type Entry struct {
	Solute bool
	Index  int
}

// List bins particles into a uniform grid of collision cells. The grid
// origin is offset by a random shift that is redrawn before every
// rebuild, which restores Galilean invariance of the collision rule.
//
// Cells are ephemeral: membership is recomputed on every Rebuild and
// only the shift used to construct the current grid is retained.
type List struct {
	box  meso.Box
	size float64
	dims [3]int

	shift   meso.Vec3
	members [][]Entry

	solvent *meso.Particles
	solute  *meso.Particles

	builtStep int
}

// NewList validates that the cell edge evenly divides every box edge.
// Incommensurate cells break translational invariance of the collision
// statistics, so they are rejected outright.
func NewList(box meso.Box, size float64) (*List, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: cell size must be positive, got %g", meso.ErrParameter, size)
	}
	var dims [3]int
	for i := 0; i < 3; i++ {
		n := box.L[i] / size
		rounded := math.Round(n)
		if rounded < 1 || math.Abs(n-rounded) > 1e-9*n {
			return nil, fmt.Errorf("%w: cell size %g does not divide box edge %g", meso.ErrConfig, size, box.L[i])
		}
		dims[i] = int(rounded)
	}

	total := dims[0] * dims[1] * dims[2]
	return &List{
		box:       box,
		size:      size,
		dims:      dims,
		members:   make([][]Entry, total),
		builtStep: -1,
	}, nil
}

func (l *List) Box() meso.Box   { return l.box }
func (l *List) Size() float64   { return l.size }
func (l *List) Dims() [3]int    { return l.dims }
func (l *List) NumCells() int   { return len(l.members) }
func (l *List) BuiltStep() int  { return l.builtStep }
func (l *List) Shift() meso.Vec3 { return l.shift }

// Members returns the entries binned into cell c by the last Rebuild.
func (l *List) Members(c int) []Entry { return l.members[c] }

// Solvent and Solute resolve entries back to their owning stores.
func (l *List) Solvent() *meso.Particles { return l.solvent }
func (l *List) Solute() *meso.Particles  { return l.solute }

// DrawShift samples a fresh grid shift uniformly from [-size/2, size/2)
// per axis.
func DrawShift(size float64, rng *rand.Rand) meso.Vec3 {
	var s meso.Vec3
	for i := 0; i < 3; i++ {
		s[i] = (rng.Float64() - 0.5) * size
	}
	return s
}

// index bins one position under the current shift. The binning interval
// is half-open [lo, hi): a particle exactly on a boundary belongs to
// the upper cell, deterministically.
func (l *List) index(p meso.Vec3) int {
	var c [3]int
	for i := 0; i < 3; i++ {
		k := int(math.Floor((p[i] + l.shift[i]) / l.size))
		k %= l.dims[i]
		if k < 0 {
			k += l.dims[i]
		}
		c[i] = k
	}
	return (c[2]*l.dims[1]+c[1])*l.dims[0] + c[0]
}

// CellOf returns the cell index a position maps to under the current
// shift, without mutating the list.
func (l *List) CellOf(p meso.Vec3) int { return l.index(p) }

// Rebuild assigns every solvent particle, plus the embedded solute
// particles named in embedded, to exactly one cell. The same shift is
// used for all binning within one collision cycle. Member slices are
// reused across rebuilds to avoid churn.
func (l *List) Rebuild(step int, shift meso.Vec3, solvent *meso.Particles, solute *meso.Particles, embedded []int) {
	l.shift = shift
	l.solvent = solvent
	l.solute = solute

	for c := range l.members {
		l.members[c] = l.members[c][:0]
	}

	for i, p := range solvent.Pos {
		c := l.index(p)
		l.members[c] = append(l.members[c], Entry{Index: i})
	}
	if solute != nil {
		for _, i := range embedded {
			c := l.index(solute.Pos[i])
			l.members[c] = append(l.members[c], Entry{Solute: true, Index: i})
		}
	}

	l.builtStep = step
}

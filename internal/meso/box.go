package meso

import "math"

// Box is an orthorhombic periodic simulation box with coordinates in [0, L).
type Box struct {
	L Vec3
}

func NewBox(lx, ly, lz float64) Box {
	return Box{L: Vec3{lx, ly, lz}}
}

func NewCubicBox(l float64) Box {
	return NewBox(l, l, l)
}

func (b Box) Volume() float64 {
	return b.L[0] * b.L[1] * b.L[2]
}

// Wrap maps a position back into [0, L) along every axis.
func (b Box) Wrap(p Vec3) Vec3 {
	for i := 0; i < 3; i++ {
		p[i] -= b.L[i] * math.Floor(p[i]/b.L[i])
	}
	return p
}

// WrapAxis wraps a single coordinate along one axis.
func (b Box) WrapAxis(x float64, axis int) float64 {
	return x - b.L[axis]*math.Floor(x/b.L[axis])
}

// MinImage returns the minimum-image convention separation vector.
func (b Box) MinImage(d Vec3) Vec3 {
	for i := 0; i < 3; i++ {
		d[i] -= b.L[i] * math.Round(d[i]/b.L[i])
	}
	return d
}

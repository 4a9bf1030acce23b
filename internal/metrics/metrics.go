package metrics

import (
	"github.com/san-kum/mesoflow/internal/meso"
)

// Metric observes the particle stores after every base step and keeps
// a per-step series for plotting. Metrics implement sched.Observer.
type Metric interface {
	Name() string
	OnStep(step int, solvent, solute *meso.Particles)
	Value() float64
	Series() []float64
	Reset()
}

// Momentum tracks the norm of the total solvent momentum. For a
// periodic bulk fluid this should stay at floating-point noise for the
// whole run.
type Momentum struct {
	series []float64
}

func NewMomentum() *Momentum { return &Momentum{} }

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) OnStep(step int, solvent, solute *meso.Particles) {
	m.series = append(m.series, solvent.Momentum().Norm())
}

func (m *Momentum) Value() float64 {
	if len(m.series) == 0 {
		return 0
	}
	return m.series[len(m.series)-1]
}

func (m *Momentum) Series() []float64 { return m.series }
func (m *Momentum) Reset()            { m.series = m.series[:0] }

// Temperature tracks the solvent kinetic temperature per step and its
// running mean.
type Temperature struct {
	series []float64
	sum    float64
}

func NewTemperature() *Temperature { return &Temperature{} }

func (t *Temperature) Name() string { return "temperature" }

func (t *Temperature) OnStep(step int, solvent, solute *meso.Particles) {
	kT := solvent.Temperature()
	t.series = append(t.series, kT)
	t.sum += kT
}

func (t *Temperature) Value() float64 {
	if len(t.series) == 0 {
		return 0
	}
	return t.sum / float64(len(t.series))
}

func (t *Temperature) Series() []float64 { return t.series }

func (t *Temperature) Reset() {
	t.series = t.series[:0]
	t.sum = 0
}

// KineticEnergy tracks the total solvent kinetic energy. Under pure
// stochastic rotation it should be flat; under the Andersen thermostat
// it fluctuates around the target.
type KineticEnergy struct {
	series []float64
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) OnStep(step int, solvent, solute *meso.Particles) {
	k.series = append(k.series, solvent.KineticEnergy())
}

func (k *KineticEnergy) Value() float64 {
	if len(k.series) == 0 {
		return 0
	}
	return k.series[len(k.series)-1]
}

func (k *KineticEnergy) Series() []float64 { return k.series }
func (k *KineticEnergy) Reset()            { k.series = k.series[:0] }

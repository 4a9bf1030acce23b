package sched

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/mesoflow/internal/cell"
	"github.com/san-kum/mesoflow/internal/collide"
	"github.com/san-kum/mesoflow/internal/couple"
	"github.com/san-kum/mesoflow/internal/md"
	"github.com/san-kum/mesoflow/internal/meso"
	"github.com/san-kum/mesoflow/internal/stream"
)

// State is the scheduler lifecycle. Stopped is terminal until the
// caller re-validates.
type State int

const (
	Configuring State = iota
	Validated
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Configuring:
		return "configuring"
	case Validated:
		return "validated"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Config is the immutable scheduler configuration. It is replaced
// wholesale through SetConfig, never mutated in place.
type Config struct {
	Dt       float64
	Box      meso.Box
	CellSize float64
	Seed     int64
}

func (c Config) check() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: base timestep must be positive, got %g", meso.ErrParameter, c.Dt)
	}
	for i := 0; i < 3; i++ {
		if c.Box.L[i] <= 0 {
			return fmt.Errorf("%w: box edge %d must be positive, got %g", meso.ErrParameter, i, c.Box.L[i])
		}
	}
	return nil
}

// Observer is notified after every completed base step.
type Observer interface {
	OnStep(step int, solvent, solute *meso.Particles)
}

// Scheduler drives the solute subsystem every base step and the
// solvent streaming and collision sub-steps at their configured
// multiples of the base timestep. It owns references to the method
// objects and particle stores passed in at attach time; it never
// copies them.
type Scheduler struct {
	cfg   Config
	state State
	step  int
	rng   *rand.Rand

	solvent *meso.Particles
	solute  *meso.Particles
	group   *couple.Group

	// Solvent state as of the latest completed streaming boundary,
	// captured at the end of every boundary step. Snapshot serves this
	// clone, so collisions firing between boundaries (phase-offset
	// schedules) never leak into an externally observed state.
	boundary     *meso.Particles
	boundaryStep int

	streaming     stream.Method
	collision     collide.Method
	soluteMethods []md.Method

	cells     *cell.List
	warnings  []string
	observers []Observer
}

func New(cfg Config) (*Scheduler, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &Scheduler{
		cfg:   cfg,
		state: Configuring,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (s *Scheduler) Config() Config      { return s.cfg }
func (s *Scheduler) State() State        { return s.state }
func (s *Scheduler) CurrentStep() int    { return s.step }
func (s *Scheduler) Time() float64       { return float64(s.step) * s.cfg.Dt }
func (s *Scheduler) Warnings() []string  { return s.warnings }
func (s *Scheduler) Cells() *cell.List   { return s.cells }
func (s *Scheduler) Solvent() *meso.Particles { return s.solvent }
func (s *Scheduler) Solute() *meso.Particles  { return s.solute }

// SetConfig replaces the configuration after re-validating it against
// the attached methods. On error the previous configuration stays in
// effect; on success any previous validation is discarded and the
// caller must validate again before stepping.
func (s *Scheduler) SetConfig(cfg Config) error {
	if err := cfg.check(); err != nil {
		return err
	}
	if err := s.checkPeriods(); err != nil {
		return err
	}
	s.cfg = cfg
	s.cells = nil
	s.state = Configuring
	return nil
}

func (s *Scheduler) SetSolvent(p *meso.Particles) {
	s.solvent = p
	s.boundary = p.Clone()
	s.boundaryStep = 0
	s.state = Configuring
}

// SetSolute attaches the embedded solute store, optionally with a
// coupling group that feeds its particles into the collision cells.
func (s *Scheduler) SetSolute(p *meso.Particles, g *couple.Group) {
	s.solute = p
	s.group = g
	s.state = Configuring
}

// SetStreamingMethod attaches the streaming variant. nil is legal and
// produces a non-fatal warning at validation: the solvent then only
// moves through collisions.
func (s *Scheduler) SetStreamingMethod(m stream.Method) error {
	s.streaming = m
	s.state = Configuring
	return s.checkPeriods()
}

// SetCollisionMethod attaches the collision variant. nil is legal and
// produces a non-fatal warning: the solvent streams without
// interacting.
func (s *Scheduler) SetCollisionMethod(m collide.Method) error {
	s.collision = m
	s.state = Configuring
	return s.checkPeriods()
}

// AttachSoluteMethods registers integration methods invoked once per
// base step. Compatibility between the methods themselves is the
// caller's business.
func (s *Scheduler) AttachSoluteMethods(ms ...md.Method) {
	s.soluteMethods = append(s.soluteMethods, ms...)
	s.state = Configuring
}

func (s *Scheduler) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// checkPeriods enforces the structural invariant eagerly: a collision
// period that is not a multiple of the streaming period would collide
// on stale geometry, so it is rejected at attach time, not mid-run.
func (s *Scheduler) checkPeriods() error {
	if s.streaming != nil && s.collision != nil {
		if s.collision.Period()%s.streaming.Period() != 0 {
			return fmt.Errorf("%w: collision period %d must be a multiple of streaming period %d",
				meso.ErrConfig, s.collision.Period(), s.streaming.Period())
		}
	}
	return nil
}

// Validate moves Configuring (or Stopped) to Validated. Missing
// optional methods downgrade to warnings; structural problems are
// errors and never downgraded.
func (s *Scheduler) Validate() error {
	if s.solvent == nil {
		return fmt.Errorf("%w: no solvent particle store attached", meso.ErrNotReady)
	}
	if len(s.soluteMethods) > 0 && s.solute == nil {
		return fmt.Errorf("%w: solute methods attached without a solute store", meso.ErrNotReady)
	}
	if err := s.checkPeriods(); err != nil {
		return err
	}

	s.warnings = s.warnings[:0]
	if s.streaming == nil {
		s.warnings = append(s.warnings, "running without a streaming method")
	}
	if s.collision == nil {
		s.warnings = append(s.warnings, "running without a collision method")
	}

	if s.collision != nil && s.cells == nil {
		cells, err := cell.NewList(s.cfg.Box, s.cfg.CellSize)
		if err != nil {
			return err
		}
		s.cells = cells
	}

	s.state = Validated
	return nil
}

// Run advances the system by the given number of base steps.
// Cancellation is honored between sub-steps only; no sub-step is ever
// left half-applied.
func (s *Scheduler) Run(ctx context.Context, steps int) error {
	if s.state == Configuring || s.state == Stopped {
		return fmt.Errorf("%w: scheduler is %s; call Validate first", meso.ErrNotReady, s.state)
	}
	s.state = Running

	for i := 0; i < steps; i++ {
		if err := s.advance(ctx); err != nil {
			s.state = Stopped
			return err
		}
	}
	return nil
}

// Stop ends the run. Re-entering Running afterwards requires
// re-validation.
func (s *Scheduler) Stop() {
	s.state = Stopped
}

func due(m interface{ Period() int; Phase() int }, step int) bool {
	d := step - m.Phase()
	return d >= 0 && d%m.Period() == 0
}

// advance executes one base step: solute methods first, then at the
// appropriate multiples the cell rebuild, streaming, and collision
// sub-steps.
func (s *Scheduler) advance(ctx context.Context) error {
	s.step++

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, m := range s.soluteMethods {
		m.Step(s.solute, s.cfg.Box, s.cfg.Dt)
	}

	streamDue := s.streaming != nil && due(s.streaming, s.step)
	collideDue := s.collision != nil && due(s.collision, s.step)

	if streamDue {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.streaming.Advance(s.solvent, s.cfg.Box, s.cfg.Dt*float64(s.streaming.Period()))
		// Rebuild after streaming so collision membership reflects
		// current positions. Every rebuild draws a fresh grid shift.
		if s.cells != nil {
			s.rebuild()
		}
	} else if collideDue && s.streaming == nil {
		// Without a streaming method the collision cycle owns the rebuild.
		s.rebuild()
	}

	if collideDue {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.collision.Apply(s.cells, s.step, s.rng); err != nil {
			return err
		}
	}

	if streamDue {
		s.boundary = s.solvent.Clone()
		s.boundaryStep = s.step
	}

	for _, o := range s.observers {
		o.OnStep(s.step, s.solvent, s.solute)
	}
	return nil
}

func (s *Scheduler) rebuild() {
	shift := cell.DrawShift(s.cells.Size(), s.rng)
	var soluteStore *meso.Particles
	var embedded []int
	if s.group != nil {
		soluteStore = s.group.Particles()
		embedded = s.group.Select()
	}
	s.cells.Rebuild(s.step, shift, s.solvent, soluteStore, embedded)
}

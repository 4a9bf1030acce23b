package sched

import "github.com/san-kum/mesoflow/internal/meso"

// Snapshot is an externally consistent view of both subsystems.
//
// Solvent state is only materialized at streaming boundaries, so the
// solvent copy corresponds to SolventStep, the latest completed
// boundary at or before Step. Solute state corresponds to Step
// exactly, since the solute advances every base step. This asymmetry
// is the contract, not an artifact: callers between boundaries get the
// prior boundary, never a partial sub-step.
type Snapshot struct {
	Step        int
	SolventStep int
	Solvent     *meso.Particles
	Solute      *meso.Particles
}

// Snapshot captures the current externally observable state. The
// solvent copy is the clone captured at the latest completed streaming
// boundary, never the live arrays: a collision due between boundaries
// (a phase-offset schedule) mutates velocities mid-interval, and that
// state is not observable. Without a streaming method every step is a
// boundary and the live state is served.
func (s *Scheduler) Snapshot() *Snapshot {
	snap := &Snapshot{Step: s.step}
	switch {
	case s.streaming == nil:
		snap.SolventStep = s.step
		if s.solvent != nil {
			snap.Solvent = s.solvent.Clone()
		}
	default:
		snap.SolventStep = s.boundaryStep
		if s.boundary != nil {
			snap.Solvent = s.boundary.Clone()
		}
	}
	if s.solute != nil {
		snap.Solute = s.solute.Clone()
	}
	return snap
}

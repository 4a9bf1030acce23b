// Package sched drives the multi-rate step loop: solute integration
// every base step, solvent streaming and collision at their configured
// integer multiples of the base timestep.
//
// The scheduler is a small state machine
// (Configuring -> Validated -> Running -> Stopped). All structural
// invariants are checked eagerly at attach/validate time, in
// particular that the collision period is an integer multiple of the
// streaming period, so a collision landing on a step without a rebuild
// always finds well-defined, intentionally reused geometry.
//
// # Reproducibility
//
// One seeded random stream feeds the grid shifts and the stochastic
// collision draws, consumed in deterministic step and cell order. Two
// runs with the same seed and step count yield bit-identical
// trajectories regardless of worker count.
package sched

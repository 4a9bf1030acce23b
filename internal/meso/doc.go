// Package meso provides the core primitives for the multi-particle
// collision dynamics engine:
//
//   - [Vec3]: three-component vector arithmetic
//   - [Box]: periodic orthorhombic simulation box
//   - [Particles]: struct-of-arrays particle store per subsystem
//   - error taxonomy ([ErrConfig], [ErrParameter], [ErrNotReady])
//
// # Thread Safety
//
// Particle stores are NOT thread-safe. The scheduler serializes all
// mutation; [ParallelFor] is only used on disjoint index ranges within
// a single sub-step.
package meso

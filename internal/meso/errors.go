package meso

import "errors"

// Error taxonomy for the engine. Structural problems, bad parameter
// values, and unready-state misuse are distinct classes so callers can
// branch on errors.Is without string matching.
var (
	// ErrConfig indicates a structural invariant violation (incompatible
	// periods, incommensurate cell geometry). Detected at attach or
	// validate time, never auto-corrected.
	ErrConfig = errors.New("meso: invalid configuration")

	// ErrParameter indicates a single parameter outside its valid domain
	// (non-positive period, temperature, or timestep). Raised at the
	// point of assignment.
	ErrParameter = errors.New("meso: parameter out of range")

	// ErrNotReady indicates an operation invoked before a required
	// prerequisite exists (collision on a never-rebuilt cell list,
	// stepping without a particle store).
	ErrNotReady = errors.New("meso: prerequisite not initialized")
)

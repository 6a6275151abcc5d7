// Package wellpath turns directional survey measurements into a positioned
// wellbore path and derives renderable borehole geometry from it.
//
// The package is pure: no I/O, no shared state. Accumulate, Sanitize,
// Interpolate and Compose are safe to call concurrently for independent
// trajectories.
//
// Depths are measured depth (MD) along the hole, angles are degrees, and
// offsets are in the same length unit as the depths. Dogleg severity is
// reported in degrees per 30 length units.
package wellpath

// Package particle provides the charged point particle used by the potential
// engines.
//
// A [Particle] carries its position, the position before the last integration
// step, its velocity, the net force from the last force phase and its charge.
// The single-charge potential and the pairwise force law live here so that every
// engine evaluates exactly the same arithmetic:
//
//	v := p.PotentialAt(r2.Vec{X: 0.5, Y: 0.5}) // K*q/d
//	f := p.Force(other)                        // K*q*q'/d^2 along other->p
//
// # Degenerate geometry
//
// Distances below [MinDistance] are clamped to it. A force between two
// particles at exactly the same position has no direction and is zero.
package particle

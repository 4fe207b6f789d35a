// Package potential provides the engines that sample the electrostatic
// potential of a particle ensemble, move the particles and render the field.
//
// Two strategies implement [Engine]:
//
//   - [Serial]: the reference implementation, one goroutine
//   - [Parallel]: fork-join over a fixed worker pool
//
// Both evaluate the same per-cell, per-pair and per-particle kernels, so
// their fields agree within floating-point tolerance and their renders are
// byte-identical.
//
// # Example
//
//	eng, _ := potential.New(potential.KindParallel, 200, 200, potential.WithWorkers(8))
//	ext, err := eng.ComputeField(particles)
//	cmap.SetScale(ext.Lo, ext.Hi)
//	err = eng.SaveSolution(w, cmap)
//	err = eng.MoveParticles(particles, dt, substeps)
//
// # Thread Safety
//
// Engines are NOT safe for concurrent use. Each method runs its parallel
// region to completion before returning; callers must not overlap calls on
// the same engine or mutate the particle slice during a call.
package potential

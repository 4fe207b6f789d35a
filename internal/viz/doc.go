// Package viz is the live terminal view of a running simulation.
//
// The field is drawn with half-block cells colored through the active
// colormap, next to a braille plot of the particles and their velocities.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Switch between serial and parallel engines
//	R     - Reset to the initial ensemble
//	Q     - Quit
package viz

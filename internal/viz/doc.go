// Package viz provides the terminal dashboard for live muscle-driven runs.
//
// [Dashboard] is a Bubble Tea model that advances the simulation one
// control step per tick and renders joint-angle and muscle-length traces
// with asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	Q     - Quit
package viz

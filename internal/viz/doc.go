// Package viz is the terminal host for a light-field session.
//
// The particle field renders into a [raster.Image]; every tick the raster
// is sampled into a braille [Canvas] (one cell per 8x16 pixels) and drawn
// next to a sidebar with the current motion band, gauge and hint.
//
// # Key Bindings
//
//	Space - Next fragment set (burst at the cycle origin)
//	1-4   - Reveal a secret point
//	L     - Next narrative path
//	T     - Cycle colour themes
//	P     - Pause the field
//	S     - Save a PNG snapshot
//	R     - Start/stop GIF recording
//	?     - Show help
//
// Mouse motion drives the field; leaving the canvas or the terminal losing
// focus counts as the pointer leaving.
package viz

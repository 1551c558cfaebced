// Package viz renders rigid-body scenes.
//
//   - [Canvas]: Braille pixel canvas used by the terminal views
//   - [Projector]: maps world coordinates (y up) onto a pixel grid (y down)
//   - [DrawSnapshot]: outlines every body of a snapshot on a canvas
//   - [Model]: interactive Bubble Tea view of a running scene
//   - [SnapshotSVG]: one SVG element per body
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Rebuild the scene
//	?     - Show help overlay
//	Q     - Quit
package viz

// Package viz is the terminal host for the particle world.
//
// The live view is a Bubble Tea program that draws every particle as a
// braille circle and steps the world with wall-clock dt:
//
//   - [Model]: the interactive program, also served per SSH session
//   - [Canvas]: braille pixel canvas, 2x4 sub-pixels per cell
//
// The world bounds follow the terminal: each sub-pixel covers [DefaultScale]
// world units and the bounds are resized on every window change.
//
// # Key Bindings
//
//	Left mouse - Hold to spawn particles at the pointer (every 10ms)
//	Space      - Toggle health decay
//	`          - Toggle the perf panel
//	P          - Pause/Resume
//	O          - Cycle resolution policy
//	S          - Cycle iteration order
//	T          - Cycle color theme
//	C          - Clear all particles
//	R          - Reset the scene
//	Q          - Quit
package viz

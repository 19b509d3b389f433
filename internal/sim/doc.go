// Package sim drives the particle simulation one frame at a time.
//
// [Simulator.Step] is the step driver: it snapshots the live particles,
// integrates positions by velocity*dt on the plane, resolves pairwise
// collisions, reflects off the bounds and commits the snapshot back. It
// has no error path and no suspension points.
//
// [World] is the insertion-ordered collection hosts keep between frames.
// [Simulator.Run] drives a world headlessly with a fixed dt, and
// [Ensemble] runs independent seeded worlds in parallel.
package sim

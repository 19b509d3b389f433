// Package dynamo provides the core data model for the particle simulation.
//
// The package defines the types shared by the simulation core and the
// hosts that drive it:
//
//   - [Vec3]: planar vector with a cosmetic Z component
//   - [Particle]: circular body with position, velocity and scaled radius
//   - [Bounds]: centered rectangle used for wall reflection
//   - [Snapshot]: per-step working copy of particle state, in insertion order
//   - [Observer], [Metric]: per-step hooks used by the runner
//   - [Collaborator]: host-side systems that spawn, despawn or rescale
//     particles between steps
//
// # Snapshot Semantics
//
// During a step the [Snapshot] is the single source of truth. Collision
// resolution reads and writes it in place, so a pair processed later in the
// same step observes the corrections made by earlier pairs. Resolution is
// therefore order dependent.
//
// # Thread Safety
//
// None of the types here are safe for concurrent mutation. A snapshot is
// owned by exactly one step at a time.
package dynamo

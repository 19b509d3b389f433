// Package physics provides collision resolution for circular particles.
//
// The package operates on a [dynamo.Snapshot] owned by a single step:
//
//   - [Resolver]: pairwise overlap detection and response
//   - [Reflect]: wall reflection against a centered [dynamo.Bounds]
//   - [Policy]: velocity response on contact ([PolicySwap], [PolicyRedirect])
//
// # Resolution Order
//
// Pairs are visited once each, in the order of the particle slice, and
// every correction is written back before the next pair is read. Processing
// (a, b) before (a, c) changes what (a, c) sees. Callers that need
// deterministic results must keep the particle order stable.
//
// # Correction Lag
//
// Positional correction is linear and single pass. A particle pushed out of
// one neighbour may be pushed into another; the residual overlap is picked
// up on the following step.
package physics

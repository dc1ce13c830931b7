// Package multipeak decomposes a curve into K peaks of one shape over a
// shared baseline.
//
// A [Decomposer] is an explicit state machine driven by discrete events:
//
//	Idle -> AwaitingPeakCount -> AwaitingSeedPositions -> Ready -> Fitting -> Converged | Failed
//
// [Decomposer.Start] binds the curve, [Decomposer.SetPeakCount] fixes K,
// each [Decomposer.Seed] narrows one peak's initial center and height from
// the nearest sample, and [Decomposer.Fit] hands the composed model to the
// fit engine unchanged. [Decomposer.Abort] returns to Idle from any state.
package multipeak

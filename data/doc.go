// Package data defines the dataset view the analysis engine reads from and
// the sink it writes results to.
//
// The host application owns its tables. The engine only ever borrows an
// [Accessor], optionally restricted to an inclusive [Range], and hands
// produced curves and status lines to a [Sink].
package data

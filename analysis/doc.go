// Package analysis is the host-facing side of the engine.
//
// An [Engine] takes curves through the [data.Accessor] interface, runs one
// operation to completion on the calling goroutine and hands every produced
// curve to a [data.Sink] together with a human-readable status line.
// Operations that write back into their source (InPlace) check that the
// source column is writable before any numeric work starts.
package analysis

// Package spectrum derives display quantities from a transformed buffer:
// frequency axis, amplitude and phase, optionally normalised and shifted so
// that zero frequency sits in the middle.
package spectrum

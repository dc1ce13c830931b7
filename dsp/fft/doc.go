// Package fft is the discrete Fourier transform engine used by the spectrum,
// filtering, smoothing and convolution packages.
//
// Power-of-two lengths go straight to algo-fft plans. Any other positive
// length is handled with Bluestein's chirp-z algorithm on top of
// power-of-two plans, so callers never need to pad their data.
//
// The forward transform is unnormalised; the inverse divides by N, so
//
//	Transform(Transform(b, Forward), Inverse) == b
//
// up to rounding.
package fft

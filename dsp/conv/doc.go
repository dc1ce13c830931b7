// Package conv provides convolution, correlation and deconvolution of
// sampled curves.
//
// Every routine works in the frequency domain through package fft: both
// operands are zero padded to a common transform length, transformed,
// combined pointwise and inverse-transformed. Samples smaller than the
// transform can resolve are returned as exact zeros.
//
// Convolving a measured signal with an instrument response keeps the signal
// length and centres the response:
//
//	smeared, err := conv.ConvolveResponse(signal, response)
//
// The response must have an odd length strictly below half the signal
// length; [ErrResponseLengthNotOdd] and [ErrResponseTooLarge] are returned
// before any transform work otherwise.
//
// # Correlation
//
//	corr, err := conv.Correlate(signal, template)
//	peakIdx, peakVal := conv.FindPeak(corr)
//	lag := conv.LagFromIndex(peakIdx, len(template))
//
// [Lags] returns the lag axis matching a full correlation result.
// [AutoCorrelate] is exactly symmetric about zero lag. The normalized
// variants scale by the signal norms so identical shapes peak at 1.
//
// # Deconvolution
//
//	opts := conv.DefaultDeconvOptions()
//	opts.Epsilon = 1e-3
//	recovered, err := conv.Deconvolve(convolved, kernel, opts)
//
// DeconvNaive divides the spectra, DeconvRegularized adds epsilon to the
// denominator and DeconvWiener derives it from the noise-to-signal ratio.
package conv

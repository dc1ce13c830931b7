// Package smooth provides curve smoothing: Savitzky–Golay local polynomial
// regression, FFT low-pass smoothing and a centred moving average.
//
// Savitzky–Golay fits a least-squares polynomial to the x-values of each
// window, so it also handles non-uniform sampling. Windows near the ends of
// the curve are shifted inward to keep their full size.
package smooth

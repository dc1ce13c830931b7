// Package fftfilter implements frequency-domain band filters.
//
// A uniformly sampled curve is transformed with package fft, multiplied by a
// real 0/1 mask over the frequency bins and transformed back. Bin k of an
// N-point record with sampling interval dt has frequency min(k, N-k)/(N*dt),
// so positive and negative frequencies are treated alike and the output
// stays real.
package fftfilter

// Package interp resamples (x, y) data with piecewise interpolants.
//
// Available methods and the minimum number of samples they need:
//
//   - [MethodLinear]: 2 points, piecewise linear
//   - [MethodCubic]:  4 points, natural cubic spline
//   - [MethodAkima]:  4 points, Akima spline (non-rounded corners)
//
// Every method is evaluated as a piecewise cubic Hermite polynomial; values
// outside the sampled range extend the edge segment unless strict range
// checking is requested.
package interp

// Package calculus provides numeric integration and differentiation of
// sampled (x, y) data.
//
// Integration works on arbitrarily spaced abscissae. The method code selects
// the degree of the local interpolating polynomial used for each interval:
//
//   - 1: trapezoidal rule
//   - 2: quadratic (Simpson-type) panels
//   - 3..5: cubic to quintic panels
//
// Each interval is integrated exactly with the polynomial through the
// method+1 samples nearest to it, so higher codes converge faster on smooth
// data. Differentiation uses second-order finite differences that account for
// non-uniform spacing.
package calculus

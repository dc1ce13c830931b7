// Package fit runs nonlinear least-squares regressions of a model.Model
// against a data.Accessor.
//
// A [Run] binds the dataset (and an optional sub-range), the model with its
// working parameter values, a weighting policy and an algorithm. [Fit]
// validates the run before any numeric work, iterates Levenberg–Marquardt
// (scaled or unscaled) or Nelder–Mead to its termination criterion and
// returns a [Result] with parameters, standard errors, covariance,
// goodness-of-fit statistics and a generated curve.
//
// Reaching the iteration limit is not an error: the best parameters so far
// are returned with [StatusMaxIterations]. A breakdown of the normal
// equations is reported as an [*Error] wrapping [ErrSingularJacobian].
package fit

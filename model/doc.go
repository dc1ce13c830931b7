// Package model is the catalog of fit models.
//
// A [Model] evaluates y = f(x; p) for an ordered parameter vector p and
// describes its parameters. Models that can compute their own partial
// derivatives implement [Differentiable]; the others are differentiated
// numerically under an explicit [StepPolicy]. Models implementing [Guesser]
// can derive initial parameter values from data.
//
// Three families are provided:
//
//   - built-in closed-form models (exponential, polynomial, sigmoidal, peak),
//   - user-defined expression models compiled from a formula string,
//   - plugin models loaded from Go plugins.
//
// Multi-peak models compose K copies of a Gaussian or Lorentzian peak with a
// shared baseline. A [Registry] holds the catalog; it is constructed
// explicitly and released with Close.
//
// Models are immutable templates and safe for concurrent use.
package model

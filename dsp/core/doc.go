// Package core holds small numeric helpers shared by the curvefit kernels,
// transforms and the fit engine.
package core

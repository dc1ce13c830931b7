package fit

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-curvefit/data"
)

// weights returns the multiplier applied to each residual of pts.
func (r *Run) weights(pts data.Points) ([]float64, error) {
	n := pts.Len()
	w := make([]float64, n)
	switch r.Weighting {
	case WeightNone:
		for i := range w {
			w[i] = 1
		}

	case WeightInstrumental:
		if pts.YErr == nil {
			return nil, fmt.Errorf("%w: curve %q has no y error column", ErrMissingErrors, r.Data.Name())
		}
		for i, e := range pts.YErr {
			switch {
			case math.IsNaN(e):
				return nil, fmt.Errorf("%w: curve %q row %d", ErrMissingErrors, r.Data.Name(), pts.Rows[i])
			case e == 0:
				return nil, fmt.Errorf("%w: curve %q row %d", ErrZeroError, r.Data.Name(), pts.Rows[i])
			}
			w[i] = 1 / math.Abs(e)
		}

	case WeightStatistical:
		for i, y := range pts.Y {
			if y == 0 {
				return nil, fmt.Errorf("%w: curve %q row %d", ErrZeroWeight, r.Data.Name(), pts.Rows[i])
			}
			w[i] = 1 / math.Sqrt(math.Abs(y))
		}

	case WeightDataset:
		if len(r.Weights) != r.Data.Len() {
			return nil, fmt.Errorf("%w: %d weights for %d rows", ErrWeightLengthMismatch, len(r.Weights), r.Data.Len())
		}
		for i, row := range pts.Rows {
			w[i] = r.Weights[row]
		}

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownWeighting, int(r.Weighting))
	}
	return w, nil
}

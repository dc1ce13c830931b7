package fit

import (
	"fmt"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/model"
)

// Guess replaces the initial values of the free parameters with the
// model's data-driven estimate. Parameters set through WithInitial,
// WithInitialValues or WithFixed keep their values.
func (r *Run) Guess() error {
	if r.Data == nil {
		return ErrNoCurveAssigned
	}
	if r.Model == nil {
		return fmt.Errorf("%w: no model", ErrInvalidModel)
	}
	g, ok := r.Model.(model.Guesser)
	if !ok {
		return fmt.Errorf("%w: %s cannot estimate initial values", ErrInvalidModel, r.Model.Name())
	}
	pts, err := data.Collect(r.Data, r.Range)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoCurveAssigned, err)
	}
	x, y, _ := core.SortXY(pts.X, pts.Y)
	guess := g.Guess(x, y)
	if len(guess) != len(r.Params) {
		return fmt.Errorf("%w: guess has %d values for %d parameters", ErrParameterCount, len(guess), len(r.Params))
	}
	for i := range r.Params {
		if !r.Params[i].Fixed && !r.explicit[r.Params[i].Name] {
			r.Params[i].Initial = guess[i]
		}
	}
	r.debug("initial values estimated", "model", r.Model.Name(), "values", guess)
	return nil
}

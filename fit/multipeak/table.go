package multipeak

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-curvefit/fit"
	"github.com/cwbudde/algo-curvefit/model"
)

// Peak holds the derived quantities of one fitted peak.
type Peak struct {
	Center, CenterErr float64
	FWHM, FWHMErr     float64
	Height, HeightErr float64
	Area, AreaErr     float64
}

// Table derives the per-peak quantities from a multi-peak fit result.
// Errors propagate the fit covariance to first order.
func Table(m *model.MultiPeak, res *fit.Result) []Peak {
	shape := m.Shape()
	cov := covariance(res)
	out := make([]Peak, m.Count())
	for i := range out {
		k := m.Index(i)
		xc, w, a := res.Params[k], res.Params[k+1], res.Params[k+2]
		h := shape.Height(w, a)
		fwhmPerW := shape.FWHM(1)

		// h is proportional to a/w.
		dha, dhw := h/a, -h/w
		if a == 0 {
			dha = shape.Height(w, 1)
		}
		hVar := dha*dha*cov(k+2, k+2) + dhw*dhw*cov(k+1, k+1) + 2*dha*dhw*cov(k+1, k+2)

		out[i] = Peak{
			Center:    xc,
			CenterErr: res.Errors[k],
			FWHM:      shape.FWHM(w),
			FWHMErr:   fwhmPerW * res.Errors[k+1],
			Height:    h,
			HeightErr: math.Sqrt(math.Abs(hVar)),
			Area:      a,
			AreaErr:   res.Errors[k+2],
		}
	}
	return out
}

// covariance returns a lookup over full parameter indices, scaled the way
// the result's errors are. Fixed parameters have zero covariance.
func covariance(res *fit.Result) func(i, j int) float64 {
	pos := make(map[int]int, len(res.FreeIndex))
	for c, idx := range res.FreeIndex {
		pos[idx] = c
	}
	scale := 1.0
	if res.Covariance != nil && len(res.FreeIndex) > 0 {
		idx := res.FreeIndex[0]
		if v := res.Covariance.At(0, 0); v > 0 {
			scale = res.Errors[idx] * res.Errors[idx] / v
		}
	}
	return func(i, j int) float64 {
		a, okA := pos[i]
		b, okB := pos[j]
		if !okA || !okB || res.Covariance == nil {
			return 0
		}
		return res.Covariance.At(a, b) * scale
	}
}

// Format renders the table as results-log text.
func Format(peaks []Peak) string {
	var b strings.Builder
	b.WriteString("peak\tcenter\tFWHM\theight\tarea")
	for i, p := range peaks {
		fmt.Fprintf(&b, "\n%d\t%g ± %g\t%g ± %g\t%g ± %g\t%g ± %g",
			i+1, p.Center, p.CenterErr, p.FWHM, p.FWHMErr, p.Height, p.HeightErr, p.Area, p.AreaErr)
	}
	return b.String()
}

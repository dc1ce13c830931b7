package multipeak

import (
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/fit"
	"github.com/cwbudde/algo-curvefit/internal/testutil"
	"github.com/cwbudde/algo-curvefit/model"
)

// twoPeaks is y0=0.5 with Gaussians at 3 (w=1, A=2) and 7 (w=1.2, A=3).
var twoPeaks = []float64{0.5, 3, 1, 2, 7, 1.2, 3}

func twoPeakSeries(t *testing.T, shape model.PeakShape) *data.Series {
	t.Helper()
	m, err := model.NewMultiPeak(2, shape)
	require.NoError(t, err)
	x, y := testutil.SampleFunc(func(x float64) float64 { return m.Eval(x, twoPeaks) }, 0, 10, 101)
	return data.MustSeries("peaks", x, y)
}

func TestManualSeedsRecoverPeaks(t *testing.T) {
	for _, shape := range []model.PeakShape{model.Gaussian, model.Lorentzian} {
		t.Run(shape.String(), func(t *testing.T) {
			d := New(shape,
				WithFitOptions(fit.WithTolerance(1e-10)),
				WithLogger((*logging.TestLogger)(t)),
			)
			require.Equal(t, Idle, d.State())

			require.NoError(t, d.Start(twoPeakSeries(t, shape)))
			require.Equal(t, AwaitingPeakCount, d.State())
			require.InDelta(t, 0.5, d.Baseline(), 0.2)

			require.NoError(t, d.SetPeakCount(2))
			require.Equal(t, AwaitingSeedPositions, d.State())

			s, err := d.Seed(3.04)
			require.NoError(t, err)
			require.InDelta(t, 3.0, s.Center, 1e-12)
			require.Greater(t, s.Height, 0.0)
			require.Equal(t, AwaitingSeedPositions, d.State())

			_, err = d.Seed(6.96)
			require.NoError(t, err)
			require.Equal(t, Ready, d.State())

			res, err := d.Fit()
			require.NoError(t, err)
			require.Equal(t, Converged, d.State())
			require.Equal(t, fit.StatusConverged, res.Status)
			for i, want := range twoPeaks {
				require.InDelta(t, want, res.Params[i], 1e-4, res.Names[i])
			}

			peaks := d.Peaks()
			require.Len(t, peaks, 2)
			require.InDelta(t, 3, peaks[0].Center, 1e-4)
			require.InDelta(t, 2, peaks[0].Area, 1e-4)
			require.InDelta(t, shape.FWHM(1.2), peaks[1].FWHM, 1e-4)
			require.InDelta(t, shape.Height(1.2, 3), peaks[1].Height, 1e-4)
			require.Contains(t, Format(peaks), "peak\tcenter")
		})
	}
}

func TestAutoSeedOrdersByHeight(t *testing.T) {
	d := New(model.Gaussian, WithFitOptions(fit.WithTolerance(1e-10)))
	require.NoError(t, d.Start(twoPeakSeries(t, model.Gaussian)))
	require.NoError(t, d.SetPeakCount(2))
	require.NoError(t, d.AutoSeed(1))
	require.Equal(t, Ready, d.State())

	seeds := d.Seeds()
	require.Len(t, seeds, 2)
	require.InDelta(t, 7, seeds[0].Center, 1e-12)
	require.InDelta(t, 3, seeds[1].Center, 1e-12)

	_, err := d.Fit()
	require.NoError(t, err)
	centers := []float64{d.Peaks()[0].Center, d.Peaks()[1].Center}
	require.ElementsMatch(t, []float64{3, 7}, []float64{roundTo(centers[0]), roundTo(centers[1])})
}

func roundTo(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}

func TestAutoSeedCompletesManualSeeds(t *testing.T) {
	d := New(model.Gaussian)
	require.NoError(t, d.Start(twoPeakSeries(t, model.Gaussian)))
	require.NoError(t, d.SetPeakCount(2))
	_, err := d.Seed(3)
	require.NoError(t, err)
	require.NoError(t, d.AutoSeed(1))
	seeds := d.Seeds()
	require.InDelta(t, 3, seeds[0].Center, 1e-12)
	require.InDelta(t, 7, seeds[1].Center, 1e-12)
}

func TestAutoSeedNotEnoughPeaks(t *testing.T) {
	d := New(model.Gaussian)
	require.NoError(t, d.Start(twoPeakSeries(t, model.Gaussian)))
	require.NoError(t, d.SetPeakCount(3))
	require.ErrorIs(t, d.AutoSeed(1), ErrNotEnoughPeaks)
	require.Equal(t, AwaitingSeedPositions, d.State())
}

func TestInvalidTransitions(t *testing.T) {
	d := New(model.Gaussian)
	_, err := d.Seed(1)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, d.SetPeakCount(1), ErrInvalidTransition)
	_, err = d.Fit()
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.ErrorIs(t, d.Start(nil), ErrNoCurveAssigned)
	require.Equal(t, Idle, d.State())

	small := data.MustSeries("small", []float64{0, 1, 2, 3}, []float64{0, 1, 0, 0})
	require.NoError(t, d.Start(small))
	require.ErrorIs(t, d.Start(small), ErrInvalidTransition)
	require.ErrorIs(t, d.SetPeakCount(0), ErrInvalidPeakCount)
	require.ErrorIs(t, d.SetPeakCount(1), fit.ErrTooFewPoints)

	d.Abort()
	require.Equal(t, Idle, d.State())
	require.Empty(t, d.Seeds())
}

func TestFitFailureMovesToFailed(t *testing.T) {
	d := New(model.Gaussian, WithFitOptions(fit.WithWeighting(fit.WeightInstrumental)))
	require.NoError(t, d.Start(twoPeakSeries(t, model.Gaussian)))
	require.NoError(t, d.SetPeakCount(1))
	_, err := d.Seed(7)
	require.NoError(t, err)

	_, err = d.Fit()
	require.ErrorIs(t, err, fit.ErrMissingErrors)
	require.Equal(t, Failed, d.State())
	require.ErrorIs(t, d.Err(), fit.ErrMissingErrors)

	d.Abort()
	require.Equal(t, Idle, d.State())
	require.NoError(t, d.Err())
}

func TestRangeRestrictsDecomposition(t *testing.T) {
	d := New(model.Gaussian, WithRange(4.95, 10.05), WithFitOptions(fit.WithTolerance(1e-10)))
	require.NoError(t, d.Start(twoPeakSeries(t, model.Gaussian)))
	require.NoError(t, d.SetPeakCount(1))
	require.NoError(t, d.AutoSeed(0))
	require.InDelta(t, 7, d.Seeds()[0].Center, 1e-12)
	res, err := d.Fit()
	require.NoError(t, err)
	require.Equal(t, 51, res.Points)
}

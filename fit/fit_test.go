package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/internal/testutil"
	"github.com/cwbudde/algo-curvefit/model"
)

func lookup(t *testing.T, name string) model.Model {
	t.Helper()
	m, err := model.NewRegistry().Lookup(name)
	require.NoError(t, err)
	return m
}

func expSeries() *data.Series {
	return data.MustSeries("exp", []float64{0, 1, 2, 3, 4}, []float64{1, 2.7, 7.5, 20, 54})
}

func TestExpGrowthConverges(t *testing.T) {
	r := NewRun(expSeries(), lookup(t, "ExpGrowth"),
		WithInitial("A", 1),
		WithInitial("t", 1),
		WithFixed("y0", 0),
		WithAlgorithm(ScaledLM),
		WithTolerance(1e-4),
		WithMaxIterations(50),
		WithLogger((*logging.TestLogger)(t)),
	)

	res, err := Fit(r)
	require.NoError(t, err)
	require.Equal(t, StatusConverged, res.Status)

	a, aErr, ok := res.Param("A")
	require.True(t, ok)
	require.InDelta(t, 1, a, 0.1)
	require.Greater(t, aErr, 0.0)
	tau, _, _ := res.Param("t")
	require.InDelta(t, 1, tau, 0.1)
	y0, y0Err, _ := res.Param("y0")
	require.Equal(t, 0.0, y0)
	require.Equal(t, 0.0, y0Err)

	require.Greater(t, res.RSquared, 0.99)
	require.Equal(t, 5, res.Points)
	require.Equal(t, 3, res.DOF)
	require.Equal(t, []int{0, 1}, res.FreeIndex)
	r2, c2 := res.Covariance.Dims()
	require.Equal(t, 2, r2)
	require.Equal(t, 2, c2)

	// The run's working copy carries the fitted values.
	require.Equal(t, a, r.Params[0].Initial)
}

func TestUnscaledLMMatchesScaled(t *testing.T) {
	fitWith := func(alg Algorithm) *Result {
		res, err := Fit(NewRun(expSeries(), lookup(t, "ExpGrowth"),
			WithFixed("y0", 0), WithAlgorithm(alg), WithTolerance(1e-10)))
		require.NoError(t, err)
		require.Equal(t, StatusConverged, res.Status)
		return res
	}
	scaled, unscaled := fitWith(ScaledLM), fitWith(UnscaledLM)
	for i := range scaled.Params {
		require.InDelta(t, scaled.Params[i], unscaled.Params[i], 1e-4)
	}
}

func TestPolynomialRecovery(t *testing.T) {
	for _, tc := range []struct {
		name string
		want []float64
	}{
		{"Linear", []float64{-1.5, 0.75}},
		{"Poly2", []float64{1, -2, 0.5}},
		{"Poly3", []float64{0.2, 1, -0.3, 0.05}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := lookup(t, tc.name)
			x, y := testutil.SampleFunc(func(x float64) float64 { return m.Eval(x, tc.want) }, -3, 5, 40)
			res, err := Fit(NewRun(data.MustSeries("poly", x, y), m, WithTolerance(1e-4)))
			require.NoError(t, err)
			require.Equal(t, StatusConverged, res.Status)
			testutil.RequireParamsClose(t, res.Names, res.Params, tc.want, 1e-4, 1e-4)
			require.InDelta(t, 1, res.RSquared, 1e-9)
		})
	}
}

func TestSimplexAgreesWithLM(t *testing.T) {
	lm, err := Fit(NewRun(expSeries(), lookup(t, "ExpGrowth"), WithFixed("y0", 0), WithTolerance(1e-10)))
	require.NoError(t, err)

	nm, err := Fit(NewRun(expSeries(), lookup(t, "ExpGrowth"),
		WithFixed("y0", 0),
		WithAlgorithm(Simplex),
		WithTolerance(1e-8),
		WithMaxIterations(5000),
	))
	require.NoError(t, err)
	require.Equal(t, StatusConverged, nm.Status)
	require.Equal(t, Simplex, nm.Algorithm)
	testutil.RequireParamsClose(t, lm.Names, nm.Params, lm.Params, 1e-2, 1e-2)
	require.False(t, math.IsNaN(nm.Errors[0]))
}

func TestMaxIterationsIsNotAnError(t *testing.T) {
	res, err := Fit(NewRun(expSeries(), lookup(t, "ExpGrowth"),
		WithInitialValues(0.5, 2, 0),
		WithFixed("y0", 0),
		WithMaxIterations(1),
	))
	require.NoError(t, err)
	require.Equal(t, StatusMaxIterations, res.Status)
	require.Equal(t, 1, res.Iterations)
}

func TestFitHonoursRange(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6}
	y := []float64{1, 3, 5, 7, 9, 100, -100}
	res, err := Fit(NewRun(data.MustSeries("line", x, y), lookup(t, "Linear"), WithRange(0, 4)))
	require.NoError(t, err)
	require.Equal(t, 5, res.Points)
	require.InDelta(t, 1, res.Params[0], 1e-6)
	require.InDelta(t, 2, res.Params[1], 1e-6)
	require.InDelta(t, 0, res.CurveX[0], 1e-12)
	require.InDelta(t, 4, res.CurveX[len(res.CurveX)-1], 1e-12)
}

func TestDatasetWeightsIgnoreZeroWeightedRow(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 50, 7, 9}
	w := []float64{1, 1, 0, 1, 1}
	res, err := Fit(NewRun(data.MustSeries("line", x, y), lookup(t, "Linear"), WithWeighting(WeightDataset, w...)))
	require.NoError(t, err)
	require.InDelta(t, 1, res.Params[0], 1e-6)
	require.InDelta(t, 2, res.Params[1], 1e-6)
}

func TestInstrumentalWeighting(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1.1, 2.9, 5.2, 6.8, 9.1}
	yErr := []float64{0.1, 0.1, 0.2, 0.1, 0.1}

	res, err := Fit(NewRun(data.MustSeries("line", x, y, data.WithYErrors(yErr)), lookup(t, "Linear"),
		WithWeighting(WeightInstrumental)))
	require.NoError(t, err)
	require.InDelta(t, 2, res.Params[1], 0.1)

	// chi² is the weighted sum, RSS the unweighted one.
	require.Greater(t, res.ChiSquare, res.RSS)
}

func TestScaleErrorsByChiSquare(t *testing.T) {
	x, _ := testutil.SampleFunc(func(float64) float64 { return 0 }, 0, 10, 30)
	noise := testutil.DeterministicNoise(7, 0.3, len(x))
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 1 + 2*x[i] + noise[i]
	}
	s := data.MustSeries("noisy", x, y)

	plain, err := Fit(NewRun(s, lookup(t, "Linear")))
	require.NoError(t, err)
	scaled, err := Fit(NewRun(s, lookup(t, "Linear"), WithScaleErrors()))
	require.NoError(t, err)

	factor := math.Sqrt(plain.ReducedChiSquare)
	for i := range plain.Errors {
		require.InDelta(t, plain.Errors[i]*factor, scaled.Errors[i], 1e-9)
	}
	require.InDelta(t, math.Sqrt(plain.RSS/float64(plain.DOF)), plain.RMSE, 1e-12)
	require.Less(t, plain.AdjRSquared, plain.RSquared)
}

func TestCurveModes(t *testing.T) {
	res, err := Fit(NewRun(expSeries(), lookup(t, "ExpGrowth"), WithFixed("y0", 0), WithCurvePoints(7)))
	require.NoError(t, err)
	require.Len(t, res.CurveX, 7)
	require.Len(t, res.CurveY, 7)
	require.Equal(t, 0.0, res.CurveX[0])
	require.Equal(t, 4.0, res.CurveX[6])

	res, err = Fit(NewRun(expSeries(), lookup(t, "ExpGrowth"), WithFixed("y0", 0), WithCurveOnData()))
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 2, 3, 4}, res.CurveX)

	c := res.Curve("fit")
	require.Equal(t, "fit", c.Name)
	require.Len(t, c.Y, 5)
	require.Contains(t, res.Summary(), "ExpGrowth fit")
}

func TestGuessInitialValues(t *testing.T) {
	m := lookup(t, "Poly2")
	x, y := testutil.SampleFunc(func(x float64) float64 { return 3 - x + 0.25*x*x }, 0, 8, 20)
	r := NewRun(data.MustSeries("quad", x, y), m)
	require.NoError(t, r.Guess())
	require.InDelta(t, 3, r.Params[0].Initial, 1e-6)
	require.InDelta(t, -1, r.Params[1].Initial, 1e-6)
	require.InDelta(t, 0.25, r.Params[2].Initial, 1e-6)
}

// pluginOnly mimics a plugin exporting only an objective.
type pluginOnly struct{}

func (pluginOnly) Name() string             { return "objective-only" }
func (pluginOnly) Category() model.Category { return model.Plugin }
func (pluginOnly) Params() []model.Parameter {
	return []model.Parameter{{Name: "a", Initial: 1}, {Name: "b", Initial: 1}}
}
func (pluginOnly) Eval(x float64, p []float64) float64 { return p[0] + p[1]*x }

// blind ignores its second parameter.
type blind struct{}

func (blind) Name() string             { return "blind" }
func (blind) Category() model.Category { return model.User }
func (blind) Params() []model.Parameter {
	return []model.Parameter{{Name: "a", Initial: 1}, {Name: "b", Initial: 1}}
}
func (blind) Eval(x float64, p []float64) float64 { return p[0] * x }

func TestPluginWithoutJacobian(t *testing.T) {
	s := data.MustSeries("line", []float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})

	_, err := Fit(NewRun(s, pluginOnly{}))
	require.ErrorIs(t, err, model.ErrIncompleteModelContract)

	res, err := Fit(NewRun(s, pluginOnly{}, WithAlgorithm(Simplex), WithTolerance(1e-9), WithMaxIterations(5000)))
	require.NoError(t, err)
	require.InDelta(t, 1, res.Params[0], 1e-3)
	require.InDelta(t, 2, res.Params[1], 1e-3)
}

func TestSingularJacobian(t *testing.T) {
	s := data.MustSeries("line", []float64{0, 1, 2, 3}, []float64{0, 2, 4, 6})
	_, err := Fit(NewRun(s, blind{}))
	require.ErrorIs(t, err, ErrSingularJacobian)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	require.Equal(t, StatusSingularJacobian, fe.Status)
}

func TestValidationErrors(t *testing.T) {
	line := func(opts ...data.SeriesOption) *data.Series {
		return data.MustSeries("line", []float64{0, 1, 2, 3}, []float64{1, 0, 5, 7}, opts...)
	}
	linear := lookup(t, "Linear")
	empty := data.MustSeries("empty", nil, nil)

	for _, tc := range []struct {
		name string
		run  *Run
		want error
	}{
		{"nil data", NewRun(nil, linear), ErrNoCurveAssigned},
		{"empty data", NewRun(empty, linear), ErrNoCurveAssigned},
		{"inverted range", NewRun(line(), linear, WithRange(3, 1)), ErrInvalidRange},
		{"nil model", NewRun(line(), nil), ErrInvalidModel},
		{"unknown algorithm", NewRun(line(), linear, WithAlgorithm(Algorithm(9))), ErrUnknownAlgorithm},
		{"all fixed", NewRun(line(), linear, WithFixed("a", 1), WithFixed("b", 1)), ErrNoFreeParameters},
		{"uninitialized", NewRun(line(), linear, WithInitial("b", math.NaN())), ErrUninitializedParameters},
		{"too few points", NewRun(line(), linear, WithRange(0, 0.5)), ErrTooFewPoints},
		{"missing errors", NewRun(line(), linear, WithWeighting(WeightInstrumental)), ErrMissingErrors},
		{"zero error", NewRun(line(data.WithYErrors([]float64{1, 1, 0, 1})), linear, WithWeighting(WeightInstrumental)), ErrZeroError},
		{"statistical zero", NewRun(line(), linear, WithWeighting(WeightStatistical)), ErrZeroWeight},
		{"weight length", NewRun(line(), linear, WithWeighting(WeightDataset, 1, 1)), ErrWeightLengthMismatch},
		{"unknown weighting", NewRun(line(), linear, WithWeighting(Weighting(9))), ErrUnknownWeighting},
		{"unknown initial", NewRun(line(), linear, WithInitial("c", 2)), ErrUnknownParameter},
		{"unknown fixed", NewRun(line(), linear, WithFixed("A", 2)), ErrUnknownParameter},
		{"unknown hold", NewRun(line(), linear, WithHold("slope")), ErrUnknownParameter},
		{"zero tolerance", NewRun(line(), linear, WithTolerance(0)), ErrInvalidSetting},
		{"negative tolerance", NewRun(line(), linear, WithTolerance(-1e-4)), ErrInvalidSetting},
		{"NaN tolerance", NewRun(line(), linear, WithTolerance(math.NaN())), ErrInvalidSetting},
		{"zero iterations", NewRun(line(), linear, WithMaxIterations(0)), ErrInvalidSetting},
		{"one curve point", NewRun(line(), linear, WithCurvePoints(1)), ErrInvalidSetting},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Fit(tc.run)
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, res)
		})
	}
}

func TestParseAlgorithmAndWeighting(t *testing.T) {
	a, err := ParseAlgorithm("simplex")
	require.NoError(t, err)
	require.Equal(t, Simplex, a)
	_, err = ParseAlgorithm("newton")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)

	w, err := ParseWeighting("instrumental")
	require.NoError(t, err)
	require.Equal(t, WeightInstrumental, w)
	_, err = ParseWeighting("magic")
	require.ErrorIs(t, err, ErrUnknownWeighting)
}

func TestWithGuessKeepsExplicitValues(t *testing.T) {
	m := lookup(t, "ExpDecay1")
	x, y := testutil.SampleFunc(func(x float64) float64 { return 4*math.Exp(-x/2) + 1 }, 0, 10, 50)
	r := NewRun(data.MustSeries("decay", x, y), m, WithGuess(), WithFixed("y0", 1), WithTolerance(1e-10))
	res, err := Fit(r)
	require.NoError(t, err)
	require.InDelta(t, 4, res.Params[0], 1e-4)
	require.InDelta(t, 2, res.Params[1], 1e-4)
	require.Equal(t, 1.0, res.Params[2])
}

func TestSettingsAreNotCorrected(t *testing.T) {
	s := data.MustSeries("line", []float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
	r := NewRun(s, lookup(t, "Linear"), WithTolerance(-1), WithMaxIterations(-5))
	_, err := Fit(r)
	require.ErrorIs(t, err, ErrInvalidSetting)
	require.Equal(t, -1.0, r.Tolerance)
	require.Equal(t, -5, r.MaxIterations)

	// The curve size is irrelevant when the curve follows the data.
	res, err := Fit(NewRun(s, lookup(t, "Linear"), WithCurvePoints(0), WithCurveOnData()))
	require.NoError(t, err)
	require.Len(t, res.CurveX, 4)
}

func TestUnknownParameterNamesAreReported(t *testing.T) {
	_, err := Fit(NewRun(expSeries(), lookup(t, "ExpGrowth"), WithFixed("Y0", 0), WithInitial("tau", 5)))
	require.ErrorIs(t, err, ErrUnknownParameter)
	require.Contains(t, err.Error(), "Y0")
	require.Contains(t, err.Error(), "tau")
}

// unset is a straight line without usable initial values that can
// estimate them from the data.
type unset struct{}

func (unset) Name() string             { return "unset" }
func (unset) Category() model.Category { return model.User }
func (unset) Params() []model.Parameter {
	return []model.Parameter{{Name: "a", Initial: math.NaN()}, {Name: "b", Initial: math.NaN()}}
}
func (unset) Eval(x float64, p []float64) float64 { return p[0] + p[1]*x }
func (unset) Guess(x, y []float64) []float64 {
	n := len(x) - 1
	b := (y[n] - y[0]) / (x[n] - x[0])
	return []float64{y[0] - b*x[0], b}
}

func TestWithGuessFillsUninitializedParameters(t *testing.T) {
	s := data.MustSeries("line", []float64{0, 1, 2, 3, 4}, []float64{2, 5.1, 7.9, 11, 14.1})

	_, err := Fit(NewRun(s, unset{}))
	require.ErrorIs(t, err, ErrUninitializedParameters)

	res, err := Fit(NewRun(s, unset{}, WithGuess(), WithTolerance(1e-10)))
	require.NoError(t, err)
	require.InDelta(t, 2, res.Params[0], 0.1)
	require.InDelta(t, 3, res.Params[1], 0.1)
}

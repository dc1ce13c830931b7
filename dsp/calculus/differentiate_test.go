package calculus

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-curvefit/internal/testutil"
)

func TestDifferentiateQuadraticExact(t *testing.T) {
	// Three-point formulas are exact for quadratics on any spacing.
	x := []float64{0, 0.5, 1.5, 2, 3.5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v*v - v + 2
	}
	xs, dy, err := Differentiate(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := make([]float64, len(xs))
	for i, v := range xs {
		want[i] = 6*v - 1
	}
	testutil.RequireSliceNearlyEqual(t, dy, want, 1e-10)
}

func TestDifferentiateTwoPoints(t *testing.T) {
	_, dy, err := Differentiate([]float64{0, 2}, []float64{1, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, dy, []float64{2, 2}, 0)
}

func TestDifferentiateErrors(t *testing.T) {
	_, _, err := Differentiate([]float64{1}, []float64{1})
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	_, _, err = Differentiate([]float64{1, 1}, []float64{1, 2})
	if !errors.Is(err, ErrDegenerateAbscissa) {
		t.Fatalf("expected ErrDegenerateAbscissa, got %v", err)
	}
}

func TestIntegrateDifferentiateRoundTrip(t *testing.T) {
	f := func(x float64) float64 { return math.Cos(x) + 0.5*x }

	var prevErr float64
	for _, n := range []int{21, 81, 321} {
		x, y := testutil.SampleFunc(f, 0, 4, n)
		res, err := Integrate(x, y, MethodQuadratic, 0, 4)
		if err != nil {
			t.Fatalf("integrate: %v", err)
		}
		_, dy, err := Differentiate(res.X, res.Cumulative)
		if err != nil {
			t.Fatalf("differentiate: %v", err)
		}
		maxErr, err := testutil.MaxAbsDiff(dy, y)
		if err != nil {
			t.Fatal(err)
		}
		if maxErr > 5e-2 {
			t.Fatalf("n=%d: round trip error %g too large", n, maxErr)
		}
		if prevErr != 0 && maxErr >= prevErr {
			t.Fatalf("n=%d: error %g did not shrink from %g", n, maxErr, prevErr)
		}
		prevErr = maxErr
	}
}

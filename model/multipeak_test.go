package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiPeakEvalIsSumOfPeaks(t *testing.T) {
	m, err := NewMultiPeak(2, Gaussian)
	require.NoError(t, err)
	require.Len(t, m.Params(), 7)
	require.Equal(t, "xc2", m.Params()[m.Index(1)].Name)

	p := []float64{0.5, 1, 0.4, 2, 3, 0.8, 1}
	gauss := peak("Gauss", Gaussian)
	for _, x := range []float64{0, 1, 2.5, 3} {
		want := 0.5 + gauss.Eval(x, []float64{0, 1, 0.4, 2}) + gauss.Eval(x, []float64{0, 3, 0.8, 1})
		require.InDelta(t, want, m.Eval(x, p), 1e-12)
		require.InDelta(t, want-0.5-m.Peak(0, x, p), m.Peak(1, x, p), 1e-12)
	}
}

func TestMultiPeakDerivative(t *testing.T) {
	for _, shape := range []PeakShape{Gaussian, Lorentzian} {
		m, err := NewMultiPeak(3, shape)
		require.NoError(t, err)
		p := []float64{0.2, 1, 0.5, 2, 2, 0.7, 1, 3.5, 0.4, 1.5}
		for j := range p {
			want := numericPartial(m, j, 1.8, p, DefaultStepPolicy())
			require.InDelta(t, want, m.Derivative(j, 1.8, p), 1e-6, "%s param %d", shape, j)
		}
	}
}

func TestNewMultiPeakErrors(t *testing.T) {
	_, err := NewMultiPeak(0, Gaussian)
	require.ErrorIs(t, err, ErrInvalidPeakCount)
	_, err = NewMultiPeak(2, PeakShape(9))
	require.ErrorIs(t, err, ErrUnknownShape)
	_, err = ParseShape("voigt")
	require.ErrorIs(t, err, ErrUnknownShape)
}

func TestMultiPeakGuessFindsPeaks(t *testing.T) {
	m, _ := NewMultiPeak(2, Lorentzian)
	truth := []float64{1, 2, 0.5, 3, 6, 0.8, 4}

	x := make([]float64, 161)
	y := make([]float64, len(x))
	for i := range x {
		x[i] = float64(i) * 0.05
		y[i] = m.Eval(x[i], truth)
	}

	got := m.Guess(x, y)
	require.InDelta(t, 2, got[m.Index(0)], 0.06, "highest peak first")
	require.InDelta(t, 6, got[m.Index(1)], 0.06)
	require.Less(t, got[0], 1.2)
}

func TestFindPeaksSeparation(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6}
	y := []float64{0, 5, 0, 4, 0, 1, 0}

	require.Equal(t, []int{1, 3, 5}, FindPeaks(x, y, 5, 0))
	require.Equal(t, []int{1, 5}, FindPeaks(x, y, 5, 3))
	require.Equal(t, []int{1}, FindPeaks(x, y, 1, 0))
}

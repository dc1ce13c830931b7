package data

import (
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/require"
)

func TestMemorySink(t *testing.T) {
	var m MemorySink
	require.NoError(t, m.NewCurve(Curve{Name: "fit1", X: []float64{1}, Y: []float64{2}}))
	require.Error(t, m.NewCurve(Curve{Name: "fit1", X: []float64{1}, Y: []float64{2}}))
	require.ErrorIs(t, m.NewCurve(Curve{Name: "bad", X: []float64{1}}), ErrLengthMismatch)

	c, ok := m.Curve("fit1")
	require.True(t, ok)
	require.Equal(t, []float64{2}, c.Y)
	require.Equal(t, 1, m.Curves())
	require.Len(t, m.List(), 1)

	m.Log("done")
	require.Equal(t, []string{"done"}, m.Lines())
}

func TestLogSinkForwards(t *testing.T) {
	var m MemorySink
	s := NewLogSink(&m, (*logging.TestLogger)(t))
	s.Log("status")
	require.NoError(t, s.NewCurve(Curve{Name: "c", X: []float64{0}, Y: []float64{0}}))
	require.Equal(t, []string{"status"}, m.Lines())
	require.Equal(t, 1, m.Curves())
	require.Len(t, m.List(), 1)
}

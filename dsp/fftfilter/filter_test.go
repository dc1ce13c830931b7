package fftfilter

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-curvefit/internal/testutil"
)

// twoTone samples dc + sin(2*pi*t) + 0.5*sin(2*pi*10*t) over one second.
func twoTone(n int, dc float64) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := range x {
		t := float64(i) / float64(n)
		x[i] = t
		y[i] = dc + math.Sin(2*math.Pi*t) + 0.5*math.Sin(2*math.Pi*10*t)
	}
	return x, y
}

func tone(x []float64, dc, amp, freq float64) []float64 {
	out := make([]float64, len(x))
	for i, t := range x {
		out[i] = dc + amp*math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func TestApplySeparatesTones(t *testing.T) {
	for _, n := range []int{128, 100} {
		x, y := twoTone(n, 3)

		tests := []struct {
			name   string
			filter Filter
			opts   []Option
			want   []float64
		}{
			{"lowpass", Filter{Kind: LowPass, Cutoff: 5}, nil, tone(x, 3, 1, 1)},
			{"highpass", Filter{Kind: HighPass, Cutoff: 5}, nil, tone(x, 0, 0.5, 10)},
			{"highpass offset", Filter{Kind: HighPass, Cutoff: 5}, []Option{WithOffset()}, tone(x, 3, 0.5, 10)},
			{"bandpass", Filter{Kind: BandPass, Low: 8, High: 12}, nil, tone(x, 0, 0.5, 10)},
			{"bandblock", Filter{Kind: BandBlock, Low: 8, High: 12}, nil, tone(x, 3, 1, 1)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, got, err := Apply(x, y, tt.filter, tt.opts...)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				testutil.RequireSliceNearlyEqual(t, got, tt.want, 1e-9)
			})
		}
	}
}

func TestApplySortsInput(t *testing.T) {
	x, y := twoTone(64, 0)
	x[0], x[10] = x[10], x[0]
	y[0], y[10] = y[10], y[0]

	xs, got, err := Apply(x, y, Filter{Kind: LowPass, Cutoff: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			t.Fatalf("output x not sorted at %d", i)
		}
	}
	testutil.RequireSliceNearlyEqual(t, got, tone(xs, 0, 1, 1), 1e-9)
}

func TestApplyErrors(t *testing.T) {
	x, y := twoTone(16, 0)
	nonUniform := append([]float64(nil), x...)
	nonUniform[5] += 0.01

	tests := []struct {
		name   string
		x, y   []float64
		filter Filter
		want   error
	}{
		{"unknown kind", x, y, Filter{Kind: Kind(42), Cutoff: 1}, ErrUnknownFilterKind},
		{"zero kind", x, y, Filter{Cutoff: 1}, ErrUnknownFilterKind},
		{"zero cutoff", x, y, Filter{Kind: LowPass}, ErrInvalidCutoff},
		{"reversed band", x, y, Filter{Kind: BandPass, Low: 5, High: 2}, ErrInvalidCutoff},
		{"negative band", x, y, Filter{Kind: BandBlock, Low: -1, High: 2}, ErrInvalidCutoff},
		{"infinite cutoff", x, y, Filter{Kind: HighPass, Cutoff: math.Inf(1)}, ErrInvalidCutoff},
		{"infinite band", x, y, Filter{Kind: BandPass, Low: 1, High: math.Inf(1)}, ErrInvalidCutoff},
		{"non uniform", nonUniform, y, Filter{Kind: LowPass, Cutoff: 1}, ErrNonUniformSampling},
		{"single point", x[:1], y[:1], Filter{Kind: LowPass, Cutoff: 1}, ErrInsufficientPoints},
		{"length mismatch", x, y[:3], Filter{Kind: LowPass, Cutoff: 1}, ErrLengthMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Apply(tt.x, tt.y, tt.filter)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"lowpass":    LowPass,
		"high-pass":  HighPass,
		"bandpass":   BandPass,
		"band-block": BandBlock,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("notch"); !errors.Is(err, ErrUnknownFilterKind) {
		t.Fatalf("expected ErrUnknownFilterKind, got %v", err)
	}
}

func TestMaskSymmetric(t *testing.T) {
	mask := Mask(10, 0.1, Filter{Kind: LowPass, Cutoff: 2}, false)
	want := []float64{1, 1, 1, 0, 0, 0, 0, 0, 1, 1}
	testutil.RequireSliceNearlyEqual(t, mask, want, 0)
}

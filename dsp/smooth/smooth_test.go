package smooth

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-curvefit/internal/testutil"
)

func TestSavGolReproducesPolynomial(t *testing.T) {
	// Non-uniform abscissa.
	x := make([]float64, 30)
	for i := range x {
		x[i] = float64(i) + 0.3*math.Sin(float64(i))
	}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 1 - 2*v + 0.5*v*v
	}

	got, err := SavGol(x, y, 3, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, y, 1e-8)
}

func TestSavGolReducesNoise(t *testing.T) {
	x, clean := testutil.SampleFunc(math.Sin, 0, 2*math.Pi, 200)
	noise := testutil.DeterministicNoise(1, 0.2, len(x))
	y := make([]float64, len(x))
	for i := range y {
		y[i] = clean[i] + noise[i]
	}

	got, err := SavGol(x, y, 8, 8, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before, after := rms(y, clean), rms(got, clean); after >= 0.75*before {
		t.Fatalf("noise not reduced: rms error %v before, %v after", before, after)
	}
}

func rms(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a)))
}

func TestAverage(t *testing.T) {
	got, err := Average([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{1.5, 2, 3, 4, 4.5}, 1e-12)

	same, _ := Average([]float64{1, 2, 3}, 1)
	testutil.RequireSliceNearlyEqual(t, same, []float64{1, 2, 3}, 0)
}

func TestLowPassRemovesHighFrequency(t *testing.T) {
	n := 64
	y := make([]float64, n)
	want := make([]float64, n)
	for i := range y {
		phase := 2 * math.Pi * float64(i) / float64(n)
		want[i] = 2 + math.Cos(phase)
		y[i] = want[i] + 0.3*math.Sin(20*phase)
	}

	got, err := LowPass(y, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestSmoothSortsAndDispatches(t *testing.T) {
	x := []float64{4, 0, 2, 1, 3}
	y := []float64{5, 1, 3, 2, 4}

	xs, ys, err := Smooth(x, y, Settings{Method: MovingAverage, Points: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, xs, []float64{0, 1, 2, 3, 4}, 0)
	testutil.RequireSliceNearlyEqual(t, ys, []float64{1.5, 2, 3, 4, 4.5}, 1e-12)
}

func TestSettingsOrderIgnored(t *testing.T) {
	if !(Settings{Method: FFT, Points: 4, Order: 2}).OrderIgnored() {
		t.Fatal("order on FFT smoothing should be reported as ignored")
	}
	if (Settings{Method: SavitzkyGolay, Left: 2, Right: 2, Order: 2}).OrderIgnored() {
		t.Fatal("order is used by Savitzky-Golay")
	}
}

func TestSmoothErrors(t *testing.T) {
	x := testutil.Index(10)
	y := testutil.Index(10)

	tests := []struct {
		name string
		x, y []float64
		s    Settings
		want error
	}{
		{"zero points", x, y, Settings{Method: MovingAverage}, ErrNonPositivePointCount},
		{"negative fft points", x, y, Settings{Method: FFT, Points: -2}, ErrNonPositivePointCount},
		{"empty sg window", x, y, Settings{Method: SavitzkyGolay, Order: 0}, ErrNonPositivePointCount},
		{"order equals window", x, y, Settings{Method: SavitzkyGolay, Left: 2, Right: 2, Order: 4}, ErrOrderExceedsWindow},
		{"negative order", x, y, Settings{Method: SavitzkyGolay, Left: 2, Right: 2, Order: -1}, ErrNegativeOrder},
		{"window larger than curve", x, y, Settings{Method: SavitzkyGolay, Left: 6, Right: 6, Order: 2}, ErrInsufficientPoints},
		{"unknown method", x, y, Settings{Method: Method(7), Points: 3}, ErrUnknownMethod},
		{"duplicate x", []float64{0, 1, 1}, []float64{1, 2, 3}, Settings{Method: MovingAverage, Points: 2}, ErrDegenerateAbscissa},
		{"length mismatch", x, y[:4], Settings{Method: MovingAverage, Points: 2}, ErrLengthMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Smooth(tt.x, tt.y, tt.s)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"sg": SavitzkyGolay, "fft": FFT, "average": MovingAverage} {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Fatalf("ParseMethod(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMethod("median"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func BenchmarkSavGol(b *testing.B) {
	x, y := testutil.SampleFunc(math.Sin, 0, 10, 1024)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = SavGol(x, y, 5, 5, 2)
	}
}

package conv

import (
	"fmt"
	"math"
	"testing"
)

var benchSizes = []struct {
	signal int
	kernel int
}{
	{1024, 8},
	{1024, 64},
	{4096, 32},
	{4096, 256},
	{16384, 1024},
}

func BenchmarkFFTConvolve(b *testing.B) {
	for _, size := range benchSizes {
		signal := makeTestSignal(size.signal)
		kernel := makeTestKernel(size.kernel)

		b.Run(fmt.Sprintf("signal=%d_kernel=%d", size.signal, size.kernel), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = FFTConvolve(signal, kernel)
			}
		})
	}
}

func BenchmarkConvolveResponse(b *testing.B) {
	signal := makeTestSignal(4096)
	response := makeTestKernel(129)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = ConvolveResponse(signal, response)
	}
}

func BenchmarkCorrelate(b *testing.B) {
	for _, n := range []int{256, 1024, 4096} {
		a := makeTestSignal(n)
		c := makeTestSignal(n / 2)

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = Correlate(a, c)
			}
		})
	}
}

func BenchmarkDeconvolve(b *testing.B) {
	signal := makeTestSignal(2048)
	kernel := makeTestKernel(32)
	convolved, _ := FFTConvolve(signal, kernel)
	opts := DefaultDeconvOptions()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Deconvolve(convolved, kernel, opts)
	}
}

// Helper to create test signals.
func makeTestSignal(n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2*math.Pi*float64(i)/100) + 0.5*math.Cos(2*math.Pi*float64(i)/30)
	}
	return signal
}

// Helper to create test kernels.
func makeTestKernel(n int) []float64 {
	kernel := make([]float64, n)
	// Simple lowpass-like kernel (sinc-ish)
	center := float64(n-1) / 2
	for i := range kernel {
		x := float64(i) - center
		if x == 0 {
			kernel[i] = 1.0
		} else {
			kernel[i] = math.Sin(math.Pi*x/4) / (math.Pi * x / 4)
		}
		// Apply Hann window
		kernel[i] *= 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return kernel
}

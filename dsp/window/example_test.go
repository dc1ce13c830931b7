package window_test

import (
	"fmt"

	"github.com/cwbudde/algo-curvefit/dsp/window"
)

func ExampleGenerate() {
	w := window.Generate(window.Hann, 5)
	fmt.Printf("%.2f\n", w)
	fmt.Printf("%.3f\n", window.CoherentGain(w))
	// Output:
	// [0.00 0.50 1.00 0.50 0.00]
	// 0.400
}

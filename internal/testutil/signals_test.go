package testutil

import (
	"math"
	"testing"
)

func TestSampleFunc(t *testing.T) {
	x, y := SampleFunc(func(v float64) float64 { return 2 * v }, 0, 1, 5)
	if len(x) != 5 || x[4] != 1 || y[2] != 1 {
		t.Fatalf("unexpected samples x=%v y=%v", x, y)
	}
}

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(2, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	// Quarter period of the first cycle peaks at 1.
	if math.Abs(s[6]-1) > 1e-12 {
		t.Fatalf("s[6] = %v, want 1", s[6])
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 100)
	b := DeterministicNoise(42, 1.0, 100)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: %v != %v", i, a[i], b[i])
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("index %d: %v out of range", i, a[i])
		}
	}
}

func TestImpulse(t *testing.T) {
	s := Impulse(8, 3)
	for i, v := range s {
		want := 0.0
		if i == 3 {
			want = 1
		}
		if v != want {
			t.Fatalf("s[%d] = %v, want %v", i, v, want)
		}
	}
	if got := Impulse(4, 10); got[0] != 0 {
		t.Fatal("out-of-range impulse should be all zeros")
	}
}

func TestIndex(t *testing.T) {
	x := Index(3)
	if x[0] != 0 || x[2] != 2 {
		t.Fatalf("Index(3) = %v", x)
	}
}

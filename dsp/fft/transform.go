package fft

import (
	"errors"
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-curvefit/dsp/core"
)

// MaxLength is the largest supported transform length. Bluestein needs
// working buffers of up to four times this size.
const MaxLength = 1 << 24

// lengthLimit is MaxLength; tests lower it.
var lengthLimit = MaxLength

// Errors returned by the transform engine.
var (
	ErrEmptyBuffer       = errors.New("fft: empty buffer")
	ErrLengthMismatch    = errors.New("fft: real/imaginary length mismatch")
	ErrAllocationFailure = errors.New("fft: cannot allocate working buffers")
	ErrTransformBackend  = errors.New("fft: transform backend error")
	ErrUnknownDirection  = errors.New("fft: unknown direction")
)

// Direction selects the transform direction.
type Direction int

const (
	Forward Direction = iota
	Inverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Transform returns the forward or inverse DFT of buf. buf is not modified.
func Transform(buf Buffer, dir Direction) (Buffer, error) {
	if err := buf.Validate(); err != nil {
		return Buffer{}, err
	}
	out, err := TransformComplex(buf.Complex(), dir)
	if err != nil {
		return Buffer{}, err
	}
	return FromComplex(out), nil
}

// TransformComplex is the []complex128 form of [Transform]. in is not
// modified.
func TransformComplex(in []complex128, dir Direction) ([]complex128, error) {
	n := len(in)
	switch {
	case n == 0:
		return nil, ErrEmptyBuffer
	case n > lengthLimit:
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrAllocationFailure, n, lengthLimit)
	case dir != Forward && dir != Inverse:
		return nil, fmt.Errorf("%w: %d", ErrUnknownDirection, int(dir))
	}

	out := make([]complex128, n)
	if n == 1 {
		out[0] = in[0]
		return out, nil
	}

	if core.IsPowerOf2(n) {
		if err := radix2(out, in, dir); err != nil {
			return nil, err
		}
		return out, nil
	}

	if dir == Forward {
		if err := bluestein(out, in); err != nil {
			return nil, err
		}
		return out, nil
	}

	// inverse(x) = conj(forward(conj(x))) / n
	conj := make([]complex128, n)
	for i, v := range in {
		conj[i] = complex(real(v), -imag(v))
	}
	if err := bluestein(out, conj); err != nil {
		return nil, err
	}
	scale := 1 / float64(n)
	for i, v := range out {
		out[i] = complex(real(v)*scale, -imag(v)*scale)
	}
	return out, nil
}

// ForwardReal transforms a real signal.
func ForwardReal(x []float64) ([]complex128, error) {
	in := make([]complex128, len(x))
	for i, v := range x {
		in[i] = complex(v, 0)
	}
	return TransformComplex(in, Forward)
}

// InverseReal inverse-transforms bins and returns the real part.
func InverseReal(bins []complex128) ([]float64, error) {
	out, err := TransformComplex(bins, Inverse)
	if err != nil {
		return nil, err
	}
	re := make([]float64, len(out))
	for i, v := range out {
		re[i] = real(v)
	}
	return re, nil
}

// Plans keep internal scratch space, so each goroutine borrows its own.
var (
	planPoolsMu sync.RWMutex
	planPools   = make(map[int]*sync.Pool)
)

type pooledPlan struct {
	plan *algofft.Plan[complex128]
	err  error
}

func planPool(n int) *sync.Pool {
	planPoolsMu.RLock()
	p, ok := planPools[n]
	planPoolsMu.RUnlock()
	if ok {
		return p
	}

	planPoolsMu.Lock()
	defer planPoolsMu.Unlock()
	if p, ok = planPools[n]; ok {
		return p
	}
	p = &sync.Pool{
		New: func() any {
			plan, err := algofft.NewPlan64(n)
			return &pooledPlan{plan: plan, err: err}
		},
	}
	planPools[n] = p
	return p
}

// radix2 runs a power-of-two transform of len(in) into out.
func radix2(out, in []complex128, dir Direction) error {
	n := len(in)
	pool := planPool(n)
	pp := pool.Get().(*pooledPlan)
	if pp.err != nil {
		return fmt.Errorf("%w: plan of size %d: %v", ErrTransformBackend, n, pp.err)
	}
	defer pool.Put(pp)

	var err error
	if dir == Forward {
		err = pp.plan.Forward(out, in)
	} else {
		err = pp.plan.Inverse(out, in)
	}
	if err != nil {
		return fmt.Errorf("%w: %s transform of size %d: %v", ErrTransformBackend, dir, n, err)
	}
	return nil
}

// bluestein computes the forward DFT of arbitrary length via a circular
// convolution of power-of-two length.
func bluestein(out, in []complex128) error {
	n := len(in)
	m := core.NextPowerOf2(2*n - 1)

	// chirp[k] = exp(-i*pi*k^2/n); k^2 is reduced mod 2n to keep the angle small.
	chirp := make([]complex128, n)
	twoN := 2 * n
	for k := 0; k < n; k++ {
		kk := (k * k) % twoN
		angle := -math.Pi * float64(kk) / float64(n)
		chirp[k] = complex(math.Cos(angle), math.Sin(angle))
	}

	a := make([]complex128, m)
	for k := 0; k < n; k++ {
		a[k] = in[k] * chirp[k]
	}

	b := make([]complex128, m)
	b[0] = conjugate(chirp[0])
	for k := 1; k < n; k++ {
		c := conjugate(chirp[k])
		b[k] = c
		b[m-k] = c
	}

	if err := radix2(a, a, Forward); err != nil {
		return err
	}
	if err := radix2(b, b, Forward); err != nil {
		return err
	}
	for i := range a {
		a[i] *= b[i]
	}
	if err := radix2(a, a, Inverse); err != nil {
		return err
	}

	for k := 0; k < n; k++ {
		out[k] = a[k] * chirp[k]
	}
	return nil
}

func conjugate(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

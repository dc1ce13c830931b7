package fft

import "fmt"

// Buffer holds the real and imaginary parts of N complex samples.
type Buffer struct {
	Re []float64
	Im []float64
}

// NewBuffer allocates a zeroed buffer of length n.
func NewBuffer(n int) Buffer {
	return Buffer{Re: make([]float64, n), Im: make([]float64, n)}
}

// FromReal returns a buffer with the given real part and a zero imaginary
// part. re is copied.
func FromReal(re []float64) Buffer {
	b := NewBuffer(len(re))
	copy(b.Re, re)
	return b
}

// FromComplex splits c into a buffer.
func FromComplex(c []complex128) Buffer {
	b := NewBuffer(len(c))
	for i, v := range c {
		b.Re[i] = real(v)
		b.Im[i] = imag(v)
	}
	return b
}

// Len returns the sample count.
func (b Buffer) Len() int { return len(b.Re) }

// Validate checks that the buffer is non-empty, that both parts have the
// same length and that the length is supported.
func (b Buffer) Validate() error {
	if len(b.Re) == 0 {
		return ErrEmptyBuffer
	}
	if b.Im != nil && len(b.Im) != len(b.Re) {
		return fmt.Errorf("%w: re %d, im %d", ErrLengthMismatch, len(b.Re), len(b.Im))
	}
	if len(b.Re) > lengthLimit {
		return fmt.Errorf("%w: length %d exceeds %d", ErrAllocationFailure, len(b.Re), lengthLimit)
	}
	return nil
}

// Complex returns the buffer as interleaved complex samples. A nil
// imaginary part is treated as zero.
func (b Buffer) Complex() []complex128 {
	out := make([]complex128, len(b.Re))
	for i, re := range b.Re {
		im := 0.0
		if b.Im != nil {
			im = b.Im[i]
		}
		out[i] = complex(re, im)
	}
	return out
}

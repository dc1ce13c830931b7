package data

import "fmt"

// Series is an in-memory [Accessor] backed by float64 slices.
type Series struct {
	name     string
	x, y     []float64
	xErr     []float64
	yErr     []float64
	readOnly bool
}

// SeriesOption configures a [Series].
type SeriesOption func(*Series)

// WithXErrors attaches an x error column.
func WithXErrors(e []float64) SeriesOption {
	return func(s *Series) { s.xErr = e }
}

// WithYErrors attaches a y error column.
func WithYErrors(e []float64) SeriesOption {
	return func(s *Series) { s.yErr = e }
}

// WithReadOnly marks the y column read-only.
func WithReadOnly() SeriesOption {
	return func(s *Series) { s.readOnly = true }
}

// NewSeries wraps x and y without copying. Error columns, when given,
// must match the data length.
func NewSeries(name string, x, y []float64, opts ...SeriesOption) (*Series, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: x has %d rows, y has %d", ErrLengthMismatch, len(x), len(y))
	}
	s := &Series{name: name, x: x, y: y}
	for _, opt := range opts {
		opt(s)
	}
	if s.xErr != nil && len(s.xErr) != len(x) {
		return nil, fmt.Errorf("%w: x error column has %d rows, data %d", ErrLengthMismatch, len(s.xErr), len(x))
	}
	if s.yErr != nil && len(s.yErr) != len(y) {
		return nil, fmt.Errorf("%w: y error column has %d rows, data %d", ErrLengthMismatch, len(s.yErr), len(y))
	}
	return s, nil
}

// MustSeries is like [NewSeries] but panics on error. Intended for tests and
// literals.
func MustSeries(name string, x, y []float64, opts ...SeriesOption) *Series {
	s, err := NewSeries(name, x, y, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Series) Name() string      { return s.name }
func (s *Series) Len() int          { return len(s.x) }
func (s *Series) X(i int) float64   { return s.x[i] }
func (s *Series) Y(i int) float64   { return s.y[i] }
func (s *Series) ReadOnly() bool    { return s.readOnly }
func (s *Series) Values() []float64 { return s.y }

func (s *Series) XErr(i int) (float64, bool) {
	if len(s.xErr) == 0 {
		return 0, false
	}
	return s.xErr[i], true
}

func (s *Series) YErr(i int) (float64, bool) {
	if len(s.yErr) == 0 {
		return 0, false
	}
	return s.yErr[i], true
}

// SetY overwrites row i of the y column.
func (s *Series) SetY(i int, v float64) error {
	if s.readOnly {
		return fmt.Errorf("%w: %q", ErrColumnReadOnly, s.name)
	}
	if i < 0 || i >= len(s.y) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	s.y[i] = v
	return nil
}

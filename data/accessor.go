package data

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by dataset helpers.
var (
	ErrNoCurve         = errors.New("data: no curve assigned")
	ErrLengthMismatch  = errors.New("data: column length mismatch")
	ErrColumnReadOnly  = errors.New("data: column is read-only")
	ErrInvalidRange    = errors.New("data: invalid range")
	ErrIndexOutOfRange = errors.New("data: index out of range")
)

// Accessor is a read-only view over a named, ordered (x, y) sequence with
// optional per-point errors.
type Accessor interface {
	Name() string
	Len() int
	X(i int) float64
	Y(i int) float64
	// XErr and YErr report false when the dataset carries no error column.
	XErr(i int) (float64, bool)
	YErr(i int) (float64, bool)
	ReadOnly() bool
}

// Writer is implemented by accessors whose y column can receive derived data.
type Writer interface {
	Accessor
	SetY(i int, v float64) error
}

// Range restricts an operation to the inclusive interval [From, To].
type Range struct {
	From float64
	To   float64
}

// Validate reports ErrInvalidRange unless From < To.
func (r Range) Validate() error {
	if math.IsNaN(r.From) || math.IsNaN(r.To) || !(r.From < r.To) {
		return fmt.Errorf("%w: from %g must be below to %g", ErrInvalidRange, r.From, r.To)
	}
	return nil
}

// Contains reports whether x lies inside the inclusive range.
func (r Range) Contains(x float64) bool {
	return x >= r.From && x <= r.To
}

// Points is a materialised selection of dataset rows.
type Points struct {
	X    []float64
	Y    []float64
	YErr []float64 // nil when the source has no y errors
	Rows []int     // source row of each point
}

// Len returns the number of selected points.
func (p Points) Len() int { return len(p.X) }

// Collect gathers the finite (x, y) rows of acc inside rng. A nil rng selects
// every row. Rows whose x or y is NaN are treated as empty cells and skipped.
func Collect(acc Accessor, rng *Range) (Points, error) {
	if acc == nil || acc.Len() == 0 {
		return Points{}, ErrNoCurve
	}
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return Points{}, err
		}
	}

	n := acc.Len()
	p := Points{
		X:    make([]float64, 0, n),
		Y:    make([]float64, 0, n),
		Rows: make([]int, 0, n),
	}
	_, hasErr := acc.YErr(0)
	if hasErr {
		p.YErr = make([]float64, 0, n)
	}

	for i := 0; i < n; i++ {
		x, y := acc.X(i), acc.Y(i)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		if rng != nil && !rng.Contains(x) {
			continue
		}
		p.X = append(p.X, x)
		p.Y = append(p.Y, y)
		p.Rows = append(p.Rows, i)
		if hasErr {
			e, _ := acc.YErr(i)
			p.YErr = append(p.YErr, e)
		}
	}
	return p, nil
}

// CheckWritable returns ErrColumnReadOnly when acc must not receive
// derived data.
func CheckWritable(acc Accessor) error {
	if acc.ReadOnly() {
		return fmt.Errorf("%w: %q", ErrColumnReadOnly, acc.Name())
	}
	return nil
}

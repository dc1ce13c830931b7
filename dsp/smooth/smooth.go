package smooth

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-curvefit/dsp/core"
)

// Errors returned by smoothing functions.
var (
	ErrNonPositivePointCount = errors.New("smooth: point count must be positive")
	ErrOrderExceedsWindow    = errors.New("smooth: polynomial order must be below left+right points")
	ErrNegativeOrder         = errors.New("smooth: polynomial order must be >= 0")
	ErrInsufficientPoints    = errors.New("smooth: insufficient points")
	ErrUnknownMethod         = errors.New("smooth: unknown method")
	ErrDegenerateAbscissa    = errors.New("smooth: duplicate x values")
	ErrLengthMismatch        = errors.New("smooth: x/y length mismatch")
)

// Method selects a smoothing algorithm.
type Method int

const (
	SavitzkyGolay Method = iota + 1
	FFT
	MovingAverage
)

func (m Method) String() string {
	switch m {
	case SavitzkyGolay:
		return "savitzky-golay"
	case FFT:
		return "fft"
	case MovingAverage:
		return "moving-average"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod maps a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "sg", "savgol", "savitzky-golay", "polynomial":
		return SavitzkyGolay, nil
	case "fft":
		return FFT, nil
	case "average", "moving-average", "avg":
		return MovingAverage, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Settings configures [Smooth].
//
// Points is the window size for FFT and moving-average smoothing. Left,
// Right and Order configure Savitzky–Golay; Order is ignored by the other
// methods.
type Settings struct {
	Method Method
	Points int
	Left   int
	Right  int
	Order  int
}

// OrderIgnored reports whether an order was set for a method that does not
// use one.
func (s Settings) OrderIgnored() bool {
	return s.Order != 0 && s.Method != SavitzkyGolay
}

// Validate checks s without looking at any data.
func (s Settings) Validate() error {
	switch s.Method {
	case SavitzkyGolay:
		if s.Left < 0 || s.Right < 0 || s.Left+s.Right < 1 {
			return fmt.Errorf("%w: left %d, right %d", ErrNonPositivePointCount, s.Left, s.Right)
		}
		if s.Order < 0 {
			return fmt.Errorf("%w: %d", ErrNegativeOrder, s.Order)
		}
		if s.Order >= s.Left+s.Right {
			return fmt.Errorf("%w: order %d, left %d, right %d", ErrOrderExceedsWindow, s.Order, s.Left, s.Right)
		}
	case FFT, MovingAverage:
		if s.Points < 1 {
			return fmt.Errorf("%w: %d", ErrNonPositivePointCount, s.Points)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMethod, int(s.Method))
	}
	return nil
}

// Smooth sorts (x, y) by x and smooths y with the configured method.
func Smooth(x, y []float64, s Settings) (xs, ys []float64, err error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	xs, sorted, dup := core.SortXY(x, y)
	if dup >= 0 {
		return nil, nil, fmt.Errorf("%w: x=%g", ErrDegenerateAbscissa, xs[dup])
	}

	switch s.Method {
	case SavitzkyGolay:
		ys, err = SavGol(xs, sorted, s.Left, s.Right, s.Order)
	case FFT:
		ys, err = LowPass(sorted, s.Points)
	default:
		ys, err = Average(sorted, s.Points)
	}
	if err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

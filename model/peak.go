package model

import (
	"fmt"
	"math"
)

// PeakShape is the basis function of a peak model.
type PeakShape int

const (
	// Gaussian is y = A*sqrt(2/pi)/w * exp(-2((x-xc)/w)^2); A is the area.
	Gaussian PeakShape = iota + 1
	// Lorentzian is y = 2A/pi * w/(4(x-xc)^2 + w^2); A is the area, w the FWHM.
	Lorentzian
)

var sqrt2OverPi = math.Sqrt(2 / math.Pi)

func (s PeakShape) String() string {
	switch s {
	case Gaussian:
		return "gauss"
	case Lorentzian:
		return "lorentz"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ParseShape maps "gauss"/"gaussian" and "lorentz"/"lorentzian" to a shape.
func ParseShape(s string) (PeakShape, error) {
	switch s {
	case "gauss", "gaussian", "Gauss":
		return Gaussian, nil
	case "lorentz", "lorentzian", "Lorentz":
		return Lorentzian, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

func (s PeakShape) valid() bool { return s == Gaussian || s == Lorentzian }

func (s PeakShape) eval(x, xc, w, a float64) float64 {
	if s == Lorentzian {
		d := x - xc
		return 2 * a / math.Pi * w / (4*d*d + w*w)
	}
	u := (x - xc) / w
	return a * sqrt2OverPi / w * math.Exp(-2*u*u)
}

// partials returns the derivatives of one peak with respect to xc, w and a.
func (s PeakShape) partials(x, xc, w, a float64) (dxc, dw, da float64) {
	if s == Lorentzian {
		d := x - xc
		den := 4*d*d + w*w
		k := 2 / math.Pi
		da = k * w / den
		dxc = k * a * w * 8 * d / (den * den)
		dw = k * a * (den - 2*w*w) / (den * den)
		return dxc, dw, da
	}
	u := (x - xc) / w
	g := math.Exp(-2 * u * u)
	da = sqrt2OverPi * g / w
	dxc = 4 * a * sqrt2OverPi * u * g / (w * w)
	dw = a * sqrt2OverPi * g * (4*u*u - 1) / (w * w)
	return dxc, dw, da
}

// Height returns the peak maximum above the baseline.
func (s PeakShape) Height(w, a float64) float64 {
	if s == Lorentzian {
		return 2 * a / (math.Pi * w)
	}
	return a * sqrt2OverPi / w
}

// FWHM returns the full width at half maximum for width parameter w.
func (s PeakShape) FWHM(w float64) float64 {
	if s == Lorentzian {
		return math.Abs(w)
	}
	return math.Abs(w) * math.Sqrt(2*math.Ln2)
}

// FromHeight returns the width and area parameters of a peak with the given
// height and full width at half maximum.
func (s PeakShape) FromHeight(height, fwhm float64) (w, a float64) {
	if s == Lorentzian {
		return fwhm, height * math.Pi * fwhm / 2
	}
	w = fwhm / math.Sqrt(2*math.Ln2)
	return w, height * w / sqrt2OverPi
}

// EstimatePeak locates the highest sample of y (sorted by x) above the
// baseline y0 and walks outward to half height to estimate the FWHM.
func EstimatePeak(x, y []float64, y0 float64) (xc, height, fwhm float64) {
	if len(x) == 0 {
		return 0, 0, 0
	}
	top := 0
	for i, v := range y {
		if v > y[top] {
			top = i
		}
	}
	return x[top], y[top] - y0, HalfWidth(x, y, top, y0)
}

// HalfWidth walks outward from sample i until y falls below half its
// height above y0 and returns the distance between the crossings. Missing
// crossings fall back to the data edges.
func HalfWidth(x, y []float64, i int, y0 float64) float64 {
	half := y0 + (y[i]-y0)/2
	lo := i
	for lo > 0 && y[lo] > half {
		lo--
	}
	hi := i
	for hi < len(y)-1 && y[hi] > half {
		hi++
	}
	width := x[hi] - x[lo]
	if width <= 0 {
		if len(x) > 1 {
			width = (x[len(x)-1] - x[0]) / float64(len(x)-1)
		} else {
			width = 1
		}
	}
	return width
}

package model

import (
	"fmt"
	"math"
)

// closedForm is a built-in model.
type closedForm struct {
	name   string
	params []Parameter
	eval   func(x float64, p []float64) float64
	guess  func(x, y []float64) []float64
}

func (c *closedForm) Name() string       { return c.name }
func (c *closedForm) Category() Category { return BuiltIn }

func (c *closedForm) Params() []Parameter {
	return append([]Parameter(nil), c.params...)
}

func (c *closedForm) Eval(x float64, p []float64) float64 { return c.eval(x, p) }

// Guess estimates initial values from data sorted by x. Models without a
// data-driven estimate return their defaults.
func (c *closedForm) Guess(x, y []float64) []float64 {
	if c.guess == nil || len(x) == 0 {
		return Initial(c)
	}
	return c.guess(x, y)
}

// analytic is a built-in model with closed-form partial derivatives.
type analytic struct {
	*closedForm
	deriv func(j int, x float64, p []float64) float64
}

func (a *analytic) Derivative(j int, x float64, p []float64) float64 {
	return a.deriv(j, x, p)
}

// Builtins returns the built-in models in catalog order.
func Builtins() []Model {
	out := []Model{
		expDecay(1), expDecay(2), expDecay(3),
		expGrowth(),
		linear(),
	}
	for order := 1; order <= 9; order++ {
		out = append(out, polynomial(order))
	}
	return append(out,
		logistic(),
		boltzmann(),
		peak("Gauss", Gaussian),
		peak("Lorentz", Lorentzian),
		gaussAmp(),
	)
}

// expDecay is y = sum A_i*exp(-x/t_i) + y0 with parameters A1, t1, ..., y0.
func expDecay(terms int) Model {
	var list []string
	for i := 1; i <= terms; i++ {
		list = append(list, fmt.Sprintf("A%d", i), fmt.Sprintf("t%d", i))
	}
	params := newParams(1, append(list, "y0")...)
	params[len(params)-1].Initial = 0
	last := 2 * terms

	c := &closedForm{
		name:   fmt.Sprintf("ExpDecay%d", terms),
		params: params,
		eval: func(x float64, p []float64) float64 {
			y := p[last]
			for i := 0; i < last; i += 2 {
				y += p[i] * math.Exp(-x/p[i+1])
			}
			return y
		},
		guess: func(x, y []float64) []float64 {
			return guessDecay(x, y, terms)
		},
	}
	return &analytic{closedForm: c, deriv: func(j int, x float64, p []float64) float64 {
		if j == last {
			return 1
		}
		i := j &^ 1
		e := math.Exp(-x / p[i+1])
		if j == i {
			return e
		}
		return p[i] * x / (p[i+1] * p[i+1]) * e
	}}
}

// expGrowth is y = A*exp(x/t) + y0.
func expGrowth() Model {
	params := newParams(1, "A", "t", "y0")
	params[2].Initial = 0
	c := &closedForm{
		name:   "ExpGrowth",
		params: params,
		eval: func(x float64, p []float64) float64 {
			return p[0]*math.Exp(x/p[1]) + p[2]
		},
		guess: guessGrowth,
	}
	return &analytic{closedForm: c, deriv: func(j int, x float64, p []float64) float64 {
		e := math.Exp(x / p[1])
		switch j {
		case 0:
			return e
		case 1:
			return -p[0] * x / (p[1] * p[1]) * e
		default:
			return 1
		}
	}}
}

// linear is y = a + b*x.
func linear() Model {
	c := &closedForm{
		name:   "Linear",
		params: newParams(1, "a", "b"),
		eval:   func(x float64, p []float64) float64 { return p[0] + p[1]*x },
		guess:  func(x, y []float64) []float64 { return polyFit(x, y, 1) },
	}
	return &analytic{closedForm: c, deriv: func(j int, x float64, _ []float64) float64 {
		if j == 0 {
			return 1
		}
		return x
	}}
}

// polynomial is y = a0 + a1*x + ... + aN*x^N.
func polynomial(order int) Model {
	list := make([]string, order+1)
	for i := range list {
		list[i] = fmt.Sprintf("a%d", i)
	}
	c := &closedForm{
		name:   fmt.Sprintf("Poly%d", order),
		params: newParams(1, list...),
		eval: func(x float64, p []float64) float64 {
			y := 0.0
			for i := len(p) - 1; i >= 0; i-- {
				y = y*x + p[i]
			}
			return y
		},
		guess: func(x, y []float64) []float64 { return polyFit(x, y, order) },
	}
	return &analytic{closedForm: c, deriv: func(j int, x float64, _ []float64) float64 {
		return math.Pow(x, float64(j))
	}}
}

// logistic is y = A2 + (A1-A2)/(1+(x/x0)^p). Its partials are numeric.
func logistic() Model {
	params := newParams(1, "A1", "A2", "x0", "p")
	params[3].Initial = 2
	return &closedForm{
		name:   "Logistic",
		params: params,
		eval: func(x float64, p []float64) float64 {
			return p[1] + (p[0]-p[1])/(1+math.Pow(x/p[2], p[3]))
		},
		guess: func(x, y []float64) []float64 {
			a1, a2, x0, _ := guessSigmoid(x, y)
			return []float64{a1, a2, x0, 2}
		},
	}
}

// boltzmann is y = A2 + (A1-A2)/(1+exp((x-x0)/dx)).
func boltzmann() Model {
	c := &closedForm{
		name:   "Boltzmann",
		params: newParams(1, "A1", "A2", "x0", "dx"),
		eval: func(x float64, p []float64) float64 {
			return p[1] + (p[0]-p[1])/(1+math.Exp((x-p[2])/p[3]))
		},
		guess: func(x, y []float64) []float64 {
			a1, a2, x0, dx := guessSigmoid(x, y)
			return []float64{a1, a2, x0, dx}
		},
	}
	return &analytic{closedForm: c, deriv: func(j int, x float64, p []float64) float64 {
		e := math.Exp((x - p[2]) / p[3])
		d := 1 + e
		switch j {
		case 0:
			return 1 / d
		case 1:
			return 1 - 1/d
		case 2:
			return (p[0] - p[1]) * e / (d * d * p[3])
		default:
			return (p[0] - p[1]) * e * (x - p[2]) / (d * d * p[3] * p[3])
		}
	}}
}

// peak is y = y0 + shape(x; xc, w, A) with parameters y0, xc, w, A.
func peak(name string, shape PeakShape) Model {
	params := newParams(1, "y0", "xc", "w", "A")
	params[0].Initial = 0
	c := &closedForm{
		name:   name,
		params: params,
		eval: func(x float64, p []float64) float64 {
			return p[0] + shape.eval(x, p[1], p[2], p[3])
		},
		guess: func(x, y []float64) []float64 {
			y0 := minOf(y)
			xc, h, fwhm := EstimatePeak(x, y, y0)
			w, a := shape.FromHeight(h, fwhm)
			return []float64{y0, xc, w, a}
		},
	}
	return &analytic{closedForm: c, deriv: func(j int, x float64, p []float64) float64 {
		if j == 0 {
			return 1
		}
		dxc, dw, da := shape.partials(x, p[1], p[2], p[3])
		return [...]float64{dxc, dw, da}[j-1]
	}}
}

// gaussAmp is y = y0 + A*exp(-(x-xc)^2/(2w^2)); A is the amplitude.
func gaussAmp() Model {
	params := newParams(1, "y0", "xc", "w", "A")
	params[0].Initial = 0
	c := &closedForm{
		name:   "GaussAmp",
		params: params,
		eval: func(x float64, p []float64) float64 {
			d := x - p[1]
			return p[0] + p[3]*math.Exp(-d*d/(2*p[2]*p[2]))
		},
		guess: func(x, y []float64) []float64 {
			y0 := minOf(y)
			xc, h, fwhm := EstimatePeak(x, y, y0)
			return []float64{y0, xc, fwhm / (2 * math.Sqrt(2*math.Ln2)), h}
		},
	}
	return &analytic{closedForm: c, deriv: func(j int, x float64, p []float64) float64 {
		d := x - p[1]
		w := p[2]
		g := math.Exp(-d * d / (2 * w * w))
		switch j {
		case 0:
			return 1
		case 1:
			return p[3] * g * d / (w * w)
		case 2:
			return p[3] * g * d * d / (w * w * w)
		default:
			return g
		}
	}}
}

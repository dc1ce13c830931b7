package analysis

import (
	"strings"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/fit"
	"github.com/cwbudde/algo-curvefit/fit/multipeak"
	"github.com/cwbudde/algo-curvefit/model"
)

// Fit regresses m against the target and writes the fitted curve.
func (e *Engine) Fit(t Target, m model.Model, opts ...fit.Option) (*fit.Result, error) {
	if err := noInPlace(t, "fit"); err != nil {
		return nil, err
	}
	if t.Source == nil {
		return nil, fit.ErrNoCurveAssigned
	}
	var pre []fit.Option
	if t.Range != nil {
		pre = append(pre, fit.WithRange(t.Range.From, t.Range.To))
	}
	if e.logger != nil {
		pre = append(pre, fit.WithLogger(e.logger))
	}
	run := fit.NewRun(t.Source, m, append(pre, opts...)...)

	res, err := fit.Fit(run)
	if err != nil {
		e.status("Fit of %s failed: %v", t.Source.Name(), err)
		return nil, err
	}
	if err := e.sink.NewCurve(res.Curve(t.curveName("fit"))); err != nil {
		return nil, err
	}
	e.logLines(res.Summary())
	return res, nil
}

// FitNamed resolves a registered model by name and fits it.
func (e *Engine) FitNamed(t Target, name string, opts ...fit.Option) (*fit.Result, error) {
	m, err := e.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Fit(t, m, opts...)
}

// Peaks decomposes the target into count automatically seeded peaks and
// writes the composed fit curve.
func (e *Engine) Peaks(t Target, shape model.PeakShape, count int, minSeparation float64, opts ...fit.Option) ([]multipeak.Peak, *fit.Result, error) {
	if err := noInPlace(t, "peaks"); err != nil {
		return nil, nil, err
	}
	dopts := []multipeak.Option{multipeak.WithFitOptions(opts...)}
	if t.Range != nil {
		dopts = append(dopts, multipeak.WithRange(t.Range.From, t.Range.To))
	}
	if e.logger != nil {
		dopts = append(dopts, multipeak.WithLogger(e.logger))
	}
	d := multipeak.New(shape, dopts...)
	if err := d.Start(t.Source); err != nil {
		return nil, nil, err
	}
	if err := d.SetPeakCount(count); err != nil {
		return nil, nil, err
	}
	if err := d.AutoSeed(minSeparation); err != nil {
		return nil, nil, err
	}
	res, err := d.Fit()
	if err != nil {
		e.status("Multi-peak fit of %s failed: %v", sourceName(t.Source), err)
		return nil, nil, err
	}
	if err := e.sink.NewCurve(res.Curve(t.curveName("peaks"))); err != nil {
		return nil, nil, err
	}
	e.logLines(res.Summary())
	e.logLines(multipeak.Format(d.Peaks()))
	return d.Peaks(), res, nil
}

func (e *Engine) logLines(text string) {
	for _, line := range strings.Split(text, "\n") {
		e.sink.Log(line)
	}
}

func sourceName(acc data.Accessor) string {
	if acc == nil {
		return "<none>"
	}
	return acc.Name()
}

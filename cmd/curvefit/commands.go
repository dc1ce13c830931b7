package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-curvefit/analysis"
	"github.com/cwbudde/algo-curvefit/config"
	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/dsp/calculus"
	"github.com/cwbudde/algo-curvefit/dsp/conv"
	"github.com/cwbudde/algo-curvefit/dsp/fftfilter"
	"github.com/cwbudde/algo-curvefit/dsp/interp"
	"github.com/cwbudde/algo-curvefit/dsp/smooth"
	"github.com/cwbudde/algo-curvefit/dsp/window"
	"github.com/cwbudde/algo-curvefit/fit"
	"github.com/cwbudde/algo-curvefit/model"
)

func (a *app) fitCmd() *cobra.Command {
	var (
		configPath string
		modelName  string
		expression string
		params     []string
		inits      []string
		fixes      []string
		algorithm  string
		weighting  string
		tolerance  float64
		maxIter    int
		points     int
		onData     bool
		scale      bool
		guess      bool
	)
	cmd := &cobra.Command{
		Use:   "fit [flags] file.csv",
		Short: "Fit a model to a curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := &config.Run{
				Model:         modelName,
				Expression:    expression,
				Algorithm:     algorithm,
				Weighting:     weighting,
				Tolerance:     tolerance,
				MaxIterations: maxIter,
				CurvePoints:   points,
				CurveOnData:   onData,
				ScaleErrors:   scale,
				Guess:         guess,
			}
			if configPath != "" {
				var err error
				if run, err = config.Load(configPath); err != nil {
					return err
				}
			} else {
				for _, p := range params {
					run.Parameters = append(run.Parameters, config.Parameter{Name: p})
				}
				if err := assign(run, inits, false); err != nil {
					return err
				}
				if err := assign(run, fixes, true); err != nil {
					return err
				}
				if err := run.Validate(); err != nil {
					return err
				}
			}

			alg, err := fit.ParseAlgorithm(run.Algorithm)
			if err != nil {
				return err
			}
			if err := a.loadPlugins(alg.Requirement()); err != nil {
				return err
			}
			m, err := run.Resolve(a.engine.Registry())
			if err != nil {
				return err
			}
			opts, err := run.Options(m)
			if err != nil {
				return err
			}
			t, err := a.target(cmd, args[0], false)
			if err != nil {
				return err
			}
			if _, err := a.engine.Fit(t, m, opts...); err != nil {
				return err
			}
			return a.finish(cmd, nil)
		},
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML run description (overrides the other fit flags)")
	f.StringVar(&modelName, "model", "", "registered model name (see 'curvefit models')")
	f.StringVar(&expression, "expr", "", "user-defined formula over x")
	f.StringSliceVar(&params, "params", nil, "parameter names of --expr, in order")
	f.StringArrayVar(&inits, "init", nil, "initial value name=value (repeatable)")
	f.StringArrayVar(&fixes, "fix", nil, "hold parameter name=value fixed (repeatable)")
	f.StringVar(&algorithm, "algorithm", "lm", "lm, lm-unscaled or simplex")
	f.StringVar(&weighting, "weighting", "none", "none, instrumental, statistical")
	f.Float64Var(&tolerance, "tol", fit.DefaultTolerance, "convergence tolerance")
	f.IntVar(&maxIter, "max-iter", fit.DefaultMaxIterations, "iteration limit")
	f.IntVar(&points, "points", fit.DefaultCurvePoints, "points of the generated curve")
	f.BoolVar(&onData, "on-data", false, "evaluate the fitted curve at the data x values")
	f.BoolVar(&scale, "scale-errors", false, "scale standard errors by sqrt(reduced chi²)")
	f.BoolVar(&guess, "guess", false, "estimate initial values from the data")
	return cmd
}

// assign applies name=value pairs to the run's parameter list.
func assign(run *config.Run, pairs []string, fixed bool) error {
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("curvefit: %q is not name=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("curvefit: %q: %w", pair, err)
		}
		found := false
		for i := range run.Parameters {
			if run.Parameters[i].Name == name {
				run.Parameters[i].Initial = &v
				run.Parameters[i].Fixed = run.Parameters[i].Fixed || fixed
				found = true
			}
		}
		if !found {
			run.Parameters = append(run.Parameters, config.Parameter{Name: name, Initial: &v, Fixed: fixed})
		}
	}
	return nil
}

func (a *app) peaksCmd() *cobra.Command {
	var (
		count int
		shape string
		sep   float64
		tol   float64
	)
	cmd := &cobra.Command{
		Use:   "peaks [flags] file.csv",
		Short: "Decompose a curve into automatically seeded peaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := model.ParseShape(shape)
			if err != nil {
				return err
			}
			t, err := a.target(cmd, args[0], false)
			if err != nil {
				return err
			}
			if _, _, err := a.engine.Peaks(t, s, count, sep, fit.WithTolerance(tol)); err != nil {
				return err
			}
			return a.finish(cmd, nil)
		},
	}
	f := cmd.Flags()
	f.IntVar(&count, "count", 1, "number of peaks")
	f.StringVar(&shape, "shape", "gauss", "gauss or lorentz")
	f.Float64Var(&sep, "min-sep", 0, "minimum x distance between seeded peaks")
	f.Float64Var(&tol, "tol", fit.DefaultTolerance, "convergence tolerance")
	return cmd
}

func (a *app) fftCmd() *cobra.Command {
	var (
		o        analysis.TransformOptions
		imagPath string
		win      string
	)
	cmd := &cobra.Command{
		Use:   "fft [flags] file.csv",
		Short: "Amplitude and phase spectrum of a uniformly sampled curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.target(cmd, args[0], false)
			if err != nil {
				return err
			}
			if o.Window, err = window.Parse(win); err != nil {
				return err
			}
			if imagPath != "" {
				im, err := readSeries(imagPath, cmd.InOrStdin(), false)
				if err != nil {
					return err
				}
				o.Imag = im
			}
			if _, err := a.engine.Transform(t, o); err != nil {
				return err
			}
			return a.finish(cmd, nil)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.Inverse, "inverse", false, "inverse transform")
	f.BoolVar(&o.Normalize, "normalize", false, "scale the amplitude to a maximum of 1")
	f.BoolVar(&o.Shift, "shift", false, "centre zero frequency")
	f.BoolVar(&o.Unwrap, "unwrap", false, "unwrap the phase")
	f.StringVar(&imagPath, "imag", "", "CSV holding the imaginary part")
	f.StringVar(&win, "window", "none", "taper: none, hann, hamming, blackman, welch or triangle")
	return cmd
}

func (a *app) filterCmd() *cobra.Command {
	var (
		kind    string
		filter  fftfilter.Filter
		offset  bool
		inPlace bool
	)
	cmd := &cobra.Command{
		Use:   "filter [flags] file.csv",
		Short: "FFT low-pass, high-pass, band-pass or band-block filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := fftfilter.ParseKind(kind)
			if err != nil {
				return err
			}
			filter.Kind = k
			t, err := a.target(cmd, args[0], inPlace)
			if err != nil {
				return err
			}
			if _, err := a.engine.Filter(t, filter, offset); err != nil {
				return err
			}
			return a.finish(cmd, inPlaceSource(t))
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "kind", "low", "low, high, bandpass or bandblock")
	f.Float64Var(&filter.Cutoff, "cutoff", 0, "cutoff frequency for low and high pass")
	f.Float64Var(&filter.Low, "low", 0, "lower band edge")
	f.Float64Var(&filter.High, "high", 0, "upper band edge")
	f.BoolVar(&offset, "offset", false, "keep the DC offset")
	f.BoolVar(&inPlace, "in-place", false, "replace y instead of writing a new curve")
	return cmd
}

func (a *app) smoothCmd() *cobra.Command {
	var (
		method  string
		s       smooth.Settings
		inPlace bool
	)
	cmd := &cobra.Command{
		Use:   "smooth [flags] file.csv",
		Short: "Savitzky-Golay, FFT or moving-average smoothing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := smooth.ParseMethod(method)
			if err != nil {
				return err
			}
			s.Method = m
			t, err := a.target(cmd, args[0], inPlace)
			if err != nil {
				return err
			}
			if _, err := a.engine.Smooth(t, s); err != nil {
				return err
			}
			return a.finish(cmd, inPlaceSource(t))
		},
	}
	f := cmd.Flags()
	f.StringVar(&method, "method", "savgol", "savgol, fft or average")
	f.IntVar(&s.Points, "points", 5, "window size for fft and average")
	f.IntVar(&s.Left, "left", 2, "Savitzky-Golay points left of centre")
	f.IntVar(&s.Right, "right", 2, "Savitzky-Golay points right of centre")
	f.IntVar(&s.Order, "order", 0, "Savitzky-Golay polynomial order")
	f.BoolVar(&inPlace, "in-place", false, "replace y instead of writing a new curve")
	return cmd
}

func (a *app) integrateCmd() *cobra.Command {
	var (
		method   int
		from, to float64
		strict   bool
	)
	cmd := &cobra.Command{
		Use:   "integrate [flags] file.csv",
		Short: "Integrate a curve between two limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.target(cmd, args[0], false)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("from") || !cmd.Flags().Changed("to") {
				lo, hi := bounds(t.Source)
				if !cmd.Flags().Changed("from") {
					from = lo
				}
				if !cmd.Flags().Changed("to") {
					to = hi
				}
			}
			res, err := a.engine.Integrate(t, calculus.Method(method), from, to, strict)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "area: %g\n", res.Area)
			return a.finish(cmd, nil)
		},
	}
	f := cmd.Flags()
	f.IntVar(&method, "method", 1, "polynomial order 1 (trapezoidal) to 5")
	f.Float64Var(&from, "from", 0, "lower limit (default: first x)")
	f.Float64Var(&to, "to", 0, "upper limit (default: last x)")
	f.BoolVar(&strict, "strict", false, "reject limits outside the data")
	return cmd
}

// bounds returns the smallest and largest x of acc.
func bounds(acc data.Accessor) (lo, hi float64) {
	pts, err := data.Collect(acc, nil)
	if err != nil || pts.Len() == 0 {
		return 0, 0
	}
	lo, hi = pts.X[0], pts.X[0]
	for _, v := range pts.X {
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}

func (a *app) diffCmd() *cobra.Command {
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "diff [flags] file.csv",
		Short: "Differentiate a curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.target(cmd, args[0], inPlace)
			if err != nil {
				return err
			}
			if _, err := a.engine.Differentiate(t); err != nil {
				return err
			}
			return a.finish(cmd, inPlaceSource(t))
		},
	}
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "replace y instead of writing a new curve")
	return cmd
}

func (a *app) interpCmd() *cobra.Command {
	var (
		method   string
		from, to float64
		points   int
		strict   bool
	)
	cmd := &cobra.Command{
		Use:   "interp [flags] file.csv",
		Short: "Resample a curve with linear, cubic spline or Akima interpolation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := interp.ParseMethod(method)
			if err != nil {
				return err
			}
			t, err := a.target(cmd, args[0], false)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("from") || !cmd.Flags().Changed("to") {
				lo, hi := bounds(t.Source)
				if !cmd.Flags().Changed("from") {
					from = lo
				}
				if !cmd.Flags().Changed("to") {
					to = hi
				}
			}
			if _, err := a.engine.Interpolate(t, m, from, to, points, strict); err != nil {
				return err
			}
			return a.finish(cmd, nil)
		},
	}
	f := cmd.Flags()
	f.StringVar(&method, "method", "linear", "linear, cubic or akima")
	f.Float64Var(&from, "from", 0, "first x (default: first data x)")
	f.Float64Var(&to, "to", 0, "last x (default: last data x)")
	f.IntVar(&points, "points", 100, "number of output points")
	f.BoolVar(&strict, "strict", false, "reject ranges beyond the data")
	return cmd
}

func (a *app) convolveCmd() *cobra.Command {
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "convolve [flags] signal.csv response.csv",
		Short: "Convolve a curve with a centred response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.target(cmd, args[0], inPlace)
			if err != nil {
				return err
			}
			resp, err := readSeries(args[1], cmd.InOrStdin(), true)
			if err != nil {
				return err
			}
			if _, err := a.engine.Convolve(t, resp); err != nil {
				return err
			}
			return a.finish(cmd, inPlaceSource(t))
		},
	}
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "replace y instead of writing a new curve")
	return cmd
}

func (a *app) deconvolveCmd() *cobra.Command {
	var (
		method  string
		epsilon float64
	)
	cmd := &cobra.Command{
		Use:   "deconvolve [flags] signal.csv response.csv",
		Short: "Remove a known response from a curve",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := conv.DefaultDeconvOptions()
			switch method {
			case "naive":
				opts.Method = conv.DeconvNaive
			case "regularized":
				opts.Method = conv.DeconvRegularized
			case "wiener":
				opts.Method = conv.DeconvWiener
			default:
				return fmt.Errorf("curvefit: unknown deconvolution method %q", method)
			}
			opts.Epsilon = epsilon
			t, err := a.target(cmd, args[0], false)
			if err != nil {
				return err
			}
			resp, err := readSeries(args[1], cmd.InOrStdin(), true)
			if err != nil {
				return err
			}
			if _, err := a.engine.Deconvolve(t, resp, opts); err != nil {
				return err
			}
			return a.finish(cmd, nil)
		},
	}
	f := cmd.Flags()
	f.StringVar(&method, "method", "regularized", "naive, regularized or wiener")
	f.Float64Var(&epsilon, "epsilon", 1e-6, "regularisation for the regularized method")
	return cmd
}

func (a *app) correlateCmd() *cobra.Command {
	var normalize bool
	cmd := &cobra.Command{
		Use:   "correlate [flags] a.csv [b.csv]",
		Short: "Cross-correlate two curves, or auto-correlate one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.target(cmd, args[0], false)
			if err != nil {
				return err
			}
			var other data.Accessor
			if len(args) == 2 {
				b, err := readSeries(args[1], cmd.InOrStdin(), true)
				if err != nil {
					return err
				}
				other = b
			}
			if _, err := a.engine.Correlate(t, other, normalize); err != nil {
				return err
			}
			return a.finish(cmd, nil)
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize", false, "scale so identical shapes peak at 1")
	return cmd
}

func (a *app) modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the registered fit models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadPlugins(model.NeedObjective); err != nil {
				return err
			}
			reg := a.engine.Registry()
			for _, name := range reg.Names() {
				m, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, m.Category(), paramNames(m))
			}
			return nil
		},
	}
}

func paramNames(m model.Model) string {
	var names []string
	for _, p := range m.Params() {
		names = append(names, p.Name)
	}
	return strings.Join(names, ",")
}

// inPlaceSource returns the series to print after an in-place operation.
func inPlaceSource(t analysis.Target) *data.Series {
	if !t.InPlace {
		return nil
	}
	s, _ := t.Source.(*data.Series)
	return s
}

// Command curvefit runs the curve analysis engine over CSV files.
//
// Usage:
//
//	curvefit <command> [flags] file.csv [file.csv]
//
// Input files hold x, y and an optional y error column. Produced curves are
// written as CSV to standard output or --out; status lines go to standard
// error.
//
// Examples:
//
//	curvefit fit --model ExpGrowth --fix y0=0 data.csv
//	curvefit fit --config run.yaml data.csv
//	curvefit fft --shift --normalize signal.csv
//	curvefit smooth --method savgol --left 3 --right 3 --order 2 noisy.csv
//	curvefit peaks --count 2 --shape lorentz spectrum.csv
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cwbudde/algo-curvefit/analysis"
	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/model"
)

// Log file rotation.
const (
	logMaxSize   = 10 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
	logSuppress  = false
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by one invocation's commands.
type app struct {
	logFile   string
	verbose   bool
	out       string
	xmin      float64
	xmax      float64
	pluginDir string

	log    logging.Logger
	sink   *data.MemorySink
	engine *analysis.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "curvefit",
		Short:         "Curve fitting and signal processing over CSV data",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.logFile, "log-file", "", "also write logs to this rotating file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	pf.StringVarP(&a.out, "out", "o", "", "write result CSV to this file instead of stdout")
	pf.Float64Var(&a.xmin, "xmin", 0, "restrict the operation to x >= xmin (with --xmax)")
	pf.Float64Var(&a.xmax, "xmax", 0, "restrict the operation to x <= xmax (with --xmin)")
	pf.StringVar(&a.pluginDir, "plugin-dir", "", "load fit model plugins from this directory")

	root.AddCommand(
		a.fitCmd(),
		a.peaksCmd(),
		a.fftCmd(),
		a.filterCmd(),
		a.smoothCmd(),
		a.integrateCmd(),
		a.diffCmd(),
		a.interpCmd(),
		a.convolveCmd(),
		a.deconvolveCmd(),
		a.correlateCmd(),
		a.modelsCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var logVerbosity = logging.Info
	if a.verbose {
		logVerbosity = logging.Debug
	}
	writers := []io.Writer{cmd.ErrOrStderr()}
	if a.logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   a.logFile,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		})
	}
	a.log = logging.New(logVerbosity, io.MultiWriter(writers...), logSuppress)

	opts := []model.RegistryOption{}
	if a.pluginDir != "" {
		opts = append(opts, model.WithPluginDir(a.pluginDir))
	}
	reg := model.NewRegistry(opts...)

	a.sink = &data.MemorySink{}
	e, err := analysis.New(a.sink, analysis.WithLogger(a.log), analysis.WithRegistry(reg))
	if err != nil {
		return err
	}
	a.engine = e
	return nil
}

// loadPlugins registers the plugin directory's models for an algorithm
// with requirement req.
func (a *app) loadPlugins(req model.Requirement) error {
	if a.pluginDir == "" {
		return nil
	}
	models, err := a.engine.Registry().LoadPluginDir(req)
	if err != nil {
		return err
	}
	for _, m := range models {
		a.log.Info("plugin loaded", "model", m.Name())
	}
	return nil
}

// target reads path and applies the --xmin/--xmax range.
func (a *app) target(cmd *cobra.Command, path string, inPlace bool) (analysis.Target, error) {
	s, err := readSeries(path, cmd.InOrStdin(), false)
	if err != nil {
		return analysis.Target{}, err
	}
	t := analysis.Target{Source: s, InPlace: inPlace}
	if cmd.Flags().Changed("xmin") || cmd.Flags().Changed("xmax") {
		if !cmd.Flags().Changed("xmin") || !cmd.Flags().Changed("xmax") {
			return analysis.Target{}, fmt.Errorf("curvefit: --xmin and --xmax must be given together")
		}
		t.Range = &data.Range{From: a.xmin, To: a.xmax}
	}
	return t, nil
}

// finish writes the produced curves and the results log. For in-place
// operations the modified source is written instead.
func (a *app) finish(cmd *cobra.Command, source *data.Series) error {
	for _, line := range a.sink.Lines() {
		fmt.Fprintln(cmd.ErrOrStderr(), line)
	}

	w := cmd.OutOrStdout()
	if a.out != "" {
		f, err := os.Create(a.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	curves := a.sink.List()
	if source != nil {
		x := make([]float64, source.Len())
		for i := range x {
			x[i] = source.X(i)
		}
		curves = []data.Curve{{Name: source.Name(), X: x, Y: source.Values()}}
	}
	return writeCurves(w, curves)
}

package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ausocean/utils/logging"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/model"
)

// Errors returned by the engine.
var (
	ErrNoSink      = errors.New("analysis: no results sink")
	ErrNotWritable = errors.New("analysis: source does not accept derived data")
	ErrNonUniform  = errors.New("analysis: x is not uniformly sampled")
)

// Engine runs analysis operations and reports into a sink.
type Engine struct {
	sink     data.Sink
	logger   logging.Logger
	registry *model.Registry
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the engine logger. Status lines written to the sink are
// not repeated here; wrap the sink in [data.LogSink] for that.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRegistry sets the model registry used to resolve model names.
func WithRegistry(r *model.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// New returns an engine writing to sink.
func New(sink data.Sink, opts ...Option) (*Engine, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	e := &Engine{sink: sink}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = model.NewRegistry()
	}
	return e, nil
}

// Registry returns the engine's model registry.
func (e *Engine) Registry() *model.Registry { return e.registry }

func (e *Engine) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) info(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) warning(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Warning(msg, args...)
	}
}

// status appends a line to the results log.
func (e *Engine) status(format string, args ...interface{}) {
	e.sink.Log(fmt.Sprintf(format, args...))
}

// Target names the curve an operation reads and where its result goes.
type Target struct {
	Source data.Accessor
	// Range optionally restricts the operation to [From, To].
	Range *data.Range
	// Name of the produced curve. Empty picks a unique name.
	Name string
	// InPlace writes the result into the source's y column instead of
	// creating a new curve.
	InPlace bool
}

// curveName returns t.Name or a unique name derived from the source.
func (t Target) curveName(op string) string {
	if t.Name != "" {
		return t.Name
	}
	src := "curve"
	if t.Source != nil {
		src = t.Source.Name()
	}
	return fmt.Sprintf("%s-%s-%s", src, op, uuid.NewString()[:8])
}

// selection is a target's points sorted by x with their source rows.
type selection struct {
	x, y []float64
	rows []int
}

// checkTarget validates the source before any numeric work, including
// write access when the result goes back into the source.
func checkTarget(t Target) (data.Writer, error) {
	if t.Source == nil {
		return nil, data.ErrNoCurve
	}
	if !t.InPlace {
		return nil, nil
	}
	if err := data.CheckWritable(t.Source); err != nil {
		return nil, err
	}
	w, ok := t.Source.(data.Writer)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotWritable, t.Source.Name())
	}
	return w, nil
}

// collect gathers t's points inside its range, sorted by x.
func collect(t Target) (selection, error) {
	pts, err := data.Collect(t.Source, t.Range)
	if err != nil {
		return selection{}, err
	}
	idx := make([]int, pts.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return pts.X[idx[a]] < pts.X[idx[b]] })
	s := selection{
		x:    make([]float64, len(idx)),
		y:    make([]float64, len(idx)),
		rows: make([]int, len(idx)),
	}
	for i, j := range idx {
		s.x[i], s.y[i], s.rows[i] = pts.X[j], pts.Y[j], pts.Rows[j]
	}
	return s, nil
}

// emit delivers a derived y column either back into the source rows of sel
// or as a new curve.
func (e *Engine) emit(t Target, w data.Writer, op string, sel selection, x, y []float64) (string, error) {
	if t.InPlace {
		if len(y) != len(sel.rows) {
			return "", fmt.Errorf("analysis: %s produced %d values for %d rows", op, len(y), len(sel.rows))
		}
		for i, row := range sel.rows {
			if err := w.SetY(row, y[i]); err != nil {
				return "", err
			}
		}
		e.debug("wrote in place", "op", op, "curve", t.Source.Name(), "rows", len(y))
		return t.Source.Name(), nil
	}
	name := t.curveName(op)
	if err := e.sink.NewCurve(data.Curve{Name: name, X: x, Y: y}); err != nil {
		return "", err
	}
	return name, nil
}

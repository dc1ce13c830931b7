package multipeak

import (
	"errors"
	"fmt"
	"math"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/fit"
	"github.com/cwbudde/algo-curvefit/model"
)

// Errors returned by the decomposer.
var (
	ErrInvalidTransition = errors.New("multipeak: invalid transition")
	ErrInvalidPeakCount  = errors.New("multipeak: invalid peak count")
	ErrNotEnoughPeaks    = errors.New("multipeak: not enough peaks detected")
	ErrNoCurveAssigned   = errors.New("multipeak: no curve assigned")
)

// State is a decomposer state.
type State int

const (
	Idle State = iota
	AwaitingPeakCount
	AwaitingSeedPositions
	Ready
	Fitting
	Converged
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPeakCount:
		return "awaiting peak count"
	case AwaitingSeedPositions:
		return "awaiting seed positions"
	case Ready:
		return "ready"
	case Fitting:
		return "fitting"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Seed is the initial guess for one peak, taken from a data sample.
type Seed struct {
	Row    int // index into the sorted fitted points
	Center float64
	Height float64 // above the baseline
	FWHM   float64
}

// Option configures a [Decomposer].
type Option func(*Decomposer)

// WithRange restricts the decomposition to [from, to].
func WithRange(from, to float64) Option {
	return func(d *Decomposer) { d.rng = &data.Range{From: from, To: to} }
}

// WithFitOptions passes options to every fit run.
func WithFitOptions(opts ...fit.Option) Option {
	return func(d *Decomposer) { d.fitOpts = append(d.fitOpts, opts...) }
}

// WithLogger logs state transitions at Debug.
func WithLogger(l logging.Logger) Option {
	return func(d *Decomposer) {
		d.logger = l
		d.fitOpts = append(d.fitOpts, fit.WithLogger(l))
	}
}

// Decomposer drives one multi-peak fit. It is not safe for concurrent use.
type Decomposer struct {
	shape   model.PeakShape
	rng     *data.Range
	fitOpts []fit.Option
	logger  logging.Logger

	state    State
	acc      data.Accessor
	x, y     []float64
	baseline float64
	count    int
	seeds    []Seed

	result *fit.Result
	peaks  []Peak
	err    error
}

// New returns an idle decomposer for peaks of the given shape.
func New(shape model.PeakShape, opts ...Option) *Decomposer {
	d := &Decomposer{shape: shape}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current state.
func (d *Decomposer) State() State { return d.state }

// Seeds returns the seeds placed so far.
func (d *Decomposer) Seeds() []Seed { return append([]Seed(nil), d.seeds...) }

// Baseline returns the baseline seed, the minimum y of the curve.
func (d *Decomposer) Baseline() float64 { return d.baseline }

// Result returns the fit result once converged.
func (d *Decomposer) Result() *fit.Result { return d.result }

// Peaks returns the derived peak table once converged.
func (d *Decomposer) Peaks() []Peak { return d.peaks }

// Err returns the failure of the last fit.
func (d *Decomposer) Err() error { return d.err }

func (d *Decomposer) expect(want State, event string) error {
	if d.state != want {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, d.state)
	}
	return nil
}

func (d *Decomposer) transition(to State) {
	if d.logger != nil {
		d.logger.Debug("multipeak transition", "from", d.state.String(), "to", to.String())
	}
	d.state = to
}

// Start binds acc and waits for the peak count.
func (d *Decomposer) Start(acc data.Accessor) error {
	if err := d.expect(Idle, "start"); err != nil {
		return err
	}
	pts, err := data.Collect(acc, d.rng)
	if err != nil {
		if errors.Is(err, data.ErrNoCurve) {
			return fmt.Errorf("%w: %v", ErrNoCurveAssigned, err)
		}
		return err
	}
	if pts.Len() == 0 {
		return fmt.Errorf("%w: no points in range", ErrNoCurveAssigned)
	}
	d.acc = acc
	d.x, d.y, _ = core.SortXY(pts.X, pts.Y)
	d.baseline = floats.Min(d.y)
	d.transition(AwaitingPeakCount)
	return nil
}

// SetPeakCount fixes the number of peaks. The composed model has 3k+1
// parameters, so the curve needs at least 3k+2 points.
func (d *Decomposer) SetPeakCount(k int) error {
	if err := d.expect(AwaitingPeakCount, "set peak count"); err != nil {
		return err
	}
	if k < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPeakCount, k)
	}
	if need := 3*k + 2; len(d.x) < need {
		return fmt.Errorf("%w: %d peaks need %d points, curve %q has %d", fit.ErrTooFewPoints, k, need, d.acc.Name(), len(d.x))
	}
	d.count = k
	d.seeds = d.seeds[:0]
	d.transition(AwaitingSeedPositions)
	return nil
}

// Seed places the next peak at the sample nearest to x.
func (d *Decomposer) Seed(x float64) (Seed, error) {
	if err := d.expect(AwaitingSeedPositions, "seed"); err != nil {
		return Seed{}, err
	}
	return d.place(d.nearest(x)), nil
}

// AutoSeed places the remaining peaks at the highest local maxima at least
// minSeparation apart from each other and from seeds already placed.
func (d *Decomposer) AutoSeed(minSeparation float64) error {
	if err := d.expect(AwaitingSeedPositions, "auto seed"); err != nil {
		return err
	}
	want := d.count - len(d.seeds)
	cand := model.FindPeaks(d.x, d.y, len(d.x), minSeparation)
	var picked []int
	for _, c := range cand {
		if len(picked) == want {
			break
		}
		if d.clear(c, minSeparation) {
			picked = append(picked, c)
		}
	}
	if len(picked) < want {
		return fmt.Errorf("%w: found %d of %d", ErrNotEnoughPeaks, len(picked), want)
	}
	for _, c := range picked {
		d.place(c)
	}
	return nil
}

func (d *Decomposer) clear(i int, minSeparation float64) bool {
	for _, s := range d.seeds {
		if s.Row == i || math.Abs(d.x[i]-s.Center) < minSeparation {
			return false
		}
	}
	return true
}

func (d *Decomposer) nearest(x float64) int {
	best := 0
	for i, v := range d.x {
		if math.Abs(v-x) < math.Abs(d.x[best]-x) {
			best = i
		}
	}
	return best
}

func (d *Decomposer) place(i int) Seed {
	s := Seed{
		Row:    i,
		Center: d.x[i],
		Height: d.y[i] - d.baseline,
		FWHM:   model.HalfWidth(d.x, d.y, i, d.baseline),
	}
	d.seeds = append(d.seeds, s)
	if len(d.seeds) == d.count {
		d.transition(Ready)
	}
	return s
}

// initial returns the composed model's starting parameters.
func (d *Decomposer) initial() []float64 {
	p := make([]float64, 1, 3*d.count+1)
	p[0] = d.baseline
	for _, s := range d.seeds {
		h := s.Height
		if h == 0 {
			h = math.SmallestNonzeroFloat32
		}
		w, a := d.shape.FromHeight(h, s.FWHM)
		p = append(p, s.Center, w, a)
	}
	return p
}

// Fit runs the composed model through the fit engine. A fit that stops at
// the iteration limit still converges the decomposer; the result's status
// tells the caller.
func (d *Decomposer) Fit() (*fit.Result, error) {
	if err := d.expect(Ready, "fit"); err != nil {
		return nil, err
	}
	m, err := model.NewMultiPeak(d.count, d.shape)
	if err != nil {
		return nil, err
	}
	d.transition(Fitting)

	opts := []fit.Option{fit.WithInitialValues(d.initial()...)}
	if d.rng != nil {
		opts = append(opts, fit.WithRange(d.rng.From, d.rng.To))
	}
	res, err := fit.Fit(fit.NewRun(d.acc, m, append(opts, d.fitOpts...)...))
	if err != nil {
		d.err = err
		d.transition(Failed)
		return nil, err
	}
	d.result = res
	d.peaks = Table(m, res)
	d.transition(Converged)
	return res, nil
}

// Abort discards everything and returns to Idle.
func (d *Decomposer) Abort() {
	d.transition(Idle)
	d.acc = nil
	d.x, d.y = nil, nil
	d.count = 0
	d.seeds = nil
	d.result = nil
	d.peaks = nil
	d.err = nil
}

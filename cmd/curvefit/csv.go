package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-curvefit/data"
)

var errNoColumns = errors.New("curvefit: need at least x and y columns")

// readSeries loads a CSV of x, y and an optional y error column. A first
// row that is not numeric is taken as a header. Empty cells read as NaN and
// are skipped by the engine. "-" reads standard input.
func readSeries(path string, stdin io.Reader, readOnly bool) (*data.Series, error) {
	var r io.Reader
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if path == "-" {
		r, name = stdin, "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("curvefit: read %s: %w", path, err)
	}

	var x, y, yErr []float64
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: %s line %d", errNoColumns, path, i+1)
		}
		xv, errX := cell(rec[0])
		yv, errY := cell(rec[1])
		if errX != nil || errY != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("curvefit: %s line %d: not a number", path, i+1)
		}
		x = append(x, xv)
		y = append(y, yv)
		if len(rec) > 2 {
			ev, err := cell(rec[2])
			if err != nil {
				return nil, fmt.Errorf("curvefit: %s line %d: bad error value", path, i+1)
			}
			yErr = append(yErr, ev)
		}
	}

	var opts []data.SeriesOption
	if len(yErr) > 0 {
		opts = append(opts, data.WithYErrors(yErr))
	}
	if readOnly {
		opts = append(opts, data.WithReadOnly())
	}
	return data.NewSeries(name, x, y, opts...)
}

func cell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// writeCurves writes curves as CSV. Curves sharing one x axis become
// columns of a single table; otherwise each curve is its own block.
func writeCurves(w io.Writer, curves []data.Curve) error {
	if len(curves) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if sharedAxis(curves) {
		header := []string{"x"}
		for _, c := range curves {
			header = append(header, c.Name)
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		for i, xv := range curves[0].X {
			row := []string{format(xv)}
			for _, c := range curves {
				row = append(row, format(c.Y[i]))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	for k, c := range curves {
		if k > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{"x", c.Name}); err != nil {
			return err
		}
		for i := range c.X {
			if err := cw.Write([]string{format(c.X[i]), format(c.Y[i])}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func sharedAxis(curves []data.Curve) bool {
	x := curves[0].X
	for _, c := range curves[1:] {
		if len(c.X) != len(x) {
			return false
		}
		for i := range x {
			if c.X[i] != x[i] {
				return false
			}
		}
	}
	return true
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package data

import (
	"fmt"
	"sync"

	"github.com/ausocean/utils/logging"
)

// Curve is a named result produced by the engine.
type Curve struct {
	Name string
	X    []float64
	Y    []float64
}

// Sink receives produced curves and human-readable status lines.
type Sink interface {
	NewCurve(c Curve) error
	Log(line string)
}

// MemorySink keeps everything in memory. It is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	curves []Curve
	lines  []string
}

// NewCurve stores c. Curve names must be unique.
func (m *MemorySink) NewCurve(c Curve) error {
	if len(c.X) != len(c.Y) {
		return fmt.Errorf("%w: curve %q", ErrLengthMismatch, c.Name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.curves {
		if existing.Name == c.Name {
			return fmt.Errorf("data: curve %q already exists", c.Name)
		}
	}
	m.curves = append(m.curves, c)
	return nil
}

// Log appends a status line.
func (m *MemorySink) Log(line string) {
	m.mu.Lock()
	m.lines = append(m.lines, line)
	m.mu.Unlock()
}

// Curve returns the stored curve with the given name.
func (m *MemorySink) Curve(name string) (Curve, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.curves {
		if c.Name == name {
			return c, true
		}
	}
	return Curve{}, false
}

// List returns the stored curves in creation order.
func (m *MemorySink) List() []Curve {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Curve(nil), m.curves...)
}

// Curves returns the number of stored curves.
func (m *MemorySink) Curves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.curves)
}

// Lines returns a copy of the results log.
func (m *MemorySink) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// LogSink wraps another sink and mirrors its results log into a logger.
type LogSink struct {
	Sink
	logger logging.Logger
}

// NewLogSink returns a sink forwarding to next and logging each status line
// at info level.
func NewLogSink(next Sink, l logging.Logger) *LogSink {
	return &LogSink{Sink: next, logger: l}
}

// Log forwards line to the wrapped sink and the logger.
func (s *LogSink) Log(line string) {
	if s.Sink != nil {
		s.Sink.Log(line)
	}
	if s.logger != nil {
		s.logger.Info(line)
	}
}

// NewCurve forwards c to the wrapped sink.
func (s *LogSink) NewCurve(c Curve) error {
	if s.Sink == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.Debug("new curve", "name", c.Name, "points", len(c.X))
	}
	return s.Sink.NewCurve(c)
}

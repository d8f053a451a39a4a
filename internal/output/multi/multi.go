// Package multi tees fetch results into several sinks at once, e.g. a
// rotating file plus a webhook.
package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/vitigate/internal/output"
)

// Multi is an output.Output backed by a fixed list of sinks.
type Multi struct {
	sinks []output.Output
}

// New returns a Multi over sinks. Nil entries are ignored.
func New(sinks ...output.Output) *Multi {
	m := &Multi{sinks: make([]output.Output, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Write hands result to each sink in turn. A failing sink does not stop
// the others; all failures come back joined.
func (m *Multi) Write(ctx context.Context, result output.Result) error {
	return m.each(func(s output.Output) error { return s.Write(ctx, result) })
}

// Close closes every sink, even after one fails.
func (m *Multi) Close() error {
	return m.each(output.Output.Close)
}

func (m *Multi) each(fn func(output.Output) error) error {
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

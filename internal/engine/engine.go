package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/MuchTitan/session-watcher/internal"
	"github.com/MuchTitan/session-watcher/internal/filter"
	"github.com/MuchTitan/session-watcher/internal/input"
	"github.com/MuchTitan/session-watcher/internal/output"
	"github.com/MuchTitan/session-watcher/internal/parser"
	"github.com/sirupsen/logrus"
)

// Engine runs input → filters → parsers → outputs one line at a time. The
// next line is not taken before the previous one is fully handled.
type Engine struct {
	input   input.Plugin
	filters []filter.Plugin
	parsers []parser.Plugin
	outputs []output.Plugin
	stats   Stats
}

// NewEngine returns an engine without plugins.
func NewEngine() *Engine {
	return &Engine{}
}

// SetInput sets the line source of the engine
func (e *Engine) SetInput(input input.Plugin) {
	e.input = input
}

// RegisterFilter adds a filter plugin to the engine
func (e *Engine) RegisterFilter(filter filter.Plugin) {
	e.filters = append(e.filters, filter)
}

// RegisterParser adds an parser plugin to the engine
func (e *Engine) RegisterParser(parser parser.Plugin) {
	e.parsers = append(e.parsers, parser)
}

// RegisterOutput adds an output plugin to the engine
func (e *Engine) RegisterOutput(output output.Plugin) {
	e.outputs = append(e.outputs, output)
}

// Stats returns the counters collected so far.
func (e *Engine) Stats() StatsSnapshot {
	return e.stats.Snapshot()
}

// Run blocks until ctx is cancelled, the input ends, or a line fails in a
// way the watcher cannot recover from. Only the latter returns an error.
func (e *Engine) Run(ctx context.Context) error {
	if e.input == nil {
		return errors.New("no input configured")
	}

	lines, err := e.input.Start(ctx)
	if err != nil {
		return fmt.Errorf("couldn't start input %s: %w", e.input.Name(), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-lines:
			if !ok {
				if err := e.input.Err(); err != nil {
					return fmt.Errorf("input %s stopped: %w", e.input.Name(), err)
				}
				logrus.WithField("input", e.input.Name()).Info("Input reached end of stream")
				return nil
			}
			if err := e.process(ctx, &event); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// process handles a single line. Errors returned from here are fatal.
func (e *Engine) process(ctx context.Context, event *internal.Event) error {
	e.stats.lines.Add(1)

	for _, f := range e.filters {
		var err error
		event, err = f.Process(event)
		if err != nil {
			logrus.WithField("filter", f.Name()).WithError(err).Error("Couldn't filter event")
			return nil
		}
		if event == nil {
			// Event was filtered out
			return nil
		}
	}
	e.stats.matched.Add(1)

	logrus.Info("Found and processing line " + event.RawData)

	for _, p := range e.parsers {
		err := p.Process(event)
		if err == nil {
			continue
		}
		e.stats.discarded.Add(1)
		switch {
		case errors.Is(err, parser.ErrNotFound):
			logrus.Warn("id is not the right length or not found in line")
		case errors.Is(err, parser.ErrUnexpectedLength):
			logrus.Warn("We reached a condition that is unexpected with the following line:\n\t" + event.RawData)
		default:
			logrus.WithField("parser", p.Name()).WithError(err).Warn("Couldn't parse event")
		}
		return nil
	}

	for _, out := range e.outputs {
		if err := out.Write(ctx, event); err != nil {
			return fmt.Errorf("output %s failed for session %s: %w", out.Name(), event.SessionID, err)
		}
	}
	e.stats.notified.Add(1)

	return nil
}

// Stop releases every plugin and logs what the engine processed.
func (e *Engine) Stop() error {
	var errs []error

	if e.input != nil {
		errs = append(errs, e.input.Exit())
	}
	for _, f := range e.filters {
		errs = append(errs, f.Exit())
	}
	for _, p := range e.parsers {
		errs = append(errs, p.Exit())
	}
	for _, out := range e.outputs {
		errs = append(errs, out.Exit())
	}

	s := e.stats.Snapshot()
	logrus.WithFields(logrus.Fields{
		"lines":     s.Lines,
		"matched":   s.Matched,
		"discarded": s.Discarded,
		"notified":  s.Notified,
	}).Info("Engine stopped")

	return errors.Join(errs...)
}

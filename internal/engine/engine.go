// Package engine loads pytest reports from several sources in parallel and
// normalizes them into flat records.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lu-zhengda/pytestmap/internal/report"
)

// DefaultConcurrency bounds parallel source reads when none is configured.
const DefaultConcurrency = 8

// Batch is the outcome of loading one source.
type Batch struct {
	Source  string
	Records []report.FlatRecord
	Stats   report.Stats
	Err     error
}

type Engine struct {
	sources     []Source
	format      report.Format
	concurrency int
	logger      *zap.Logger
}

func New() *Engine {
	return &Engine{
		format:      report.FormatAuto,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
}

func (e *Engine) Register(s Source) {
	e.sources = append(e.sources, s)
}

func (e *Engine) Sources() []Source {
	return e.sources
}

// SetFormat forces the report format for every source.
func (e *Engine) SetFormat(f report.Format) {
	e.format = f
}

func (e *Engine) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	e.concurrency = n
}

func (e *Engine) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	e.logger = l
}

// LoadAll reads every registered source and returns one batch per source in
// registration order.
func (e *Engine) LoadAll(ctx context.Context) ([]Batch, error) {
	return e.LoadAllWithProgress(ctx, nil)
}

// LoadStatus represents the state of a source in the progress callback.
type LoadStatus int

const (
	LoadWaiting LoadStatus = iota
	LoadStarted
	LoadDone
)

// LoadProgress is sent to the progress callback for each source event.
type LoadProgress struct {
	Name    string
	Status  LoadStatus
	Records int
	Error   error
}

// LoadAllWithProgress is LoadAll with a callback for each source event.
// Every source is reported waiting before any load starts, then started
// and done as the concurrency limit admits it. The callback may be called
// from several goroutines.
func (e *Engine) LoadAllWithProgress(ctx context.Context, onProgress func(LoadProgress)) ([]Batch, error) {
	if len(e.sources) == 0 {
		return nil, nil
	}

	batches := make([]Batch, len(e.sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	if onProgress != nil {
		for _, s := range e.sources {
			onProgress(LoadProgress{Name: s.Name(), Status: LoadWaiting})
		}
	}
	for i, s := range e.sources {
		g.Go(func() error {
			if onProgress != nil {
				onProgress(LoadProgress{Name: s.Name(), Status: LoadStarted})
			}

			b := e.load(gctx, s)
			batches[i] = b

			if onProgress != nil {
				onProgress(LoadProgress{
					Name:    s.Name(),
					Status:  LoadDone,
					Records: len(b.Records),
					Error:   b.Err,
				})
			}
			// Errors are reported per batch.
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, b := range batches {
		if b.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Source, b.Err))
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return batches, errors.Join(errs...)
}

func (e *Engine) load(ctx context.Context, s Source) Batch {
	b := Batch{Source: s.Name()}
	data, err := readAll(ctx, s)
	if err != nil {
		b.Err = err
		e.logger.Warn("source unreadable", zap.String("source", b.Source), zap.Error(err))
		return b
	}
	b.Records, b.Stats, b.Err = report.Decode(data, b.Source, e.format, e.logger)
	if b.Err != nil {
		e.logger.Warn("source undecodable", zap.String("source", b.Source), zap.Error(b.Err))
		return b
	}
	e.logger.Debug("source loaded",
		zap.String("source", b.Source),
		zap.String("format", string(b.Stats.Format)),
		zap.Int("records", b.Stats.Records),
		zap.Int("skipped", b.Stats.Skipped),
	)
	return b
}

// Records concatenates the records of all batches in batch order.
func Records(batches []Batch) []report.FlatRecord {
	var n int
	for _, b := range batches {
		n += len(b.Records)
	}
	out := make([]report.FlatRecord, 0, n)
	for _, b := range batches {
		out = append(out, b.Records...)
	}
	return out
}

// Skipped sums the skipped-entry counts of all batches.
func Skipped(batches []Batch) int {
	var n int
	for _, b := range batches {
		n += b.Stats.Skipped
	}
	return n
}

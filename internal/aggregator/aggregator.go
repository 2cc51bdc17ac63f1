package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusParseError Status = "parse_error"
	StatusNoData     Status = "no_data"
	// StatusFailed covers cancellation and unexpected failures.
	StatusFailed Status = "failed"
)

// Result is everything a caller needs to present a run. Err is a
// *ParseError for StatusParseError and a *NoDataError for StatusNoData.
type Result struct {
	Status   Status
	Table    *ConsolidatedTable
	Err      error
	Files    int
	Skipped  []string
	Warnings []string
}

// OK reports whether the run produced a table.
func (r Result) OK() bool {
	return r.Status == StatusSuccess && r.Table != nil
}

// Aggregator turns monthly files into a consolidated table.
type Aggregator struct {
	logger  *slog.Logger
	workers int
}

// New creates an aggregator parsing at most workers files at a time.
func New(logger *slog.Logger, workers int) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		logger:  logger.With(slog.String("component", "aggregator")),
		workers: workers,
	}
}

type fileOutcome struct {
	series *MonthSeries
	err    error
}

// Run parses every input, filters to opts.Year, scales by opts.Multiplier
// and builds the table. Files are parsed concurrently but the outcome only
// depends on input order: the first failing file in that order is reported,
// and for a repeated period the later file wins. Run never panics.
func (a *Aggregator) Run(ctx context.Context, inputs []Input, opts Options) Result {
	start := time.Now()
	result := Result{Files: len(inputs)}

	outcomes := make([]fileOutcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = a.processFile(inputs[i], opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return a.fail(ctx, result, StatusFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return a.fail(ctx, result, StatusFailed, err)
	}

	var series []*MonthSeries
	seen := make(map[Period]string)
	for i, out := range outcomes {
		if out.err != nil {
			var perr *ParseError
			if errors.As(out.err, &perr) {
				return a.fail(ctx, result, StatusParseError, out.err)
			}
			return a.fail(ctx, result, StatusFailed, out.err)
		}

		if out.series == nil {
			result.Skipped = append(result.Skipped, inputs[i].Name)
			a.logger.DebugContext(ctx, "file has no rows in selected year",
				slog.String("file", inputs[i].Name),
				slog.Int("year", opts.Year))
			continue
		}

		if prev, dup := seen[out.series.Period]; dup {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s replaces %s for period %s", inputs[i].Name, prev, out.series.Period.Label()))
		}
		seen[out.series.Period] = inputs[i].Name
		series = append(series, out.series)
	}

	table, err := BuildTable(series, opts.Year, opts.Multiplier)
	if err != nil {
		var noData *NoDataError
		if errors.As(err, &noData) {
			return a.fail(ctx, result, StatusNoData, err)
		}
		return a.fail(ctx, result, StatusFailed, err)
	}

	result.Status = StatusSuccess
	result.Table = table

	a.logger.InfoContext(ctx, "summary built",
		slog.Int("year", opts.Year),
		slog.String("multiplier", opts.Multiplier.String()),
		slog.Int("files", len(inputs)),
		slog.Int("columns", len(table.Columns)),
		slog.Int("skipped", len(result.Skipped)),
		slog.String("grand_total", table.GrandTotal.String()),
		slog.Duration("duration", time.Since(start)))

	return result
}

func (a *Aggregator) processFile(in Input, opts Options) (out fileOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = fileOutcome{err: fmt.Errorf("%s: unexpected failure: %v", in.Name, rec)}
		}
	}()

	if in.Reader == nil {
		return fileOutcome{err: &ParseError{Source: in.Name, Err: ErrEmptyFile}}
	}

	record, err := ParseMonthlyRecord(in.Name, in.Reader)
	if err != nil {
		return fileOutcome{err: err}
	}

	series, _, err := record.Series(opts.Year, opts.Multiplier)
	return fileOutcome{series: series, err: err}
}

func (a *Aggregator) fail(ctx context.Context, result Result, status Status, err error) Result {
	result.Status = status
	result.Err = err

	level := slog.LevelWarn
	if status == StatusFailed {
		level = slog.LevelError
	}
	a.logger.Log(ctx, level, "summary not built",
		slog.String("status", string(status)),
		slog.String("error", err.Error()),
		slog.Int("files", result.Files))

	return result
}

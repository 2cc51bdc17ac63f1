package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"riepilogo/internal/aggregator"
	"riepilogo/internal/config"
	"riepilogo/internal/exporter"
	"riepilogo/internal/infrastructure"
)

// Format is a download format.
type Format string

const (
	FormatXLSX Format = exporter.ExtXLSX
	FormatCSV  Format = exporter.ExtCSV
)

// ParseFormat accepts "xlsx" and "csv", case-insensitively. An empty string
// selects xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ParseMultiplier parses a multiplier typed with either decimal separator,
// so "1,5" and "1.5" are the same value.
func ParseMultiplier(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

// SummaryRequest carries the user's processing options.
type SummaryRequest struct {
	Year       int     `json:"year" validate:"required,allowed_year"`
	Multiplier float64 `json:"multiplier" validate:"finite"`
}

// Summary is a successful run.
type Summary struct {
	Year        int
	Multiplier  decimal.Decimal
	Table       *aggregator.ConsolidatedTable
	Files       int
	Skipped     []string
	Warnings    []string
	GeneratedAt time.Time
}

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Options is the configuration surface shown to users.
type Options struct {
	Years             []int   `json:"years"`
	DefaultYear       int     `json:"default_year"`
	DefaultMultiplier float64 `json:"default_multiplier"`
	MultiplierStep    float64 `json:"multiplier_step"`
	MaxFiles          int     `json:"max_files"`
	MaxFileBytes      int64   `json:"max_file_bytes"`
}

// Runner builds a consolidated table from inputs.
type Runner interface {
	Run(ctx context.Context, inputs []aggregator.Input, opts aggregator.Options) aggregator.Result
}

// RequestValidator validates tagged structs.
type RequestValidator interface {
	ValidateStruct(v interface{}) error
}

// SummaryService turns uploaded monthly files into a consolidated summary.
type SummaryService struct {
	cfg       config.SummaryConfig
	runner    Runner
	validator RequestValidator
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	xlsx      *exporter.XLSXWriter
	csv       *exporter.CSVWriter
	logger    *slog.Logger
	now       func() time.Time
}

// NewSummaryService creates a summary service backed by the aggregator.
func NewSummaryService(cfg config.SummaryConfig, validator RequestValidator, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	return NewSummaryServiceWithRunner(cfg, aggregator.New(logger, cfg.Workers), validator, tracer, metrics, logger)
}

// NewSummaryServiceWithRunner creates a summary service with an explicit runner.
func NewSummaryServiceWithRunner(cfg config.SummaryConfig, runner Runner, validator RequestValidator, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}

	logger = logger.With(slog.String("service", "summary"))
	logger.Info("SummaryService initialized",
		slog.Any("years", cfg.Years),
		slog.Int("max_files", cfg.MaxFiles),
		slog.Int("workers", cfg.Workers))

	return &SummaryService{
		cfg:       cfg,
		runner:    runner,
		validator: validator,
		tracer:    tracer,
		metrics:   metrics,
		xlsx:      exporter.NewXLSXWriter(),
		csv:       exporter.NewCSVWriter(),
		logger:    logger,
		now:       time.Now,
	}
}

// Options returns the year choices, defaults and upload limits.
func (s *SummaryService) Options() Options {
	return Options{
		Years:             slices.Clone(s.cfg.Years),
		DefaultYear:       s.cfg.DefaultYear(),
		DefaultMultiplier: s.cfg.DefaultMultiplier,
		MultiplierStep:    s.cfg.MultiplierStep,
		MaxFiles:          s.cfg.MaxFiles,
		MaxFileBytes:      s.cfg.MaxFileBytes,
	}
}

// DefaultRequest is the request the form starts from.
func (s *SummaryService) DefaultRequest() SummaryRequest {
	return SummaryRequest{Year: s.cfg.DefaultYear(), Multiplier: s.cfg.DefaultMultiplier}
}

// Summarize validates req and aggregates inputs. It returns ErrNoFiles for an
// empty upload, and *aggregator.ParseError or *aggregator.NoDataError as
// produced by the aggregator.
func (s *SummaryService) Summarize(ctx context.Context, req SummaryRequest, inputs []aggregator.Input) (*Summary, error) {
	ctx, span := s.tracer.Start(ctx, "summary.aggregate", trace.WithAttributes(
		attribute.Int("summary.year", req.Year),
		attribute.Float64("summary.multiplier", req.Multiplier),
		attribute.Int("summary.files", len(inputs)),
	))
	defer span.End()

	logger := infrastructure.LoggerWithContext(ctx, s.logger)
	start := time.Now()

	if len(inputs) == 0 {
		infrastructure.RecordSummaryRun(ctx, s.metrics, "no_files", 0, time.Since(start))
		span.SetStatus(codes.Error, ErrNoFiles.Error())
		return nil, ErrNoFiles
	}
	if s.cfg.MaxFiles > 0 && len(inputs) > s.cfg.MaxFiles {
		err := fmt.Errorf("%w: %d, at most %d", ErrTooManyFiles, len(inputs), s.cfg.MaxFiles)
		infrastructure.RecordSummaryRun(ctx, s.metrics, "invalid", len(inputs), time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.validator != nil {
		if err := s.validator.ValidateStruct(req); err != nil {
			infrastructure.RecordSummaryRun(ctx, s.metrics, "invalid", len(inputs), time.Since(start))
			span.SetStatus(codes.Error, "invalid request")
			logger.WarnContext(ctx, "summary request rejected", slog.String("error", err.Error()))
			return nil, err
		}
	}

	multiplier := decimal.NewFromFloat(req.Multiplier)
	result := s.runner.Run(ctx, inputs, aggregator.Options{Year: req.Year, Multiplier: multiplier})

	infrastructure.RecordSummaryRun(ctx, s.metrics, string(result.Status), len(inputs), time.Since(start))
	span.SetAttributes(attribute.String("summary.status", string(result.Status)))

	if !result.OK() {
		err := result.Err
		if err == nil {
			err = errors.New("summary not built")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(result.Status))
		return nil, err
	}

	for _, w := range result.Warnings {
		logger.WarnContext(ctx, "duplicate period", slog.String("detail", w))
	}

	span.SetAttributes(
		attribute.Int("summary.columns", len(result.Table.Columns)),
		attribute.String("summary.grand_total", result.Table.GrandTotal.String()),
	)

	return &Summary{
		Year:        req.Year,
		Multiplier:  multiplier,
		Table:       result.Table,
		Files:       result.Files,
		Skipped:     result.Skipped,
		Warnings:    result.Warnings,
		GeneratedAt: s.now(),
	}, nil
}

// Export renders summary in format.
func (s *SummaryService) Export(ctx context.Context, summary *Summary, format Format) (*Export, error) {
	if summary == nil || summary.Table == nil {
		return nil, ErrNilSummary
	}

	_, span := s.tracer.Start(ctx, "summary.export", trace.WithAttributes(
		attribute.String("summary.format", string(format)),
		attribute.Int("summary.year", summary.Year),
	))
	defer span.End()

	var export *Export
	switch format {
	case FormatXLSX:
		data, err := s.xlsx.Write(summary.Table, exporter.Meta{
			Files:       summary.Files,
			Skipped:     summary.Skipped,
			GeneratedAt: summary.GeneratedAt,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "xlsx export failed")
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
		export = &Export{
			Filename:    exporter.Filename(summary.Year, exporter.ExtXLSX),
			ContentType: exporter.ContentTypeXLSX,
			Data:        data,
		}

	case FormatCSV:
		var buf bytes.Buffer
		if err := s.csv.Write(&buf, summary.Table); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "csv export failed")
			return nil, fmt.Errorf("csv export: %w", err)
		}
		export = &Export{
			Filename:    exporter.Filename(summary.Year, exporter.ExtCSV),
			ContentType: exporter.ContentTypeCSV,
			Data:        buf.Bytes(),
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	infrastructure.RecordSummaryExport(ctx, s.metrics, string(format))
	s.logger.InfoContext(ctx, "summary exported",
		slog.String("format", string(format)),
		slog.String("filename", export.Filename),
		slog.Int("bytes", len(export.Data)))

	return export, nil
}

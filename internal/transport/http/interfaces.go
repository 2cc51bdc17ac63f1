package http

import (
	"context"

	"riepilogo/internal/aggregator"
	"riepilogo/internal/services"
)

// SummaryServiceInterface defines the summary operations used by handlers
type SummaryServiceInterface interface {
	Options() services.Options
	DefaultRequest() services.SummaryRequest
	Summarize(ctx context.Context, req services.SummaryRequest, inputs []aggregator.Input) (*services.Summary, error)
	Export(ctx context.Context, summary *services.Summary, format services.Format) (*services.Export, error)
}

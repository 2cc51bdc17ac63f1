package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/infrastructure"
	"riepilogo/internal/services"
	"riepilogo/internal/validation"
)

// SummaryHandler serves the JSON summary API with RFC 7807 errors
type SummaryHandler struct {
	service      SummaryServiceInterface
	validator    *validation.FileValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service SummaryServiceInterface, validator *validation.FileValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SummaryHandler {
	return &SummaryHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "summary_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the summary routes. uploads wraps the POST endpoints, so
// callers can add body limits and content type checks.
func (h *SummaryHandler) Routes(uploads ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/options", h.GetOptions)
	r.Group(func(r chi.Router) {
		r.Use(uploads...)
		r.Post("/summary", h.CreateSummary)
		r.Post("/summary/export", h.ExportSummary)
	})

	return r
}

// SummaryResponse is the JSON form of a consolidated table. Amounts are JSON
// numbers carrying the exact decimal; blank cells are null.
type SummaryResponse struct {
	Year       int              `json:"year"`
	Multiplier json.Number      `json:"multiplier"`
	Headers    []string         `json:"headers"`
	Columns    []ColumnResponse `json:"columns"`
	Rows       []RowResponse    `json:"rows"`
	GrandTotal json.Number      `json:"grand_total"`
	Files      int              `json:"files"`
	Skipped    []string         `json:"skipped,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// ColumnResponse is one month of the table.
type ColumnResponse struct {
	Period string      `json:"period"`
	Total  json.Number `json:"total"`
}

// RowResponse is one table row. Cells follow Headers without the Giorno
// column; the last cell is the grand total, only set on the totals row.
type RowResponse struct {
	Label string         `json:"label"`
	Total bool           `json:"total,omitempty"`
	Cells []*json.Number `json:"cells"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// NewSummaryResponse converts a summary for the API.
func NewSummaryResponse(s *services.Summary) SummaryResponse {
	t := s.Table
	resp := SummaryResponse{
		Year:       s.Year,
		Multiplier: number(s.Multiplier),
		Headers:    t.Headers(),
		Columns:    make([]ColumnResponse, len(t.Columns)),
		GrandTotal: number(t.GrandTotal),
		Files:      s.Files,
		Skipped:    s.Skipped,
		Warnings:   s.Warnings,
	}

	for i, c := range t.Columns {
		resp.Columns[i] = ColumnResponse{Period: c.Period.Label(), Total: number(c.Total)}
	}

	for _, row := range t.Rows() {
		cells := make([]*json.Number, len(row.Cells))
		for i, c := range row.Cells {
			if c != nil {
				n := number(*c)
				cells[i] = &n
			}
		}
		resp.Rows = append(resp.Rows, RowResponse{Label: row.Label, Total: row.IsTotal, Cells: cells})
	}

	return resp
}

// GetOptions handles GET /api/options
func (h *SummaryHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Options(),
	})
}

// CreateSummary handles POST /api/summary
func (h *SummaryHandler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   NewSummaryResponse(summary),
	})
}

// ExportSummary handles POST /api/summary/export?format=xlsx|csv
func (h *SummaryHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	format, err := services.ParseFormat(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.UnsupportedFormat(raw))
		return
	}

	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}

	export, err := h.service.Export(r.Context(), summary, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

func (h *SummaryHandler) summarize(w http.ResponseWriter, r *http.Request) (*services.Summary, bool) {
	reqID := middleware.GetReqID(r.Context())

	form, err := readUpload(r, h.service.DefaultRequest(), h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return nil, false
	}

	h.logger.InfoContext(r.Context(), "summary requested",
		slog.String("request_id", reqID),
		slog.Int("year", form.Request.Year),
		slog.Float64("multiplier", form.Request.Multiplier),
		slog.Int("files", len(form.Inputs)))

	summary, err := h.service.Summarize(r.Context(), form.Request, form.Inputs)
	if err != nil {
		infrastructure.RecordError(r.Context(), err)
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return nil, false
	}

	return summary, true
}

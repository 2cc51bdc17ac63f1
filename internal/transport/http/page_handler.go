package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"riepilogo/internal/config"
	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/exporter"
	"riepilogo/internal/infrastructure"
	"riepilogo/internal/services"
	"riepilogo/internal/validation"
)

// Messages shown on the page.
const (
	MsgStart   = "Inizia caricando uno o più file CSV."
	MsgError   = "Errore durante l'elaborazione: %s"
	MsgResults = "Risultati Anno %d (Moltiplicatore: x%s)"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageHandler serves the upload page. It renders the same summary as the
// API, with the workbook embedded as a data URI.
type PageHandler struct {
	service   SummaryServiceInterface
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(service SummaryServiceInterface, validator *validation.FileValidator, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		service:   service,
		validator: validator,
		logger:    logger.With(slog.String("handler", "page")),
	}
}

// Routes returns the page routes
func (h *PageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/", h.Submit)
	return r
}

type yearOption struct {
	Value    int
	Selected bool
}

type resultView struct {
	Heading     string
	Headers     []string
	Rows        []rowView
	Skipped     []string
	Warnings    []string
	Filename    string
	DownloadURL template.URL
}

type rowView struct {
	Label string
	Total bool
	Cells []string
}

type pageView struct {
	Title      string
	Years      []yearOption
	Multiplier string
	Step       string
	Info       string
	Warning    string
	Error      string
	Result     *resultView
}

func (h *PageHandler) newView(req services.SummaryRequest) *pageView {
	opts := h.service.Options()
	view := &pageView{
		Title:      config.AppTitle,
		Multiplier: formatInputNumber(req.Multiplier),
		Step:       formatInputNumber(opts.MultiplierStep),
	}
	for _, y := range opts.Years {
		view.Years = append(view.Years, yearOption{Value: y, Selected: y == req.Year})
	}
	return view
}

// formatInputNumber renders a float for an <input type=number>, keeping at
// least one decimal.
func formatInputNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !math.IsInf(f, 0) && f == math.Trunc(f) {
		s += ".0"
	}
	return s
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	view := h.newView(h.service.DefaultRequest())
	view.Info = MsgStart
	h.render(w, r, http.StatusOK, view)
}

// Submit handles POST /
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := readUpload(r, h.service.DefaultRequest(), h.validator)
	if err != nil {
		view := h.newView(h.formRequest(r))
		h.renderError(w, r, view, toAPIError(err))
		return
	}

	view := h.newView(form.Request)

	summary, err := h.service.Summarize(ctx, form.Request, form.Inputs)
	if err != nil {
		h.renderError(w, r, view, toAPIError(err))
		return
	}

	export, err := h.service.Export(ctx, summary, services.FormatXLSX)
	if err != nil {
		h.renderError(w, r, view, toAPIError(err))
		return
	}

	view.Result = newResultView(summary, export)
	h.render(w, r, http.StatusOK, view)
}

// formRequest recovers what the user typed when the upload could not be
// decoded, so the form is shown again as submitted.
func (h *PageHandler) formRequest(r *http.Request) services.SummaryRequest {
	req := h.service.DefaultRequest()
	if r.MultipartForm == nil {
		return req
	}
	if v := r.MultipartForm.Value[FieldYear]; len(v) > 0 {
		if year, err := strconv.Atoi(v[0]); err == nil {
			req.Year = year
		}
	}
	if v := r.MultipartForm.Value[FieldMultiplier]; len(v) > 0 {
		if m, err := services.ParseMultiplier(v[0]); err == nil {
			req.Multiplier = m
		}
	}
	return req
}

func newResultView(s *services.Summary, export *services.Export) *resultView {
	t := s.Table
	result := &resultView{
		Heading:     fmt.Sprintf(MsgResults, s.Year, exporter.FormatMultiplier(s.Multiplier)),
		Headers:     t.Headers(),
		Skipped:     s.Skipped,
		Warnings:    s.Warnings,
		Filename:    export.Filename,
		DownloadURL: template.URL("data:" + export.ContentType + ";base64," + base64.StdEncoding.EncodeToString(export.Data)),
	}

	for _, row := range t.Rows() {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			if c != nil {
				cells[i] = exporter.FormatAmount(*c)
			}
		}
		result.Rows = append(result.Rows, rowView{Label: row.Label, Total: row.IsTotal, Cells: cells})
	}

	return result
}

// renderError shows err on the page. An empty upload is not an error, it
// gets the starting prompt.
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, view *pageView, err error) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		infrastructure.RecordError(r.Context(), err)
		h.logger.ErrorContext(r.Context(), "summary failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		view.Error = fmt.Sprintf(MsgError, err.Error())
		h.render(w, r, http.StatusInternalServerError, view)
		return
	}

	switch apiErr.ErrorCode {
	case apierrors.CodeNoFiles:
		view.Info = MsgStart
		h.render(w, r, http.StatusOK, view)
		return
	case apierrors.CodeNoDataForYear:
		view.Warning = apiErr.Message
	default:
		view.Error = fmt.Sprintf(MsgError, errorText(apiErr))
	}

	h.logger.WarnContext(r.Context(), "summary not built",
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("error", apiErr.Message),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	h.render(w, r, apiErr.StatusCode, view)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, view *pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

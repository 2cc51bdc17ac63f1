package http

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"riepilogo/internal/config"
	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/middleware"
	"riepilogo/internal/services"
	"riepilogo/internal/validation"
)

type formFile struct {
	name string
	data []byte
}

// newUploadRequest builds a multipart request as the page form sends it.
func newUploadRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(FieldFiles, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type fixture struct {
	cfg       config.SummaryConfig
	logger    *slog.Logger
	service   *services.SummaryService
	validator *validation.FileValidator
	errors    *apierrors.ErrorHandler
}

func newFixture(t *testing.T, tweak func(*config.SummaryConfig)) *fixture {
	t.Helper()

	cfg := config.Default().Summary
	if tweak != nil {
		tweak(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eh := apierrors.NewErrorHandler(logger, false)
	requests := middleware.NewValidationMiddleware(logger, eh, cfg.Years)

	return &fixture{
		cfg:       cfg,
		logger:    logger,
		service:   services.NewSummaryService(cfg, requests, nil, nil, logger),
		validator: validation.NewFileValidator(logger, validation.UploadLimits{MaxFiles: cfg.MaxFiles, MaxFileBytes: cfg.MaxFileBytes}),
		errors:    eh,
	}
}

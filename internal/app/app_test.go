package app

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riepilogo/internal/config"
	"riepilogo/internal/shared/testutil"
)

// createTestLogger creates a logger that discards output for testing
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestApplication(t *testing.T, tweak func(*config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Security.RateLimit.Enabled = false
	if tweak != nil {
		tweak(cfg)
	}

	app, err := NewApplicationWithConfig(cfg, createTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func uploadBody(t *testing.T, year string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("year", year))
	require.NoError(t, mw.WriteField("multiplier", "2"))
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func referenceUpload(t *testing.T) (*bytes.Buffer, string) {
	return uploadBody(t, "2025", map[string][]byte{
		"gennaio.csv":  testutil.January2025().Bytes(),
		"febbraio.csv": testutil.February2025().Bytes(),
	})
}

func TestNewApplicationWithConfig(t *testing.T) {
	app := newTestApplication(t, nil)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.SummaryService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, config.DefaultReadTimeout, app.Server.ReadTimeout)

	_, err := NewApplicationWithConfig(nil, createTestLogger())
	assert.Error(t, err)
}

func TestNewApplication_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "riepilogo.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("summary:\n  years: [2023, 2024]\n"), 0644))

	t.Setenv("RIEPILOGO_CONFIG", cfgFile)
	t.Setenv("RIEPILOGO_SERVER_PORT", "18081")
	t.Setenv("RIEPILOGO_LOGGING_LEVEL", "error")

	app, err := NewApplication()
	require.NoError(t, err)
	defer app.OTelProviders.Shutdown(context.Background())

	assert.Equal(t, ":18081", app.Server.Addr)
	assert.Equal(t, []int{2023, 2024}, app.SummaryService.Options().Years)
	assert.Equal(t, 2024, app.SummaryService.DefaultRequest().Year)
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t, nil)

	tests := []struct {
		name        string
		method      string
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"page", http.MethodGet, "/", http.StatusOK, "text/html", "Elaboratore Riepilogo Multi-mese"},
		{"health", http.MethodGet, "/api/health", http.StatusOK, "application/json", `"status":"ok"`},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK, "application/json", `"alive"`},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK, "application/json", "years 2024, 2025, 2026"},
		{"version", http.MethodGet, "/api/version", http.StatusOK, "application/json", config.AppVersion},
		{"options", http.MethodGet, "/api/options", http.StatusOK, "application/json", `"default_year":2026`},
		{"unknown api route", http.MethodGet, "/api/nope", http.StatusNotFound, "application/problem+json", "/errors/not-found"},
		{"unknown page", http.MethodGet, "/nope", http.StatusNotFound, "application/problem+json", "/errors/not-found"},
		{"wrong method", http.MethodPut, "/api/summary", http.StatusMethodNotAllowed, "application/problem+json", "PUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestApplication_CompressesPage(t *testing.T) {
	app := newTestApplication(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	page, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Elaboratore Riepilogo Multi-mese")
}

func TestApplication_SummaryEndToEnd(t *testing.T) {
	app := newTestApplication(t, nil)

	body, contentType := referenceUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/api/summary", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			GrandTotal json.Number `json:"grand_total"`
			Headers    []string    `json:"headers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, json.Number("70"), resp.Data.GrandTotal)
	assert.Equal(t, []string{"Giorno", "01/2025", "02/2025", "TOTALE GENERALE"}, resp.Data.Headers)

	// the run shows up in the Prometheus scrape
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary_runs_total{")
}

func TestApplication_PageSubmit(t *testing.T) {
	app := newTestApplication(t, nil)

	body, contentType := referenceUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Risultati Anno 2025 (Moltiplicatore: x2,0)")
	assert.Contains(t, rec.Body.String(), "Scarica File Excel")
}

func TestApplication_RequestLimits(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Summary.MaxFiles = 1
		cfg.Summary.MaxFileBytes = 64
	})

	big := testutil.NewMonthCSV("Valore")
	for day := 1; day <= 28; day++ {
		big.Row(fmt.Sprintf("%02d/01/2025", day), "1000,00")
	}

	body, contentType := uploadBody(t, "2025", map[string][]byte{"gennaio.csv": big.Bytes()})
	req := httptest.NewRequest(http.MethodPost, "/api/summary", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestApplication_RejectsJSONUpload(t *testing.T) {
	app := newTestApplication(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/summary", strings.NewReader(`{"year":2025}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.RateLimit.Enabled = true
		cfg.Security.RateLimit.RPS = 1
		cfg.Security.RateLimit.Burst = 1
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)
}

func TestApplication_getCORSConfig(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.Port = 9090
		cfg.Security.EnableCORS = true
		cfg.Security.AllowedOrigins = []string{"https://example.org"}
	})

	cors := app.getCORSConfig()
	assert.Equal(t, []string{
		"http://localhost:9090",
		"http://127.0.0.1:9090",
		"https://example.org",
	}, cors.AllowedOrigins)
	assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + app.Addr() + "/api/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, app.Stop(context.Background()))

	_, err = client.Get("http://" + app.Addr() + "/api/health")
	assert.Error(t, err)
}

func TestApplication_Run(t *testing.T) {
	app := newTestApplication(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestGetBrowserOpenMethods(t *testing.T) {
	methods := getBrowserOpenMethods("http://localhost:8080")
	require.NotEmpty(t, methods)
	for _, m := range methods {
		assert.NotEmpty(t, m.cmd)
		assert.Contains(t, m.args, "http://localhost:8080")
	}
}

func TestBuildID(t *testing.T) {
	assert.Len(t, BuildID, 12)
	assert.NotEmpty(t, BuildTime)
}

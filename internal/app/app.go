package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"riepilogo/internal/config"
	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/infrastructure"
	customMiddleware "riepilogo/internal/middleware"
	"riepilogo/internal/services"
	handlers "riepilogo/internal/transport/http"
	"riepilogo/internal/validation"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.BusinessMetrics
	ErrorHandler   *apierrors.ErrorHandler
	SummaryService *services.SummaryService
	HealthService  *services.HealthService

	// OpenBrowser opens the page once the server answers health checks.
	OpenBrowser bool

	listener net.Listener
}

// NewApplication loads the configuration and wires the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger)
}

// NewApplicationWithConfig wires the application from an already loaded
// configuration.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	app.initializeServices()
	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	requests := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, a.Config.Summary.Years)

	a.SummaryService = services.NewSummaryService(
		a.Config.Summary,
		requests,
		a.OTelProviders.Tracer,
		a.Metrics,
		a.Logger,
	)

	a.HealthService = services.NewHealthServiceWithBuildInfo(config.AppVersion, BuildTime, BuildID, a.Logger)
	a.HealthService.AddCheck("summary", a.summaryReadiness)
}

// summaryReadiness reports whether uploads can be processed with the
// current configuration.
func (a *Application) summaryReadiness(ctx context.Context) services.ServiceHealth {
	opts := a.SummaryService.Options()
	if len(opts.Years) == 0 {
		return services.NotReady("no years configured")
	}

	years := make([]string, len(opts.Years))
	for i, y := range opts.Years {
		years[i] = strconv.Itoa(y)
	}
	return services.Ready("years " + strings.Join(years, ", "))
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	r.Use(otelMiddleware.Handler)

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))
	// the page embeds the workbook as base64, so it compresses well
	r.Use(customMiddleware.Compress(5, "text/html", "application/json", "text/csv"))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.ErrorHandler,
		).Handler)
	}

	r.Use(customMiddleware.Timeout(a.Config.Server.OperationTimeout, a.Logger, a.ErrorHandler))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	uploads := validation.NewFileValidator(a.Logger, validation.UploadLimits{
		MaxFiles:     a.Config.Summary.MaxFiles,
		MaxFileBytes: a.Config.Summary.MaxFileBytes,
	})
	limitBody := customMiddleware.LimitBody(a.Config.Summary.MaxRequestBytes(), a.ErrorHandler)

	summaryHandler := handlers.NewSummaryHandler(a.SummaryService, uploads, a.Logger, a.ErrorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	pageHandler := handlers.NewPageHandler(a.SummaryService, uploads, a.Logger)

	r.Route("/api", func(r chi.Router) {
		healthHandler.Routes(r)
		r.Mount("/", summaryHandler.Routes(
			limitBody,
			customMiddleware.ContentTypeValidator(a.ErrorHandler, "multipart/form-data"),
		))
	})

	r.With(limitBody).Mount("/", pageHandler.Routes())

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// getCORSConfig returns CORS configuration. The page posts to its own
// origin; configured origins are only needed for API clients elsewhere.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	port := a.Config.Server.Port
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
		AllowedOrigins: []string{
			fmt.Sprintf("http://localhost:%d", port),
			fmt.Sprintf("http://127.0.0.1:%d", port),
		},
	}

	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Addr returns the address the server listens on, once started.
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start starts the application. A listener failure after startup cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	url := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", url),
		slog.String("listen", ln.Addr().String()))

	if a.OpenBrowser {
		go a.openWhenReady(ctx, url)
	}

	return nil
}

// openWhenReady polls the health endpoint and opens the browser on success.
func (a *Application) openWhenReady(ctx context.Context, url string) {
	client := &http.Client{Timeout: 2 * time.Second}
	const maxRetries = 10

	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}

		resp, err := client.Get(url + "/api/health")
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}

		if err := openBrowser(ctx, url); err != nil {
			a.Logger.WarnContext(ctx, "Failed to open browser",
				slog.String("error", err.Error()),
				slog.String("url", url))
			fmt.Printf("\n%s is running, open %s in your browser\n\n", config.AppTitle, url)
		}
		return
	}

	a.Logger.ErrorContext(ctx, "Server did not become ready for browser opening",
		slog.String("url", url),
		slog.Int("max_retries", maxRetries))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	name string
	cmd  string
	args []string
}

// openBrowser tries each platform method in turn.
func openBrowser(ctx context.Context, url string) error {
	var lastErr error
	for _, method := range getBrowserOpenMethods(url) {
		cmd := exec.CommandContext(ctx, method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			slog.Debug("Browser open method failed",
				slog.String("method", method.name),
				slog.String("error", err.Error()))
			continue
		}
		go cmd.Wait()
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

// getBrowserOpenMethods returns platform-specific browser opening methods
func getBrowserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{name: "rundll32", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{name: "start_command", cmd: "cmd", args: []string{"/c", "start", "", url}},
		}
	case "darwin":
		return []browserMethod{
			{name: "open", cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{name: "xdg-open", cmd: "xdg-open", args: []string{url}},
			{name: "sensible-browser", cmd: "sensible-browser", args: []string{url}},
		}
	}
}

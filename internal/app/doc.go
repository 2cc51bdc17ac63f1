// Package app wires the summary web application together and manages its
// lifecycle.
//
// NewApplication loads the configuration, then builds in order the logger,
// OpenTelemetry providers and business metrics, the summary and health
// services, the HTTP handlers and the chi router. The router applies
// middleware as
//
//	RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
//
// and serves the upload page at /, the JSON API and health endpoints under
// /api and Prometheus metrics at /metrics. Upload routes are additionally
// bounded by the configured request size.
//
// Run blocks until SIGINT, SIGTERM or cancellation of its context, then shuts
// the server down within the configured timeout. Initialization errors are
// returned to the caller; the package never calls os.Exit.
package app

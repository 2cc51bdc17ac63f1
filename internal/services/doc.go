// Package services implements the business logic layer of the summary
// application. It keeps HTTP handlers and the CLI thin: both hand uploads to
// SummaryService and only translate its results for their audience.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection of loggers, tracers and metrics
//
// # Available Services
//
//	- SummaryService: validates a request, runs the aggregator, records
//	  metrics and renders downloads
//	- HealthService: liveness, readiness and version information
//
// # Error Handling
//
// SummaryService returns errors the boundary can tell apart:
//
//	- ErrNoFiles when nothing was uploaded
//	- *aggregator.ParseError for a malformed file
//	- *aggregator.NoDataError when no row falls in the selected year
//	- the validator's error for an invalid SummaryRequest
//	- ErrUnsupportedFormat for an unknown export format
//
// # Testing
//
// The aggregator and the validator are interfaces, so tests can mock them:
//
//	runner := new(MockRunner)
//	runner.On("Run", mock.Anything, inputs, opts).Return(result)
//	svc := NewSummaryServiceWithRunner(cfg, runner, nil, nil, nil, logger)
package services

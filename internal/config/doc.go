// Package config provides centralized configuration management for the riepilogo service.
// It loads configuration from several sources, validates it, and exposes a typed
// Config used throughout the application.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: $RIEPILOGO_CONFIG, config.yaml or configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern RIEPILOGO_<SECTION>_<FIELD>:
//
//	RIEPILOGO_SERVER_PORT=8080
//	RIEPILOGO_LOGGING_LEVEL=debug
//	RIEPILOGO_SUMMARY_YEARS=2024,2025,2026
//	RIEPILOGO_SUMMARY_MAX_FILES=24
//	RIEPILOGO_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Summary Section
//
// The summary section drives the options offered to the user: the selectable
// years (the last one is the default), the default multiplier and its input
// step, and the upload limits enforced before any file is parsed.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use Default() directly to obtain a valid configuration that needs no
// environment or files.
package config

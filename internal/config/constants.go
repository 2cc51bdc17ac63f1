package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Riepilogo"
	AppVersion = "1.0.0"
	AppTitle   = "Elaboratore Riepilogo Multi-mese"

	// EnvPrefix namespaces every environment variable (RIEPILOGO_SERVER_PORT, ...)
	EnvPrefix = "RIEPILOGO"
	// ConfigFileEnv points at an explicit YAML config file
	ConfigFileEnv = "RIEPILOGO_CONFIG"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Network Timeouts
	DefaultReadTimeout      = 30 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultIdleTimeout      = 60 * time.Second
	DefaultShutdownTimeout  = 15 * time.Second
	DefaultOperationTimeout = 60 * time.Second

	// Upload limits
	DefaultMaxFiles     = 24
	DefaultMaxFileBytes = 5 << 20 // 5MB per CSV
	DefaultWorkers      = 4

	// Multiplier surface
	DefaultMultiplier     = 1.0
	DefaultMultiplierStep = 0.1

	// Year bounds accepted in configuration
	MinYear = 1900
	MaxYear = 9999
)

// DefaultYears is the year selector offered when none is configured.
var DefaultYears = []int{2024, 2025, 2026}

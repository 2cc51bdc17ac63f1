package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Summary   SummaryConfig   `yaml:"summary" envconfig:"SUMMARY"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port             int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout      time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout     time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes   int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	OperationTimeout time.Duration `yaml:"operation_timeout" envconfig:"OPERATION_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// SummaryConfig drives the year selector, the multiplier input and upload limits.
type SummaryConfig struct {
	Years             []int   `yaml:"years" envconfig:"YEARS"`
	DefaultMultiplier float64 `yaml:"default_multiplier" envconfig:"DEFAULT_MULTIPLIER"`
	MultiplierStep    float64 `yaml:"multiplier_step" envconfig:"MULTIPLIER_STEP"`
	MaxFiles          int     `yaml:"max_files" envconfig:"MAX_FILES"`
	MaxFileBytes      int64   `yaml:"max_file_bytes" envconfig:"MAX_FILE_BYTES"`
	Workers           int     `yaml:"workers" envconfig:"WORKERS"`
}

// DefaultYear is the last configured year, matching the selector default.
func (s SummaryConfig) DefaultYear() int {
	if len(s.Years) == 0 {
		return DefaultYears[len(DefaultYears)-1]
	}
	return s.Years[len(s.Years)-1]
}

// MaxRequestBytes bounds a whole multipart upload.
func (s SummaryConfig) MaxRequestBytes() int64 {
	// one extra file worth of headroom for form fields and multipart framing
	return s.MaxFileBytes * int64(s.MaxFiles+1)
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled       bool    `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence.
func Load() (*Config, error) {
	cfg := Default()

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables override file values. Fields without a variable are left untouched.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file on top of cfg. Keys missing from the file keep their value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.OperationTimeout <= 0 {
		return fmt.Errorf("server operation timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if err := c.Summary.validate(); err != nil {
		return err
	}

	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/riepilogo.log"
	}

	return nil
}

func (s *SummaryConfig) validate() error {
	if len(s.Years) == 0 {
		return fmt.Errorf("at least one selectable year must be configured")
	}

	seen := make(map[int]bool, len(s.Years))
	for _, y := range s.Years {
		if y < MinYear || y > MaxYear {
			return fmt.Errorf("invalid summary year: %d", y)
		}
		if seen[y] {
			return fmt.Errorf("duplicate summary year: %d", y)
		}
		seen[y] = true
	}

	if math.IsNaN(s.DefaultMultiplier) || math.IsInf(s.DefaultMultiplier, 0) {
		return fmt.Errorf("default multiplier must be a finite number")
	}

	if s.MultiplierStep <= 0 {
		return fmt.Errorf("multiplier step must be positive")
	}

	if s.MaxFiles <= 0 {
		return fmt.Errorf("max files must be positive")
	}

	if s.MaxFileBytes <= 0 {
		return fmt.Errorf("max file bytes must be positive")
	}

	if s.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	years := make([]int, len(DefaultYears))
	copy(years, DefaultYears)

	return &Config{
		Server: ServerConfig{
			Port:             8080,
			ReadTimeout:      DefaultReadTimeout,
			WriteTimeout:     DefaultWriteTimeout,
			IdleTimeout:      DefaultIdleTimeout,
			MaxHeaderBytes:   1 << 20, // 1MB
			ShutdownTimeout:  DefaultShutdownTimeout,
			OperationTimeout: DefaultOperationTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/riepilogo.log",
		},
		Summary: SummaryConfig{
			Years:             years,
			DefaultMultiplier: DefaultMultiplier,
			MultiplierStep:    DefaultMultiplierStep,
			MaxFiles:          DefaultMaxFiles,
			MaxFileBytes:      DefaultMaxFileBytes,
			Workers:           DefaultWorkers,
		},
		Telemetry: TelemetryConfig{
			Enabled:       true,
			TraceExporter: "none",
			Environment:   "development",
			SampleRatio:   1.0,
		},
	}
}

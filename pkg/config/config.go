package config

import "time"

// Config is the root configuration structure for salvage.
type Config struct {
	// Rules locates the rule documents.
	Rules RulesConfig `yaml:"rules" envPrefix:"RULES_"`

	// Policy holds the classifier switches.
	Policy PolicyConfig `yaml:"policy" envPrefix:"POLICY_"`

	// Inventory configures the file-backed containers.
	Inventory InventoryConfig `yaml:"inventory" envPrefix:"INVENTORY_"`

	// Ledger configures the run history database.
	Ledger LedgerConfig `yaml:"ledger" envPrefix:"LEDGER_"`

	// Server configures the status endpoint served in watch mode.
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`

	// Telemetry contains logging, metrics, health and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// RulesConfig contains configuration for rule document discovery.
type RulesConfig struct {
	// Directory holds the rule documents.
	// Default: "Data/SKSE/Plugins/FastRecycle"
	Directory string `yaml:"directory" env:"DIRECTORY"`

	// BaseDocument is an optional file name loaded before every other document.
	BaseDocument string `yaml:"base_document" env:"BASE_DOCUMENT"`

	// DocumentPrefix selects rule documents by file name, case-insensitively.
	// Default: "mats_"
	DocumentPrefix string `yaml:"document_prefix" env:"DOCUMENT_PREFIX"`

	// Extensions lists the accepted file extensions.
	// Default: [".json", ".yaml", ".yml"]
	Extensions []string `yaml:"extensions" env:"EXTENSIONS" envSeparator:","`

	// ExclusionDocument names the optional list of excluded identifiers.
	// Default: "ignore.json"
	ExclusionDocument string `yaml:"exclusion_document" env:"EXCLUSION_DOCUMENT"`

	// MaxFileSize is the largest document accepted, in bytes.
	// Default: 10485760 (10MiB)
	MaxFileSize int64 `yaml:"max_file_size" env:"MAX_FILE_SIZE"`

	// WatchDebounce coalesces bursts of file events in watch mode.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce" env:"WATCH_DEBOUNCE"`
}

// PolicyConfig contains the classification policy.
type PolicyConfig struct {
	// MatchByName lets the display name match when no tag does.
	// Default: false
	MatchByName bool `yaml:"match_by_name" env:"MATCH_BY_NAME"`

	// ExcludeSpecialState leaves enchanted items untouched.
	// Default: true
	ExcludeSpecialState bool `yaml:"exclude_special_state" env:"EXCLUDE_SPECIAL_STATE"`
}

// InventoryConfig contains configuration for file-backed containers.
type InventoryConfig struct {
	// Catalog is the entity catalog used to resolve identifiers.
	// Default: "catalog.yaml"
	Catalog string `yaml:"catalog" env:"CATALOG"`
}

// LedgerConfig contains configuration for the run ledger.
type LedgerConfig struct {
	// Enabled records every run.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Driver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver" env:"DRIVER"`

	// Path is the database file.
	// Default: "data/salvage.db"
	Path string `yaml:"path" env:"PATH"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode" env:"WAL_MODE"`

	// BusyTimeout is how long to wait for database locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"BUSY_TIMEOUT"`

	// RetentionDays is how long runs are kept. 0 keeps them forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days" env:"RETENTION_DAYS"`

	// MaxRuns caps the number of runs kept. 0 means unlimited.
	MaxRuns int64 `yaml:"max_runs" env:"MAX_RUNS"`

	// RetentionSchedule is a cron expression for automatic pruning in watch mode.
	// Default: "0 3 * * *"
	RetentionSchedule string `yaml:"retention_schedule" env:"RETENTION_SCHEDULE"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`

	// Health contains health check endpoint configuration.
	Health HealthConfig `yaml:"health" envPrefix:"HEALTH_"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
}

// ServerConfig contains configuration for the status HTTP server.
type ServerConfig struct {
	// ListenAddress is the address the metrics and health endpoints are served on.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS"`

	// ReadHeaderTimeout bounds the time to read request headers.
	// Default: 5s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`

	// ShutdownTimeout is the grace period for in-flight requests on shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format is the log output format.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource adds source file locations to log records.
	// Default: false
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled serves metrics in watch mode.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Namespace prefixes every metric name.
	// Default: "salvage"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// Subsystem is the optional second metric name segment.
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" env:"PATH"`
}

// HealthConfig contains configuration for health check endpoints.
type HealthConfig struct {
	// Enabled serves the health endpoints in watch mode.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path" env:"LIVENESS_PATH"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path" env:"READINESS_PATH"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path" env:"VERSION_PATH"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout" env:"CHECK_TIMEOUT"`
}

// TracingConfig contains configuration for OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled exports a span tree for every run.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler" env:"SAMPLER"`

	// SampleRatio is the fraction of runs to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	// ServiceName is the service name in traces.
	// Default: "salvage"
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" env:"INSECURE"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesDirectory         = "Data/SKSE/Plugins/FastRecycle"
	DefaultRulesDocumentPrefix    = "mats_"
	DefaultRulesExclusionDocument = "ignore.json"
	DefaultRulesMaxFileSize       = int64(10 << 20)
	DefaultRulesWatchDebounce     = 100 * time.Millisecond

	// Policy defaults
	DefaultPolicyMatchByName         = false
	DefaultPolicyExcludeSpecialState = true

	// Inventory defaults
	DefaultInventoryCatalog = "catalog.yaml"

	// Ledger defaults
	DefaultLedgerEnabled           = true
	DefaultLedgerDriver            = "sqlite"
	DefaultLedgerPath              = "data/salvage.db"
	DefaultLedgerWALMode           = true
	DefaultLedgerBusyTimeout       = 5 * time.Second
	DefaultLedgerRetentionDays     = 30
	DefaultLedgerRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "console"
	DefaultMetricsEnabled      = true
	DefaultMetricsNamespace    = "salvage"
	DefaultMetricsPath         = "/metrics"
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthVersionPath   = "/version"
	DefaultHealthCheckTimeout  = 5 * time.Second
	DefaultTracingSampler      = "always"
	DefaultTracingEndpoint     = "localhost:4317"
	DefaultTracingServiceName  = "salvage"
	DefaultTracingTimeout      = 10 * time.Second

	// Server defaults
	DefaultServerListenAddress     = "127.0.0.1:9464"
	DefaultServerReadHeaderTimeout = 5 * time.Second
	DefaultServerShutdownTimeout   = 5 * time.Second
)

// DefaultRulesExtensions returns the accepted rule document extensions.
func DefaultRulesExtensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

// NewDefaultConfig returns a configuration with every default applied,
// including the boolean switches that default to true.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Policy: PolicyConfig{
			MatchByName:         DefaultPolicyMatchByName,
			ExcludeSpecialState: DefaultPolicyExcludeSpecialState,
		},
		Ledger: LedgerConfig{
			Enabled:       DefaultLedgerEnabled,
			WALMode:       DefaultLedgerWALMode,
			RetentionDays: DefaultLedgerRetentionDays,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Health:  HealthConfig{Enabled: DefaultHealthEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// Boolean switches and retention_days, whose zero value is meaningful, are
// left alone; start from NewDefaultConfig to get their defaults. This function is idempotent.
func ApplyDefaults(cfg *Config) {
	// Rules defaults
	if cfg.Rules.Directory == "" {
		cfg.Rules.Directory = DefaultRulesDirectory
	}
	if cfg.Rules.DocumentPrefix == "" {
		cfg.Rules.DocumentPrefix = DefaultRulesDocumentPrefix
	}
	if len(cfg.Rules.Extensions) == 0 {
		cfg.Rules.Extensions = DefaultRulesExtensions()
	}
	if cfg.Rules.ExclusionDocument == "" {
		cfg.Rules.ExclusionDocument = DefaultRulesExclusionDocument
	}
	if cfg.Rules.MaxFileSize == 0 {
		cfg.Rules.MaxFileSize = DefaultRulesMaxFileSize
	}
	if cfg.Rules.WatchDebounce == 0 {
		cfg.Rules.WatchDebounce = DefaultRulesWatchDebounce
	}

	// Inventory defaults
	if cfg.Inventory.Catalog == "" {
		cfg.Inventory.Catalog = DefaultInventoryCatalog
	}

	// Ledger defaults
	if cfg.Ledger.Driver == "" {
		cfg.Ledger.Driver = DefaultLedgerDriver
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = DefaultLedgerPath
	}
	if cfg.Ledger.BusyTimeout == 0 {
		cfg.Ledger.BusyTimeout = DefaultLedgerBusyTimeout
	}
	if cfg.Ledger.RetentionSchedule == "" {
		cfg.Ledger.RetentionSchedule = DefaultLedgerRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if cfg.Telemetry.Health.VersionPath == "" {
		cfg.Telemetry.Health.VersionPath = DefaultHealthVersionPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultServerListenAddress
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = DefaultServerReadHeaderTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
}

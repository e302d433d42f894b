package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "ledger.path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All field errors are collected
// and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateInventory(&cfg.Inventory)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	if cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Health.Enabled {
		errs = append(errs, validateServer(&cfg.Server)...)
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.Directory == "" {
		errs = append(errs, FieldError{Field: "rules.directory", Message: "rules directory is required"})
	}
	for _, name := range []struct{ field, value string }{
		{"rules.base_document", cfg.BaseDocument},
		{"rules.exclusion_document", cfg.ExclusionDocument},
	} {
		if name.value != "" && filepath.Base(name.value) != name.value {
			errs = append(errs, FieldError{Field: name.field, Message: "must be a file name inside the rules directory"})
		}
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, FieldError{
				Field:   "rules.extensions",
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{Field: "rules.max_file_size", Message: "max file size must be positive"})
	}
	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{Field: "rules.watch_debounce", Message: "watch debounce must be non-negative"})
	}

	return errs
}

func validateInventory(cfg *InventoryConfig) []FieldError {
	if cfg.Catalog == "" {
		return []FieldError{{Field: "inventory.catalog", Message: "catalog path is required"}}
	}
	return nil
}

func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}
	if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
		errs = append(errs, FieldError{
			Field:   "ledger.driver",
			Message: fmt.Sprintf("invalid driver %q, must be one of: sqlite, sqlite3", cfg.Driver),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "ledger.path", Message: "ledger path is required"})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "ledger.busy_timeout", Message: "busy timeout must be non-negative"})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{Field: "ledger.retention_days", Message: "retention days must be non-negative"})
	}
	if cfg.MaxRuns < 0 {
		errs = append(errs, FieldError{Field: "ledger.max_runs", Message: "max runs must be non-negative"})
	}
	if cfg.RetentionSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RetentionSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "ledger.retention_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q, must be one of: debug, info, warn, error", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q, must be one of: json, text, console", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
		}
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{Field: "telemetry.metrics.namespace", Message: "metrics namespace is required"})
		}
	}

	if cfg.Health.Enabled {
		paths := []struct{ field, value string }{
			{"telemetry.health.liveness_path", cfg.Health.LivenessPath},
			{"telemetry.health.readiness_path", cfg.Health.ReadinessPath},
			{"telemetry.health.version_path", cfg.Health.VersionPath},
		}
		for _, p := range paths {
			if !strings.HasPrefix(p.value, "/") {
				errs = append(errs, FieldError{Field: p.field, Message: "path must start with /"})
			}
		}
		if cfg.Health.CheckTimeout <= 0 {
			errs = append(errs, FieldError{Field: "telemetry.health.check_timeout", Message: "check timeout must be positive"})
		}
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never":
		case "ratio":
			if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
				errs = append(errs, FieldError{
					Field:   "telemetry.tracing.sample_ratio",
					Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %g", cfg.Tracing.SampleRatio),
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q, must be one of: always, never, ratio", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "collector endpoint is required"})
		}
		if cfg.Tracing.ServiceName == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.service_name", Message: "service name is required"})
		}
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid address: %v", err),
		})
	}
	if cfg.ReadHeaderTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.read_header_timeout", Message: "timeout must be positive"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "timeout must be positive"})
	}

	return errs
}

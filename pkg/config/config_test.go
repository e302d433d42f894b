package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salvage.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Rules.Directory != DefaultRulesDirectory {
		t.Errorf("Rules.Directory = %q, want %q", cfg.Rules.Directory, DefaultRulesDirectory)
	}
	if diff := cmp.Diff([]string{".json", ".yaml", ".yml"}, cfg.Rules.Extensions); diff != "" {
		t.Errorf("Rules.Extensions mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Policy.ExcludeSpecialState || cfg.Policy.MatchByName {
		t.Errorf("Policy = %+v, want exclude_special_state only", cfg.Policy)
	}
	if !cfg.Ledger.Enabled || !cfg.Ledger.WALMode || cfg.Ledger.Driver != "sqlite" {
		t.Errorf("Ledger = %+v", cfg.Ledger)
	}
	if cfg.Ledger.RetentionDays != DefaultLedgerRetentionDays {
		t.Errorf("Ledger.RetentionDays = %d, want %d", cfg.Ledger.RetentionDays, DefaultLedgerRetentionDays)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if diff := cmp.Diff(first, *cfg); diff != "" {
		t.Errorf("second ApplyDefaults changed config (-first +second):\n%s", diff)
	}
	if cfg.Ledger.RetentionDays != 0 {
		t.Errorf("ApplyDefaults set RetentionDays = %d, want it left at 0", cfg.Ledger.RetentionDays)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
rules:
  directory: "rules"
  base_document: "base.json"
  watch_debounce: "250ms"
policy:
  match_by_name: true
  exclude_special_state: false
ledger:
  driver: "sqlite3"
  retention_days: 0
telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Rules.Directory != "rules" || cfg.Rules.BaseDocument != "base.json" {
		t.Errorf("Rules = %+v", cfg.Rules)
	}
	if cfg.Rules.WatchDebounce != 250*time.Millisecond {
		t.Errorf("Rules.WatchDebounce = %v, want 250ms", cfg.Rules.WatchDebounce)
	}
	if cfg.Rules.DocumentPrefix != DefaultRulesDocumentPrefix {
		t.Errorf("Rules.DocumentPrefix = %q, want default", cfg.Rules.DocumentPrefix)
	}
	if !cfg.Policy.MatchByName || cfg.Policy.ExcludeSpecialState {
		t.Errorf("Policy = %+v, want file values", cfg.Policy)
	}
	if cfg.Ledger.Driver != "sqlite3" || cfg.Ledger.RetentionDays != 0 || !cfg.Ledger.Enabled {
		t.Errorf("Ledger = %+v", cfg.Ledger)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(NewDefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "unknown field", content: "rules:\n  folder: x\n", wantMsg: "failed to parse"},
		{name: "bad yaml", content: "rules: [\n", wantMsg: "failed to parse"},
		{name: "invalid level", content: "telemetry:\n  logging:\n    level: loud\n", wantMsg: "telemetry.logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
rules:
  directory: "from-file"
ledger:
  path: "file.db"
`)
	t.Setenv("SALVAGE_RULES_DIRECTORY", "from-env")
	t.Setenv("SALVAGE_RULES_EXTENSIONS", ".json,.txt")
	t.Setenv("SALVAGE_POLICY_MATCH_BY_NAME", "true")
	t.Setenv("SALVAGE_LEDGER_BUSY_TIMEOUT", "2s")
	t.Setenv("SALVAGE_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("SALVAGE_TELEMETRY_METRICS_ENABLED", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Rules.Directory != "from-env" {
		t.Errorf("Rules.Directory = %q, want from-env", cfg.Rules.Directory)
	}
	if diff := cmp.Diff([]string{".json", ".txt"}, cfg.Rules.Extensions); diff != "" {
		t.Errorf("Rules.Extensions mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Policy.MatchByName {
		t.Error("Policy.MatchByName = false, want true")
	}
	if cfg.Ledger.Path != "file.db" {
		t.Errorf("Ledger.Path = %q, want the file value", cfg.Ledger.Path)
	}
	if cfg.Ledger.BusyTimeout != 2*time.Second {
		t.Errorf("Ledger.BusyTimeout = %v, want 2s", cfg.Ledger.BusyTimeout)
	}
	if cfg.Telemetry.Logging.Level != "warn" || cfg.Telemetry.Metrics.Enabled {
		t.Errorf("Telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("SALVAGE_LEDGER_DRIVER", "sqlite3")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Ledger.Driver != "sqlite3" {
		t.Errorf("Ledger.Driver = %q, want sqlite3", cfg.Ledger.Driver)
	}
	if cfg.Rules.Directory != DefaultRulesDirectory {
		t.Errorf("Rules.Directory = %q, want default", cfg.Rules.Directory)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("SALVAGE_LEDGER_DRIVER", "postgres")

	_, err := LoadConfigWithEnvOverrides("")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 1 || verr.Errors[0].Field != "ledger.driver" {
		t.Errorf("Errors = %+v, want ledger.driver", verr.Errors)
	}
}

func TestNewDefaultConfig_StatusServer(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.ListenAddress != DefaultServerListenAddress || cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Telemetry.Health.Enabled || cfg.Telemetry.Health.ReadinessPath != "/ready" {
		t.Errorf("Health = %+v", cfg.Telemetry.Health)
	}
	if cfg.Telemetry.Tracing.Enabled || cfg.Telemetry.Tracing.Sampler != "always" {
		t.Errorf("Tracing = %+v, want disabled with the always sampler", cfg.Telemetry.Tracing)
	}
}

func TestLoadConfigWithEnvOverrides_Tracing(t *testing.T) {
	t.Setenv("SALVAGE_TELEMETRY_TRACING_ENABLED", "true")
	t.Setenv("SALVAGE_TELEMETRY_TRACING_SAMPLER", "ratio")
	t.Setenv("SALVAGE_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("SALVAGE_SERVER_LISTEN_ADDRESS", "0.0.0.0:9999")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if !cfg.Telemetry.Tracing.Enabled || cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("Tracing = %+v", cfg.Telemetry.Tracing)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9999" {
		t.Errorf("Server.ListenAddress = %q", cfg.Server.ListenAddress)
	}
}
